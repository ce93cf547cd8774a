package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/j0lvera/kibo/internal/ai"
	"github.com/j0lvera/kibo/internal/bot"
	"github.com/j0lvera/kibo/internal/config"
	"github.com/j0lvera/kibo/internal/log"
	"github.com/j0lvera/kibo/internal/relay"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// Options assembles the bot application.
func Options() fx.Option {
	return fx.Options(
		config.Module(),
		log.Module(),
		ai.Module(),
		relay.Module(),
		bot.Module(),
		fx.WithLogger(log.EventLogger),
	)
}

func NewRoot() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:           "kibo",
		Short:         "Kibo relays Telegram messages to Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(serve)
	root.AddCommand(newAskCommand())

	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(Options())
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one prompt to Gemini and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			r := relay.New(ai.NewFromConfig(cfg), log.New(cmd.ErrOrStderr(), os.Getenv("DEBUG") == "true"))
			return ask(ctx, cmd, r, strings.Join(args, " "))
		},
	}
}

func ask(ctx context.Context, cmd *cobra.Command, answerer bot.Answerer, prompt string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), answerer.Answer(ctx, prompt))
	return err
}
