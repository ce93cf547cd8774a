package bot

import (
	"context"
	"errors"
	"strings"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/j0lvera/kibo/internal/config"
	"github.com/j0lvera/kibo/internal/relay"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ErrMissingToken is returned when the bot is built without a Telegram token.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not set")

type Params struct {
	fx.In

	Config *config.Config
	Relay  *relay.Relay
}

// Handler routes Telegram updates: /start gets the greeting, any other
// plain text is relayed.
type Handler struct {
	answerer Answerer
	greeting string
	log      zerolog.Logger
}

func NewHandler(answerer Answerer, greeting string, log zerolog.Logger) *Handler {
	return &Handler{
		answerer: answerer,
		greeting: greeting,
		log:      log,
	}
}

func New(lc fx.Lifecycle, p Params, log zerolog.Logger) (*tbot.Bot, error) {
	if p.Config.Token == "" {
		return nil, ErrMissingToken
	}

	handler := NewHandler(p.Relay, p.Config.Messages.Greeting, log)

	opts := []tbot.Option{
		tbot.WithDefaultHandler(
			func(ctx context.Context, tg *tbot.Bot, update *models.Update) {
				handler.Handle(ctx, tg, update)
			},
		),
	}

	tg, err := tbot.New(p.Config.Token, opts...)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				log.Info().Msg("Kibo bot is running...")
				go tg.Start(runCtx)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("stopping telegram bot...")
				cancel()
				return nil
			},
		},
	)

	return tg, nil
}

func Module() fx.Option {
	return fx.Module(
		"bot",
		fx.Provide(
			New,
		),
		fx.Invoke(
			func(bot *tbot.Bot) {},
		),
	)
}

// Handle dispatches a single update.
func (h *Handler) Handle(ctx context.Context, tg Sender, update *models.Update) {
	msg, ok := inboundFrom(update)
	if !ok {
		return
	}

	if msg.Command != "" {
		if isStartCommand(msg.Command) {
			h.handleStart(ctx, tg, msg)
		}
		// Other commands are not forwarded
		return
	}

	h.handleMessage(ctx, tg, msg)
}

func (h *Handler) handleStart(ctx context.Context, tg Sender, msg Inbound) {
	if _, err := tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: msg.ChatID,
		Text:   h.greeting,
	}); err != nil {
		h.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("unable to send greeting")
	}
}

func (h *Handler) handleMessage(ctx context.Context, tg Sender, msg Inbound) {
	log := h.log.With().
		Str("request_id", uuid.NewString()).
		Int64("chat_id", msg.ChatID).
		Logger()

	log.Info().Str("sender", msg.SenderLabel).Str("text", msg.Text).Msg("message received")

	if _, err := tg.SendChatAction(ctx, &tbot.SendChatActionParams{
		ChatID: msg.ChatID,
		Action: models.ChatActionTyping,
	}); err != nil {
		log.Debug().Err(err).Msg("unable to send typing action")
	}

	reply := h.answerer.Answer(ctx, msg.Text)

	if _, err := tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: msg.ChatID,
		Text:   reply,
	}); err != nil {
		log.Error().Err(err).Msg("unable to send reply")
		return
	}
	log.Info().Int("reply_length", len(reply)).Msg("reply sent")
}

// isStartCommand matches "/start" and "/start@botname".
func isStartCommand(command string) bool {
	name, _, _ := strings.Cut(command, "@")
	return name == "/start"
}
