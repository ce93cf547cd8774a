// Package relay turns a chat prompt into a reply by forwarding it to a
// completion model. Failures never reach the caller: they are logged and
// replaced by fixed replies.
package relay

import (
	"context"
	"errors"

	"github.com/j0lvera/kibo/internal/ai"
	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/fx"
)

const (
	// NoResponseReply is sent when the model returns no candidates.
	NoResponseReply = "Sorry, no response from Gemini."
	// ErrorReply is sent when the model call fails for any reason.
	ErrorReply = "There was an error talking to Gemini AI."
)

// ErrNoResponse means the model answered with an empty candidate list.
var ErrNoResponse = errors.New("no response from model")

// Relay forwards prompts to a model. It holds no per-call state and is safe
// for concurrent use.
type Relay struct {
	model llms.Model
	log   zerolog.Logger
}

func New(model llms.Model, log zerolog.Logger) *Relay {
	return &Relay{
		model: model,
		log:   log,
	}
}

// Ask sends prompt unchanged and returns the first candidate's text.
// Errors are ErrNoResponse or whatever the model returned.
func (r *Relay) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := r.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", err
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoResponse
	}

	return resp.Choices[0].Content, nil
}

// Answer is Ask collapsed to a reply string. It never fails.
func (r *Relay) Answer(ctx context.Context, prompt string) string {
	reply, err := r.Ask(ctx, prompt)
	switch {
	case err == nil:
		return reply
	case errors.Is(err, ErrNoResponse):
		r.log.Warn().Msg("gemini returned no candidates")
		return NoResponseReply
	default:
		kind := ai.KindOf(err)
		if kind == "" {
			kind = "unknown"
		}
		r.log.Error().Err(err).Str("kind", string(kind)).Msg("gemini api error")
		return ErrorReply
	}
}

func Module() fx.Option {
	return fx.Module(
		"relay",
		fx.Provide(
			New,
		),
	)
}
