package ai

import (
	"github.com/j0lvera/kibo/internal/config"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/fx"
)

// Params for creating an AI client
type Params struct {
	fx.In

	Config *config.Config
}

// Result of creating an AI client
type Result struct {
	fx.Out

	Model llms.Model
}

// NewFromConfig creates a Gemini client from configuration.
func NewFromConfig(cfg *config.Config) *Client {
	return New(
		cfg.APIKey,
		WithEndpoint(cfg.EndpointURL),
		WithModel(cfg.Model),
	)
}

// Provide exposes the Gemini client as an llms.Model
func Provide(p Params) Result {
	return Result{
		Model: NewFromConfig(p.Config),
	}
}

// Module provides the AI model
func Module() fx.Option {
	return fx.Module(
		"ai",
		fx.Provide(
			Provide,
		),
	)
}
