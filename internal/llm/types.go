package llm

import (
	"context"
)

// Provider turns one prompt into one complete text completion.
type Provider interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error)

	// Name identifies the provider in logs
	Name() string
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

// Options override the configured request parameters. Zero values mean
// "use the provider default".
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithMaxTokens(n int64) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}

func applyOptions(base Options, opts []Option) Options {
	for _, opt := range opts {
		opt(&base)
	}
	return base
}
