package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sozercan/poetry-assistant/internal/config"
	"google.golang.org/genai"
)

// Gemini generates completions through Google's GenAI API.
type Gemini struct {
	client   *genai.Client
	defaults Options
}

func NewGemini(ctx context.Context, cfg *config.LLMConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.APIEndpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.APIEndpoint}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client: client,
		defaults: Options{
			Model:       firstNonEmpty(cfg.Model, defaultModels["gemini"]),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	options := applyOptions(g.defaults, opts)

	genCfg := &genai.GenerateContentConfig{}
	if options.Temperature != 0 {
		genCfg.Temperature = genai.Ptr(float32(options.Temperature))
	}
	if options.MaxTokens != 0 {
		genCfg.MaxOutputTokens = int32(options.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, options.Model, genai.Text(prompt), genCfg)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Content: resp.Text(),
		Model:   options.Model,
	}
	if resp.UsageMetadata != nil {
		response.Usage = Usage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int64(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return response, nil
}
