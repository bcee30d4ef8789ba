package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/sozercan/poetry-assistant/internal/config"
)

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1"
	defaultOllamaEndpoint = "http://localhost:11434/v1"
	defaultCohereEndpoint = "https://api.cohere.ai/compatibility/v1"
)

var defaultModels = map[string]string{
	"openai": "gpt-4o-mini",
	"ollama": "llama3",
	"cohere": "command-a-03-2025",
	"gemini": "gemini-2.5-flash",
}

// OpenAI talks to any endpoint speaking the chat completions API: OpenAI
// itself, Azure OpenAI, Ollama and Cohere's compatibility layer.
type OpenAI struct {
	client   *openai.Client
	name     string
	defaults Options
}

func NewOpenAI(cfg *config.LLMConfig, extra ...option.RequestOption) (*OpenAI, error) {
	var client *openai.Client

	// a failed completion is terminal for the submission
	opts := []option.RequestOption{option.WithMaxRetries(0)}

	model := cfg.Model
	switch cfg.Provider {
	case "azure":
		if cfg.APIEndpoint == "" {
			return nil, errors.New("azure endpoint cannot be empty")
		}
		opts = append(opts,
			azure.WithEndpoint(cfg.APIEndpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
		if model == "" {
			model = cfg.DeploymentName
		}
	case "openai", "ollama", "cohere", "":
		endpoint := cfg.APIEndpoint
		apiKey := cfg.APIKey
		switch cfg.Provider {
		case "ollama":
			endpoint = firstNonEmpty(endpoint, defaultOllamaEndpoint)
			apiKey = firstNonEmpty(apiKey, "ollama")
		case "cohere":
			endpoint = firstNonEmpty(endpoint, defaultCohereEndpoint)
		default:
			endpoint = firstNonEmpty(endpoint, defaultOpenAIEndpoint)
		}
		opts = append(opts,
			option.WithAPIKey(apiKey),
			option.WithBaseURL(strings.TrimSuffix(endpoint, "/")+"/"),
		)
		if model == "" {
			model = defaultModels[firstNonEmpty(cfg.Provider, "openai")]
		}
	default:
		return nil, fmt.Errorf("provider %q is not served by the OpenAI client", cfg.Provider)
	}

	client = openai.NewClient(append(opts, extra...)...)

	return &OpenAI{
		client: client,
		name:   firstNonEmpty(cfg.Provider, "openai"),
		defaults: Options{
			Model:       model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}, nil
}

func (o *OpenAI) Name() string { return o.name }

func (o *OpenAI) Generate(ctx context.Context, prompt string, opts ...Option) (*Response, error) {
	options := applyOptions(o.defaults, opts)

	params := openai.ChatCompletionNewParams{
		Model: openai.F(options.Model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
	}
	if options.Temperature != 0 {
		params.Temperature = openai.F(options.Temperature)
	}
	if options.MaxTokens != 0 {
		params.MaxTokens = openai.F(options.MaxTokens)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
