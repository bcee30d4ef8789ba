package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sozercan/poetry-assistant/apimodels"
	"github.com/sozercan/poetry-assistant/internal/llm"
)

const MsgRequired = "Poem and form are required"

type Option func(*Analyzer)

// WithMaxPoemLength rejects poems longer than n characters. Zero disables the cap.
func WithMaxPoemLength(n int) Option {
	return func(a *Analyzer) { a.maxPoemLength = n }
}

// WithCodeFenceStripping removes a Markdown code fence wrapped around the
// completion before it is decoded.
func WithCodeFenceStripping(enabled bool) Option {
	return func(a *Analyzer) { a.stripCodeFences = enabled }
}

// WithStrictSchema rejects decoded documents that lack a critique field or
// carry one of the wrong type.
func WithStrictSchema(enabled bool) Option {
	return func(a *Analyzer) { a.strictSchema = enabled }
}

type Analyzer struct {
	llmProvider     llm.Provider
	maxPoemLength   int
	stripCodeFences bool
	strictSchema    bool
}

func New(llmProvider llm.Provider, opts ...Option) *Analyzer {
	a := &Analyzer{llmProvider: llmProvider}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze asks the model to critique req.Poem as a req.Form poem and returns
// whatever JSON document it answers with.
func (a *Analyzer) Analyze(ctx context.Context, req apimodels.AnalysisRequest) (*apimodels.AnalyzeResponse, error) {
	if err := a.validate(req); err != nil {
		return nil, err
	}

	slog.Info("Starting analysis", "form", req.Form, "poem_length", utf8.RuneCountInString(req.Poem))
	startTime := time.Now()

	resp, err := a.llmProvider.Generate(ctx, BuildPrompt(req.Form, req.Poem))
	if err != nil {
		slog.Error("LLM completion failed", "provider", a.llmProvider.Name(), "error", err)
		return nil, &ModelInvocationError{Provider: a.llmProvider.Name(), Err: err}
	}

	analysis, err := a.decode(resp.Content)
	if err != nil {
		slog.Error("JSON parse error", "error", err, "raw_response", resp.Content)
		return nil, err
	}

	slog.Info("Analysis completed",
		"duration", time.Since(startTime),
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)
	return &apimodels.AnalyzeResponse{Analysis: analysis}, nil
}

func (a *Analyzer) validate(req apimodels.AnalysisRequest) error {
	if req.Poem == "" || req.Form == "" {
		return &ValidationError{Message: MsgRequired}
	}
	if a.maxPoemLength > 0 && utf8.RuneCountInString(req.Poem) > a.maxPoemLength {
		return &ValidationError{
			Message: fmt.Sprintf("Poem exceeds the maximum length of %d characters", a.maxPoemLength),
		}
	}
	return nil
}

// decode accepts any syntactically valid JSON document. Field completeness
// is only checked in strict mode.
func (a *Analyzer) decode(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if a.stripCodeFences {
		text = StripCodeFence(text)
	}

	var analysis json.RawMessage
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, &ResponseParseError{RawResponse: raw, Err: err}
	}

	if a.strictSchema {
		var doc any
		if err := json.Unmarshal(analysis, &doc); err != nil {
			return nil, &ResponseParseError{RawResponse: raw, Err: err}
		}
		if err := validateSchema(doc); err != nil {
			return nil, &ResponseParseError{RawResponse: raw, Details: err.Error(), Err: err}
		}
	}

	return analysis, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence, if any.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	if i := strings.IndexByte(cleaned, '\n'); i >= 0 && !strings.ContainsAny(cleaned[:i], "{[") {
		// drop the language tag line
		cleaned = cleaned[i+1:]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
