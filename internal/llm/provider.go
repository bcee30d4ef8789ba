package llm

import (
	"context"
	"fmt"

	"github.com/sozercan/poetry-assistant/internal/config"
)

// SampleCompletion is what the static provider answers when no response is configured.
const SampleCompletion = `{
  "overallRating": "7/10 - A promising piece with clear imagery and a steady voice.",
  "strengths": ["Vivid, concrete imagery", "Economical language"],
  "weaknesses": ["The ending resolves too quickly", "Some line breaks feel arbitrary"],
  "technicalAnalysis": {
    "rhythm": "6/10 - The meter wavers in the middle lines.",
    "wordChoice": "8/10 - Precise verbs carry the mood.",
    "imagery": "8/10 - Strong sensory detail throughout.",
    "structure": "6/10 - The form is followed loosely."
  },
  "improvements": [
    "Tighten the meter in the second stanza",
    "Let the final image linger before resolving",
    "Reconsider line breaks that split natural phrases"
  ],
  "finalVerdict": "A solid draft with real potential; a careful revision pass will make it sing."
}`

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "azure", "ollama", "cohere":
		return NewOpenAI(cfg)
	case "gemini":
		return NewGemini(ctx, cfg)
	case "static":
		return NewStatic(firstNonEmpty(cfg.StaticResponse, SampleCompletion)), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
