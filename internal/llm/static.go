package llm

import (
	"context"
	"sync"
)

// Static answers every prompt with the same completion. It backs offline
// development and tests; Prompts records what it was asked.
type Static struct {
	content string
	err     error

	mu      sync.Mutex
	prompts []string
}

func NewStatic(content string) *Static {
	return &Static{content: content}
}

// NewFailing returns a Static provider whose every call fails with err.
func NewFailing(err error) *Static {
	return &Static{err: err}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Generate(ctx context.Context, prompt string, _ ...Option) (*Response, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Response{Content: s.content, Model: "static"}, nil
}

func (s *Static) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}
