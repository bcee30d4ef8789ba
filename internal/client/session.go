package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sozercan/poetry-assistant/apimodels"
)

type State int

const (
	Idle State = iota
	Submitting
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

var (
	ErrEmptyPoem = errors.New("poem is empty")
	ErrInFlight  = errors.New("an analysis is already in progress")
)

type Analyzer interface {
	Analyze(ctx context.Context, poem, form string) (*apimodels.AnalysisResult, error)
}

// Session holds one user's view state. At most one submission is in flight;
// the poem survives every transition.
type Session struct {
	analyzer Analyzer

	mu     sync.Mutex
	state  State
	poem   string
	form   string
	result *apimodels.AnalysisResult
	err    error
}

func NewSession(analyzer Analyzer, form string) *Session {
	return &Session{analyzer: analyzer, form: form}
}

// SetPoem edits the poem. A resolved session goes back to Idle.
func (s *Session) SetPoem(poem string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poem = poem
	s.resetLocked()
}

func (s *Session) SetForm(form string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
	s.resetLocked()
}

func (s *Session) resetLocked() {
	if s.state == Submitting {
		return
	}
	s.state = Idle
	s.result = nil
	s.err = nil
}

func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked() == nil
}

func (s *Session) canSubmitLocked() error {
	if s.state == Submitting {
		return ErrInFlight
	}
	if strings.TrimSpace(s.poem) == "" {
		return ErrEmptyPoem
	}
	return nil
}

// Submit runs one analysis. It refuses without calling the service when the
// poem is blank or another submission is running.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if err := s.canSubmitLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = Submitting
	s.result = nil
	s.err = nil
	poem, form := s.poem, s.form
	s.mu.Unlock()

	result, err := s.analyzer.Analyze(ctx, poem, form)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Failure
		s.err = err
		return err
	}
	s.state = Success
	s.result = result
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Poem() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poem
}

func (s *Session) Result() *apimodels.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
