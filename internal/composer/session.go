package composer

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"reelsmaker/internal/domain"
)

// Session owns at most one job at a time together with the last result.
// A second Generate while a job runs fails with ErrJobInFlight; the running
// job is never cancelled.
type Session struct {
	composer *Composer

	mu    sync.Mutex
	busy  bool
	state JobState
}

// NewSession returns an idle session.
func NewSession(c *Composer) *Session {
	return &Session{composer: c, state: JobState{Status: domain.StatusIdle}}
}

// State returns the latest snapshot.
func (s *Session) State() JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a job is running.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Generate runs a job with a fresh id. The previous result is released once
// the new job reaches a terminal state, whichever it is.
func (s *Session) Generate(ctx context.Context, req Request, observe Observer) (JobState, error) {
	return s.GenerateID(ctx, uuid.NewString(), req, observe)
}

// GenerateID is Generate with a caller-chosen job id.
func (s *Session) GenerateID(ctx context.Context, id string, req Request, observe Observer) (JobState, error) {
	if err := s.claim(req); err != nil {
		return s.State(), err
	}
	return s.run(ctx, id, req, observe)
}

// claim marks the session busy. Between claim and the end of run, Reset and
// any other Generate fail with ErrJobInFlight.
func (s *Session) claim(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrJobInFlight
	}
	if err := s.composer.Preflight(req); err != nil {
		return err
	}
	s.busy = true
	return nil
}

// run executes a claimed job and clears the claim.
func (s *Session) run(ctx context.Context, id string, req Request, observe Observer) (JobState, error) {
	s.mu.Lock()
	previous := s.state.Result
	s.mu.Unlock()

	final, err := s.composer.Generate(ctx, id, req, func(st JobState) {
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
		if observe != nil {
			observe(st)
		}
	})

	s.mu.Lock()
	s.busy = false
	s.state = final
	s.mu.Unlock()

	if previous != nil {
		_ = previous.Release()
	}
	return final, err
}

// Reset releases the current result and returns the session to idle.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrJobInFlight
	}
	if err := s.state.Result.Release(); err != nil {
		return err
	}
	s.state = JobState{Status: domain.StatusIdle}
	return nil
}
