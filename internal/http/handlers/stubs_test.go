package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"reelsmaker/internal/billing"
	"reelsmaker/internal/catalog"
	"reelsmaker/internal/composer"
	"reelsmaker/internal/domain"
)

type stubPlanner struct {
	plan *domain.GenerationPlan
	err  error
	last domain.PlanRequest
}

func (p *stubPlanner) Plan(_ context.Context, req domain.PlanRequest) (*domain.GenerationPlan, error) {
	p.last = req
	return p.plan, p.err
}

type stubCompositions struct {
	mu        sync.Mutex
	startErr  error
	deleteErr error
	started   []composer.Request
	states    map[string]composer.JobState
	updates   chan composer.JobState
}

func (s *stubCompositions) Start(req composer.Request) (composer.JobState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return composer.JobState{}, s.startErr
	}
	s.started = append(s.started, req)
	return composer.JobState{ID: "job-1", Status: domain.StatusIdle}, nil
}

func (s *stubCompositions) Get(id string) (composer.JobState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		return composer.JobState{}, composer.ErrUnknownJob
	}
	return st, nil
}

func (s *stubCompositions) Subscribe(id string) (composer.JobState, <-chan composer.JobState, func(), error) {
	st, err := s.Get(id)
	if err != nil {
		return st, nil, nil, err
	}
	return st, s.updates, func() {}, nil
}

func (s *stubCompositions) Delete(id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[id]; !ok {
		return composer.ErrUnknownJob
	}
	delete(s.states, id)
	return nil
}

type stubHistory struct {
	records []domain.GenerationRecord
	err     error
	user    string
	limit   int
}

func (h *stubHistory) SaveGeneration(context.Context, *domain.GenerationRecord) error { return nil }

func (h *stubHistory) ListByUser(_ context.Context, userID string, limit int) ([]domain.GenerationRecord, error) {
	h.user = userID
	h.limit = limit
	return h.records, h.err
}

type testApp struct {
	app          *App
	planner      *stubPlanner
	compositions *stubCompositions
	history      *stubHistory
	router       chi.Router
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	templates, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	ta := &testApp{
		planner:      &stubPlanner{plan: &domain.GenerationPlan{Template: domain.Template{ID: "cyberwave"}}},
		compositions: &stubCompositions{states: map[string]composer.JobState{}},
		history:      &stubHistory{},
	}
	ta.app = NewApp(Deps{
		Logger:         zerolog.Nop(),
		Planner:        ta.planner,
		Templates:      templates,
		Billing:        billing.NewService("", ""),
		Compositions:   ta.compositions,
		History:        ta.history,
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	r := chi.NewRouter()
	r.Get("/v1/healthz", ta.app.Health)
	r.Post("/v1/generate-plan", ta.app.GeneratePlan)
	r.Post("/v1/billing/create-session", ta.app.BillingCreateSession)
	r.Get("/v1/templates", ta.app.ListTemplates)
	r.Get("/v1/templates/trending", ta.app.TrendingTemplates)
	r.Get("/v1/templates/{id}", ta.app.GetTemplate)
	r.Post("/v1/compositions", ta.app.CreateComposition)
	r.Get("/v1/compositions/{id}", ta.app.GetComposition)
	r.Delete("/v1/compositions/{id}", ta.app.DeleteComposition)
	r.Get("/v1/compositions/{id}/events", ta.app.CompositionEvents)
	r.Get("/v1/compositions/{id}/video", ta.app.CompositionVideo)
	r.Get("/v1/compositions/{id}/thumbnail", ta.app.CompositionThumbnail)
	r.Get("/v1/compositions/{id}/bundle", ta.app.CompositionBundle)
	r.Get("/v1/history", ta.app.ListHistory)
	ta.router = r
	return ta
}
