package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"reelsmaker/internal/billing"
	"reelsmaker/internal/composer"
	"reelsmaker/internal/domain"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/middleware"
)

const maxBodyBytes = 1 << 20

// CompositionManager runs background compositions. *composer.Manager
// satisfies it.
type CompositionManager interface {
	Start(req composer.Request) (composer.JobState, error)
	Get(id string) (composer.JobState, error)
	Subscribe(id string) (composer.JobState, <-chan composer.JobState, func(), error)
	Delete(id string) error
}

// Deps are the collaborators an App serves. Compositions and History may be
// nil; their endpoints then answer 503.
type Deps struct {
	Logger         infra.Logger
	Planner        composer.Planner
	Templates      domain.TemplateRepository
	Billing        *billing.Service
	Compositions   CompositionManager
	History        domain.GenerationRepository
	AllowedOrigins []string
}

type App struct {
	Logger       infra.Logger
	Planner      composer.Planner
	Templates    domain.TemplateRepository
	Billing      *billing.Service
	Compositions CompositionManager
	History      domain.GenerationRepository

	upgrader websocket.Upgrader
}

func NewApp(d Deps) *App {
	allowed := make(map[string]struct{}, len(d.AllowedOrigins))
	for _, origin := range d.AllowedOrigins {
		allowed[origin] = struct{}{}
	}
	return &App{
		Logger:       d.Logger,
		Planner:      d.Planner,
		Templates:    d.Templates,
		Billing:      d.Billing,
		Compositions: d.Compositions,
		History:      d.History,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				_, wildcard := allowed["*"]
				return ok || wildcard
			},
		},
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorResponse{Error: message, Code: code})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// decode reads a JSON body. An empty body leaves v untouched.
func (a *App) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// planRequest reads a plan request body and fills the caller's locale and,
// for identified callers, the tier carried by their token.
func (a *App) planRequest(r *http.Request) (domain.PlanRequest, error) {
	var req domain.PlanRequest
	if err := a.decode(r, &req); err != nil {
		return req, err
	}
	req.Locale = middleware.LocaleFromContext(r.Context())
	if a.currentUserID(r) != "" {
		req.Tier = middleware.TierFromContext(r.Context())
	}
	return req, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
