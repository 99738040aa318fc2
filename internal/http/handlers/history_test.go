package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/history"
	"reelsmaker/internal/middleware"
)

func TestListHistoryRequiresIdentity(t *testing.T) {
	ta := newTestApp(t)
	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestListHistory(t *testing.T) {
	ta := newTestApp(t)
	ta.history.records = []domain.GenerationRecord{{ID: "rec-1", UserID: "user-1", VideoKey: "reels/user-1/rec-1.webm"}}

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Items []domain.GenerationRecord `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].ID != "rec-1" {
		t.Fatalf("items = %+v", body.Items)
	}
	if ta.history.user != "user-1" || ta.history.limit != history.DefaultListLimit {
		t.Fatalf("history called with %q/%d", ta.history.user, ta.history.limit)
	}
}

func TestListHistoryEmptyAndFailure(t *testing.T) {
	ta := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=5", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "{\"items\":[]}\n" {
		t.Fatalf("empty history = %d %q", rr.Code, rr.Body.String())
	}
	if ta.history.limit != 5 {
		t.Fatalf("limit = %d, want 5", ta.history.limit)
	}

	ta.history.err = errors.New("db down")
	rr = httptest.NewRecorder()
	ta.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}
