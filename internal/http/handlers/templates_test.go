package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelsmaker/internal/billing"
	"reelsmaker/internal/domain"
)

type templateList struct {
	Items []domain.Template `json:"items"`
}

func TestTemplatesEndpoints(t *testing.T) {
	ta := newTestApp(t)

	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/templates", nil))
	var all templateList
	if err := json.Unmarshal(rr.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Code != http.StatusOK || len(all.Items) != 5 {
		t.Fatalf("status %d, %d templates", rr.Code, len(all.Items))
	}

	rr = httptest.NewRecorder()
	ta.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/templates/trending?limit=2", nil))
	var trending templateList
	if err := json.Unmarshal(rr.Body.Bytes(), &trending); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trending.Items) != 2 || trending.Items[0].ID != "cyberwave" {
		t.Fatalf("unexpected trending %+v", trending.Items)
	}

	rr = httptest.NewRecorder()
	ta.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/templates/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing template status = %d", rr.Code)
	}
}

func TestBillingCreateSession(t *testing.T) {
	ta := newTestApp(t)
	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/billing/create-session", nil))
	var session billing.Session
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.URL != "" || session.Message != billing.NotConfiguredMessage {
		t.Fatalf("unexpected session %+v", session)
	}

	ta.app.Billing = billing.NewService("sk_test", "price_42")
	rr = httptest.NewRecorder()
	ta.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/billing/create-session", nil))
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.URL != "https://buy.stripe.com/test_price_42" {
		t.Fatalf("url = %q", session.URL)
	}
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)
	rr := httptest.NewRecorder()
	ta.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
