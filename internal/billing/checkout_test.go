package billing

import (
	"context"
	"testing"
)

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name        string
		secret      string
		price       string
		wantURL     string
		wantMessage string
	}{
		{name: "missing both", wantMessage: NotConfiguredMessage},
		{name: "missing price", secret: "sk_test", wantMessage: NotConfiguredMessage},
		{name: "blank secret", secret: "  ", price: "price_1", wantMessage: NotConfiguredMessage},
		{name: "configured", secret: "sk_test", price: "price_123", wantURL: "https://buy.stripe.com/test_price_123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewService(tc.secret, tc.price).CreateSession(context.Background())
			if err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}
			if got.URL != tc.wantURL || got.Message != tc.wantMessage {
				t.Fatalf("CreateSession() = %+v, want url %q message %q", got, tc.wantURL, tc.wantMessage)
			}
		})
	}
}

func TestCreateSessionHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewService("sk", "price").CreateSession(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
