// Package billing builds checkout links for the premium upgrade.
package billing

import (
	"context"
	"net/url"
	"strings"
)

// NotConfiguredMessage is returned in place of a link when Stripe keys are absent.
const NotConfiguredMessage = "Stripe not configured. Set STRIPE_SECRET_KEY and STRIPE_PRICE_ID to enable live checkout."

const checkoutBaseURL = "https://buy.stripe.com/test_"

// Session is the checkout response. URL is empty when billing is disabled.
type Session struct {
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
}

type Service struct {
	secretKey string
	priceID   string
}

func NewService(secretKey, priceID string) *Service {
	return &Service{secretKey: strings.TrimSpace(secretKey), priceID: strings.TrimSpace(priceID)}
}

func (s *Service) Configured() bool {
	return s != nil && s.secretKey != "" && s.priceID != ""
}

// CreateSession returns a hosted checkout link for the configured price.
func (s *Service) CreateSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if !s.Configured() {
		return Session{Message: NotConfiguredMessage}, nil
	}
	return Session{URL: checkoutBaseURL + url.PathEscape(s.priceID)}, nil
}
