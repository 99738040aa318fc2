package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"reelsmaker/internal/domain"
)

// Planner produces generation plans. planner.Service satisfies it in-process;
// HTTPPlanner calls a remote API.
type Planner interface {
	Plan(ctx context.Context, req domain.PlanRequest) (*domain.GenerationPlan, error)
}

// HTTPPlanner calls POST /v1/generate-plan on a reelsmaker API.
type HTTPPlanner struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// PlanError is a non-success response from the plan endpoint.
type PlanError struct {
	Status  int
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("generate-plan: status %d: %s", e.Status, e.Message)
}

func (p *HTTPPlanner) Plan(ctx context.Context, req domain.PlanRequest) (*domain.GenerationPlan, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("generate-plan: encode request: %w", err)
	}
	endpoint := strings.TrimRight(p.BaseURL, "/") + "/v1/generate-plan"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("generate-plan: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.Token)
	}
	if req.Locale != "" {
		httpReq.Header.Set("Accept-Language", req.Locale)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generate-plan: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("generate-plan: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &PlanError{Status: resp.StatusCode, Message: envelope.Error}
	}
	var plan domain.GenerationPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("generate-plan: decode response: %w", err)
	}
	return &plan, nil
}
