package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"dataset-feedback/backend/pkg/logger"
	"dataset-feedback/backend/pkg/resilience"
)

// MoralChecker screens comment text before submission. Implementations must
// treat their own outages as errors, never as judgements; callers decide the
// fail-open policy.
type MoralChecker interface {
	// Check reports whether the text is acceptable as written.
	Check(ctx context.Context, text string) (bool, error)
	// Suggest returns a softened rewrite of the text.
	Suggest(ctx context.Context, text string) (string, error)
}

// MoralCheckClient calls the external moral check service over HTTP. A
// circuit breaker fails calls fast while the service is down so submission
// latency stays bounded.
type MoralCheckClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	log        *logger.Logger
}

// NewMoralCheckClient creates a client for the given service URL.
func NewMoralCheckClient(baseURL string, timeout time.Duration, log *logger.Logger) (*MoralCheckClient, error) {
	if baseURL == "" {
		return nil, errors.New("moral check service URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MoralCheckClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultConfig("moral-check"), log),
		log:        log,
	}, nil
}

type checkRequest struct {
	Comment string `json:"comment"`
}

type checkResponse struct {
	Acceptable bool   `json:"acceptable"`
	Error      string `json:"error,omitempty"`
}

type suggestResponse struct {
	Suggestion string `json:"suggestion"`
	Error      string `json:"error,omitempty"`
}

// Check reports whether the comment text passes the screening.
func (c *MoralCheckClient) Check(ctx context.Context, text string) (bool, error) {
	var out checkResponse
	err := c.breaker.Execute(func() error {
		return c.post(ctx, "/check", checkRequest{Comment: text}, &out)
	})
	if err != nil {
		return false, err
	}
	if out.Error != "" {
		return false, fmt.Errorf("moral check error: %s", out.Error)
	}
	return out.Acceptable, nil
}

// Suggest returns a softened rewrite of the comment text.
func (c *MoralCheckClient) Suggest(ctx context.Context, text string) (string, error) {
	var out suggestResponse
	err := c.breaker.Execute(func() error {
		return c.post(ctx, "/suggest", checkRequest{Comment: text}, &out)
	})
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("moral check error: %s", out.Error)
	}
	return out.Suggestion, nil
}

func (c *MoralCheckClient) post(ctx context.Context, path string, in, out interface{}) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making API request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %v", err)
	}
	return nil
}
