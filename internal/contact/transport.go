package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRelayTimeout bounds one relay request. Expiry counts as a failure.
const DefaultRelayTimeout = 10 * time.Second

var (
	ErrRelayStatus   = errors.New("contact relay returned non-success status")
	ErrRelayResponse = errors.New("contact relay response malformed")
)

// Result is the outcome reported by a transport.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Transport delivers a validated submission.
type Transport interface {
	Send(ctx context.Context, submission Submission) (Result, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, submission Submission) (Result, error)

func (fn TransportFunc) Send(ctx context.Context, submission Submission) (Result, error) {
	return fn(ctx, submission)
}

// RelayTransport posts submissions as JSON to the same-origin relay endpoint.
// It never holds credentials.
type RelayTransport struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
}

// RelayOption configures a RelayTransport.
type RelayOption func(*RelayTransport)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) RelayOption {
	return func(t *RelayTransport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// WithRelayTimeout overrides DefaultRelayTimeout, also on a client given
// with WithHTTPClient.
func WithRelayTimeout(timeout time.Duration) RelayOption {
	return func(t *RelayTransport) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// NewRelayTransport targets endpoint, typically "/api/contact" on the site
// origin.
func NewRelayTransport(endpoint string, opts ...RelayOption) *RelayTransport {
	t := &RelayTransport{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: DefaultRelayTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.timeout > 0 {
		clone := *t.httpClient
		clone.Timeout = t.timeout
		t.httpClient = &clone
	}
	return t
}

// Send issues exactly one POST. Any failure (network, timeout, non-2xx,
// undecodable body) yields Result{Success: false} together with the cause.
func (t *RelayTransport) Send(ctx context.Context, submission Submission) (Result, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return Result{}, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("send relay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{}, fmt.Errorf("%w: %d", ErrRelayStatus, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRelayResponse, err)
	}
	return result, nil
}
