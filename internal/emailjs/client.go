// Package emailjs is a minimal client for the EmailJS send API. Credentials
// come from server configuration and never leave the process.
package emailjs

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

// DefaultEndpoint is the EmailJS REST send endpoint.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// DefaultTimeout bounds one send when the caller sets no timeout.
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 4 << 10

var ErrCredentialsMissing = errors.New("emailjs credentials incomplete")

// Credentials identify the EmailJS service, template and account.
type Credentials struct {
	ServiceID   string
	TemplateID  string
	UserID      string
	AccessToken string
}

// Validate reports which identifiers are missing. AccessToken is optional
// for accounts that do not enforce private keys.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ServiceID) == "" {
		missing = append(missing, "service_id")
	}
	if strings.TrimSpace(c.TemplateID) == "" {
		missing = append(missing, "template_id")
	}
	if strings.TrimSpace(c.UserID) == "" {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrCredentialsMissing, strings.Join(missing, ", "))
	}
	return nil
}

// TemplateParams are the values substituted into the email template.
type TemplateParams struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// UpstreamError is returned for non-2xx responses. Body is kept for server
// logs only.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("emailjs: upstream status %d", e.Status)
}

// Client sends one email per call.
type Client struct {
	endpoint    string
	credentials Credentials
	httpClient  *http.Client
	timeout     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout. It applies to the default client and
// to one given with WithHTTPClient, whatever the option order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient validates credentials and returns a ready client.
func NewClient(credentials Credentials, opts ...Option) (*Client, error) {
	if err := credentials.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:    DefaultEndpoint,
		credentials: credentials,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		clone := *c.httpClient
		clone.Timeout = c.timeout
		c.httpClient = &clone
	}
	return c, nil
}

// Send issues exactly one POST to the send endpoint.
func (c *Client) Send(ctx context.Context, params TemplateParams) error {
	payload := sendRequest{
		ServiceID:      c.credentials.ServiceID,
		TemplateID:     c.credentials.TemplateID,
		UserID:         c.credentials.UserID,
		AccessToken:    c.credentials.AccessToken,
		TemplateParams: params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("emailjs: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emailjs: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
