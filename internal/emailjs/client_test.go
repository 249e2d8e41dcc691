package emailjs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var testCredentials = Credentials{
	ServiceID:   "service_123",
	TemplateID:  "template_456",
	UserID:      "user_789",
	AccessToken: "private-token",
}

func TestSendPostsCredentialsAndParams(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var got map[string]any
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got["service_id"] != "service_123" || got["template_id"] != "template_456" ||
			got["user_id"] != "user_789" || got["accessToken"] != "private-token" {
			t.Errorf("unexpected credentials in %v", got)
		}
		params, _ := got["template_params"].(map[string]any)
		if params["name"] != "Jo" || params["email"] != "jo@example.com" || params["message"] != "Hi" {
			t.Errorf("unexpected template params %v", params)
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	client, err := NewClient(testCredentials, WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Send(context.Background(), TemplateParams{Name: "Jo", Email: "jo@example.com", Message: "Hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}
}

func TestSendOmitsEmptyAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		_ = json.NewDecoder(r.Body).Decode(&got)
		if _, ok := got["accessToken"]; ok {
			t.Errorf("accessToken must be omitted when empty")
		}
	}))
	defer server.Close()

	creds := testCredentials
	creds.AccessToken = ""
	client, err := NewClient(creds, WithEndpoint(server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Send(context.Background(), TemplateParams{}); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestSendReportsUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("The Public Key is invalid"))
	}))
	defer server.Close()

	client, _ := NewClient(testCredentials, WithEndpoint(server.URL))
	err := client.Send(context.Background(), TemplateParams{})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusForbidden || upstream.Body != "The Public Key is invalid" {
		t.Fatalf("unexpected upstream error %+v", upstream)
	}
	if strings.Contains(err.Error(), "Public Key") {
		t.Fatalf("error text must not carry the upstream body")
	}
}

func TestSendWrapsNetworkErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := NewClient(testCredentials, WithEndpoint(url))
	err := client.Send(context.Background(), TemplateParams{})
	if err == nil {
		t.Fatalf("expected network error")
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		t.Fatalf("network errors must not look like upstream responses")
	}
}

func TestNewClientRequiresIdentifiers(t *testing.T) {
	_, err := NewClient(Credentials{ServiceID: "s"})
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected ErrCredentialsMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "template_id, user_id") {
		t.Fatalf("expected missing identifiers listed, got %v", err)
	}
}

func TestTimeoutAppliesToInjectedClient(t *testing.T) {
	injected := &http.Client{}
	for name, opts := range map[string][]Option{
		"timeout first": {WithTimeout(3 * time.Second), WithHTTPClient(injected)},
		"client first":  {WithHTTPClient(injected), WithTimeout(3 * time.Second)},
	} {
		client, err := NewClient(testCredentials, opts...)
		if err != nil {
			t.Fatalf("%s: new client: %v", name, err)
		}
		if client.httpClient.Timeout != 3*time.Second {
			t.Fatalf("%s: expected 3s timeout, got %s", name, client.httpClient.Timeout)
		}
	}
	if injected.Timeout != 0 {
		t.Fatalf("the injected client must not be mutated")
	}
}

func TestDefaultTimeout(t *testing.T) {
	client, err := NewClient(testCredentials)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.httpClient.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %s", client.httpClient.Timeout)
	}
}
