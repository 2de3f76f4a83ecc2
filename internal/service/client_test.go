package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/CodeLens/internal/analysis"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()

	config := DefaultConfig()
	config.Endpoint = endpoint
	config.Timeout = 2 * time.Second

	client, err := New(config, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" {
			t.Errorf("Expected path '/analyze', got '%s'", r.URL.Path)
		}

		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got '%s'", r.Method)
		}

		if r.Header.Get("X-Request-ID") == "" {
			t.Error("Expected X-Request-ID header to be set")
		}

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		if req.Code != "x=1" {
			t.Errorf("Expected code 'x=1', got '%s'", req.Code)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tokens": [], "lex_errors": null}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/analyze")

	body, err := client.Analyze(context.Background(), "x=1")
	if err != nil {
		t.Fatalf("Failed to analyze: %v", err)
	}

	if !strings.Contains(string(body), `"tokens"`) {
		t.Errorf("Expected raw body to be returned, got '%s'", string(body))
	}
}

func TestClient_AnalyzeErrorStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"json error body", http.StatusBadRequest, `{"error": "JSON inválido"}`, "JSON inválido"},
		{"plain text body", http.StatusMethodNotAllowed, "Método no permitido\n", "request failed with status 405: Método no permitido"},
		{"html body", http.StatusBadGateway, "<html>bad gateway</html>", "request failed with status 502"},
		{"empty body", http.StatusInternalServerError, "", "request failed with status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)

			_, err := client.Analyze(context.Background(), "x=1")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var serviceErr *analysis.ServiceError
			if !errors.As(err, &serviceErr) {
				t.Fatalf("Expected ServiceError, got %T", err)
			}

			if serviceErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, serviceErr.StatusCode)
			}

			if serviceErr.Message != tt.wantMessage {
				t.Errorf("Expected message '%s', got '%s'", tt.wantMessage, serviceErr.Message)
			}

			if serviceErr.RequestID == "" {
				t.Error("Expected request id to be recorded")
			}
		})
	}
}

func TestClient_AnalyzeTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := newTestClient(t, endpoint)

	_, err := client.Analyze(context.Background(), "x=1")
	if !analysis.IsServiceError(err) {
		t.Fatalf("Expected ServiceError, got %v", err)
	}

	var serviceErr *analysis.ServiceError
	_ = errors.As(err, &serviceErr)
	if serviceErr.StatusCode != 0 {
		t.Errorf("Expected no status code for transport failure, got %d", serviceErr.StatusCode)
	}
	if serviceErr.Cause == nil {
		t.Error("Expected underlying cause to be kept")
	}
}

func TestClient_AnalyzeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	config := DefaultConfig()
	config.Endpoint = server.URL
	config.Timeout = 50 * time.Millisecond

	client, err := New(config, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.Analyze(context.Background(), "x=1")
	if !analysis.IsServiceError(err) {
		t.Errorf("Expected timeout to surface as ServiceError, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"bad scheme", func(c *Config) { c.Endpoint = "ftp://host/analyze" }, true},
		{"missing host", func(c *Config) { c.Endpoint = "http:///analyze" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, false},
		{"zero max bytes", func(c *Config) { c.MaxResponseBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_AnalyzeResponseSizeLimit(t *testing.T) {
	payload := `{"tokens": [` + strings.Repeat(`{"type": "identifier", "value": "x", "line": 1},`, 50) + `{}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	tests := []struct {
		name     string
		maxBytes int64
		wantErr  bool
	}{
		{"oversized body", 100, true},
		{"body at the limit", int64(len(payload)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Endpoint = server.URL
			config.MaxResponseBytes = tt.maxBytes

			client, err := New(config, nil)
			if err != nil {
				t.Fatalf("Failed to create client: %v", err)
			}

			body, err := client.Analyze(context.Background(), "x=1")
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Failed to analyze: %v", err)
				}
				if string(body) != payload {
					t.Errorf("Expected the full body, got %d bytes", len(body))
				}
				return
			}

			var serviceErr *analysis.ServiceError
			if !errors.As(err, &serviceErr) {
				t.Fatalf("Expected ServiceError, got %v", err)
			}
			if !strings.Contains(serviceErr.Message, "exceeds 100 bytes") {
				t.Errorf("Expected size limit message, got '%s'", serviceErr.Message)
			}
			if analysis.IsSchemaError(err) {
				t.Error("Oversized body must not be reported as a schema error")
			}
		})
	}
}
