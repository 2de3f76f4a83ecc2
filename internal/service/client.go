// Package service talks to the remote code analysis service.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/logger"
)

// AnalyzeRequest is the request body sent to the service
type AnalyzeRequest struct {
	Code string `json:"code"`
}

// ErrorResponse is the error body some service versions return
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client performs the single request/response exchange with the service
type Client struct {
	config   *Config
	client   *http.Client
	endpoint *url.URL
	logger   *logger.Logger
}

// New creates a new service client
func New(config *Config, log *logger.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %w", err)
	}

	endpoint, err := url.Parse(config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid service endpoint: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		endpoint: endpoint,
		logger:   log,
	}, nil
}

// Endpoint returns the configured service address
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Analyze posts source to the service and returns the raw 2xx response body.
// Transport failures and non-success statuses are reported as *analysis.ServiceError.
func (c *Client) Analyze(ctx context.Context, source string) ([]byte, error) {
	endpoint := c.endpoint.String()
	requestID := uuid.NewString()
	startTime := time.Now()

	jsonData, err := json.Marshal(&AnalyzeRequest{Code: source})
	if err != nil {
		return nil, c.fail(analysis.NewServiceErrorWithCause("failed to marshal request", endpoint, err), requestID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, c.fail(analysis.NewServiceErrorWithCause("failed to create request", endpoint, err), requestID)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.DebugWithFields("sending analysis request", []logger.Field{
		logger.RequestID(requestID),
		logger.F("endpoint", endpoint),
		logger.F("bytes", len(source)),
	})

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(analysis.NewServiceErrorWithCause("request failed", endpoint, err), requestID)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := c.config.MaxResponseBytes
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, c.fail(analysis.NewServiceErrorWithCause("failed to read response", endpoint, err), requestID)
	}
	oversized := int64(len(body)) > limit
	if oversized {
		body = body[:limit]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(analysis.NewServiceError(errorMessage(resp.StatusCode, body), endpoint, resp.StatusCode), requestID)
	}
	if oversized {
		message := fmt.Sprintf("response exceeds %d bytes", limit)
		return nil, c.fail(analysis.NewServiceError(message, endpoint, resp.StatusCode), requestID)
	}

	c.logger.DebugWithFields("analysis response received", []logger.Field{
		logger.RequestID(requestID),
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(startTime)),
	})

	return body, nil
}

func (c *Client) fail(err *analysis.ServiceError, requestID string) error {
	err.RequestID = requestID
	c.logger.DebugWithFields("analysis request failed", []logger.Field{
		logger.RequestID(requestID),
		logger.Error(err),
	})
	return err
}

// errorMessage prefers the service's own {"error": ...} text
func errorMessage(status int, body []byte) string {
	var errorResp ErrorResponse
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error != "" {
		return errorResp.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return fmt.Sprintf("request failed with status %d: %s", status, text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}
