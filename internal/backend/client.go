// Package backend provides the client for the remote diagnostic backend.
package backend

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

	"github.com/api-debugger/internal/config"
	"github.com/api-debugger/internal/domain"
	"github.com/api-debugger/pkg/sanitizer"
	"go.uber.org/zap"
)

const (
	debugPath       = "/debug"
	testRequestPath = "/test-request"
	healthPath      = "/health"

	// maxErrorBody bounds how much of an error payload is read.
	maxErrorBody = 64 << 10
)

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	sanitizer  *sanitizer.Sanitizer
	validator  ResponseValidator
	logger     *zap.Logger
}

// NewHTTPClient creates a backend client from configuration.
func NewHTTPClient(cfg *config.BackendConfig, s *sanitizer.Sanitizer, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		sanitizer: s,
		validator: NewDefaultValidator(),
		logger:    logger.Named("backend_client"),
	}
}

// Debug sends POST /debug.
func (c *HTTPClient) Debug(ctx context.Context, req *domain.DiagnosticRequest) (*domain.DiagnosticResponse, error) {
	startTime := time.Now()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.BackendError{Op: "debug", Err: fmt.Errorf("marshal request: %w", err)}
	}

	c.logger.Debug("sending diagnostic request",
		zap.String("payload", c.sanitizer.Mask(string(payload))),
		zap.Int("secrets_masked", c.sanitizer.CountSecrets(string(payload))),
		zap.Bool("has_api_request", req.APIRequest != nil),
		zap.Bool("has_api_response", req.APIResponse != nil),
	)

	body, err := c.do(ctx, "debug", http.MethodPost, debugPath, payload)
	if err != nil {
		return nil, err
	}

	var result *domain.DiagnosticResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Warn("failed to unmarshal diagnostic response",
			zap.Error(err),
			zap.String("body_preview", truncate(string(body), 200)),
		)
		return nil, &domain.BackendError{Op: "debug", Err: fmt.Errorf("%w: %v", domain.ErrInvalidBackendResponse, err)}
	}

	if err := c.validator.Validate(result); err != nil {
		c.logger.Warn("diagnostic response failed validation",
			zap.Error(err),
			zap.String("body_preview", truncate(string(body), 200)),
		)
		return nil, &domain.BackendError{Op: "debug", Err: err}
	}

	c.logger.Debug("diagnostic request completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.String("status", result.Status),
	)

	return result, nil
}

// TestRequest sends POST /test-request.
func (c *HTTPClient) TestRequest(ctx context.Context, req *domain.APIRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.BackendError{Op: "test_request", Err: fmt.Errorf("marshal request: %w", err)}
	}

	body, err := c.do(ctx, "test_request", http.MethodPost, testRequestPath, payload)
	if err != nil {
		return nil, err
	}
	return rawJSON(body), nil
}

// Health sends GET /health.
func (c *HTTPClient) Health(ctx context.Context) (json.RawMessage, error) {
	body, err := c.do(ctx, "health", http.MethodGet, healthPath, nil)
	if err != nil {
		return nil, err
	}
	return rawJSON(body), nil
}

// do performs exactly one HTTP exchange and returns the success body.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &domain.BackendError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &domain.BackendError{Op: op, Err: ctx.Err()}
		}
		c.logger.Warn("backend unreachable", zap.String("op", op), zap.Error(err))
		return nil, &domain.BackendError{Op: op, Err: fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := ExtractDetail(body)
		c.logger.Warn("backend returned error status",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail),
		)
		return nil, &domain.BackendError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     detail,
			Err:        fmt.Errorf("%w: backend returned status %d", domain.ErrBackendRejected, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.BackendError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	return body, nil
}

// ExtractDetail pulls a human-readable message out of an error payload.
// Precedence: "detail" (string or structured), then "error", then "message".
// Returns "" when the payload carries nothing usable.
func ExtractDetail(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if msg := describe(raw); msg != "" {
			return msg
		}
	}
	return ""
}

// describe renders a detail value. FastAPI validation errors arrive as a list
// of {loc, msg}; those become "loc: msg; loc: msg".
func describe(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if len(it.Loc) == 0 {
				parts = append(parts, it.Msg)
				continue
			}
			loc := make([]string, len(it.Loc))
			for i, l := range it.Loc {
				loc[i] = fmt.Sprint(l)
			}
			parts = append(parts, strings.Join(loc, ".")+": "+it.Msg)
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	if string(raw) == "null" {
		return ""
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return ""
	}
	return compact.String()
}

// rawJSON returns body as JSON, quoting it when the backend sent plain text.
func rawJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}

// IsCanceled reports whether err came from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
