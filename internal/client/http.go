package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is read for its detail.
const maxErrorBody = 1 << 20

// Option configures a Dispatcher or an Exporter.
type Option func(*transport)

// WithHTTPClient sets the HTTP client used for requests. Timeouts belong to
// the client; the default client has none.
func WithHTTPClient(c *http.Client) Option {
	return func(t *transport) {
		if c != nil {
			t.httpClient = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// transport is the HTTP plumbing shared by Dispatcher and Exporter.
type transport struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

func newTransport(baseURL string, opts []Option) (*transport, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	t := &transport{baseURL: u, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	if t.httpClient == nil {
		t.httpClient = &http.Client{}
	}
	return t, nil
}

func (t *transport) endpoint(path string) string {
	return t.baseURL.JoinPath(path).String()
}

// post sends body as JSON to path. The caller closes the response body.
func (t *transport) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Debug("request failed", "path", path, "error", err)
		return nil, &NetworkError{Err: err}
	}
	t.logger.Debug("request done", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// detailMessage extracts the "detail" string from an error body.
// It returns fallback when the body has no non-empty string detail,
// for example a validation error whose detail is a list.
func detailMessage(body io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return fallback
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}
	var msg string
	if err := json.Unmarshal(payload.Detail, &msg); err != nil || msg == "" {
		return fallback
	}
	return msg
}
