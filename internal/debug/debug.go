// Package debug traces outgoing HTTP requests through log/slog when debug
// logging is on.
package debug

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const maxBodyLog = 500

// Transport wraps http.RoundTripper to log requests and responses at debug
// level.
type Transport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewTransport creates a Transport around base. A nil base uses
// http.DefaultTransport and a nil logger uses slog.Default() at request time.
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Transport: base, Logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(req.Context(), slog.LevelDebug) {
		return t.Transport.RoundTrip(req)
	}

	start := time.Now()
	logger.Debug("http request", "method", req.Method, "url", req.URL.String())

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		logger.Debug("http request failed", "method", req.Method, "url", req.URL.String(),
			"duration", duration, "error", err)
		return resp, err
	}

	attrs := []any{
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", duration,
	}
	if rl := resp.Header.Get("X-RateLimit-Remaining"); rl != "" {
		attrs = append(attrs, "rate_limit_remaining", rl, "rate_limit", resp.Header.Get("X-RateLimit-Limit"))
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			if wait := time.Until(time.Unix(reset, 0)); wait > 0 {
				attrs = append(attrs, "rate_limit_resets_in", wait.Round(time.Second))
			}
		}
	}

	// Failed responses carry the reason in the body.
	if resp.StatusCode >= http.StatusBadRequest && resp.Body != nil {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if readErr == nil && len(body) > 0 {
			attrs = append(attrs, "body", truncate(string(body), maxBodyLog))
		}
	}

	logger.Debug("http response", attrs...)
	return resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... [truncated]"
}
