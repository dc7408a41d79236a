package debug

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/salmonumbrella/rstgrid/internal/testutil"
)

func debugLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level}))
}

func get(t *testing.T, client *http.Client, url string) string {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestTransport_LogsRequestAndResponse(t *testing.T) {
	srv := testutil.NewMockServer()
	defer srv.Close()
	srv.HandleLatestRelease("salmonumbrella/rstgrid", "v1.0.0")

	var buf bytes.Buffer
	client := &http.Client{Transport: NewTransport(srv.Client().Transport, debugLogger(&buf, slog.LevelDebug))}
	body := get(t, client, srv.URL()+"/repos/salmonumbrella/rstgrid/releases/latest")

	if !strings.Contains(body, "v1.0.0") {
		t.Errorf("body = %q, transport must not consume it", body)
	}
	out := buf.String()
	for _, want := range []string{`msg="http request"`, "method=GET", `msg="http response"`, "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "body=") {
		t.Errorf("successful response body should not be logged:\n%s", out)
	}
}

func TestTransport_LogsFailedBody(t *testing.T) {
	srv := testutil.NewMockServer()
	defer srv.Close()
	srv.HandleJSON(http.MethodGet, "/limited", http.StatusForbidden, map[string]string{
		"message": strings.Repeat("x", 600),
	})

	var buf bytes.Buffer
	client := &http.Client{Transport: NewTransport(srv.Client().Transport, debugLogger(&buf, slog.LevelDebug))}
	body := get(t, client, srv.URL()+"/limited")

	if !strings.Contains(body, "xxx") {
		t.Errorf("body was not restored: %q", body)
	}
	out := buf.String()
	if !strings.Contains(out, "status=403") || !strings.Contains(out, "[truncated]") {
		t.Errorf("log = %s", out)
	}
}

func TestTransport_RateLimitHeaders(t *testing.T) {
	srv := testutil.NewMockServer()
	defer srv.Close()
	srv.Handle(http.MethodGet, "/rl", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "59")
		w.WriteHeader(http.StatusOK)
	})

	var buf bytes.Buffer
	client := &http.Client{Transport: NewTransport(srv.Client().Transport, debugLogger(&buf, slog.LevelDebug))}
	get(t, client, srv.URL()+"/rl")

	if out := buf.String(); !strings.Contains(out, "rate_limit_remaining=59") || !strings.Contains(out, "rate_limit=60") {
		t.Errorf("log = %s", out)
	}
}

func TestTransport_QuietBelowDebug(t *testing.T) {
	srv := testutil.NewMockServer()
	defer srv.Close()

	var buf bytes.Buffer
	client := &http.Client{Transport: NewTransport(srv.Client().Transport, debugLogger(&buf, slog.LevelInfo))}
	get(t, client, srv.URL()+"/missing")

	if buf.Len() != 0 {
		t.Errorf("expected no log output at info level, got %s", buf.String())
	}
}

func TestTransport_Error(t *testing.T) {
	var buf bytes.Buffer
	client := &http.Client{Transport: NewTransport(nil, debugLogger(&buf, slog.LevelDebug))}

	if _, err := client.Get("http://invalid.localhost.test:99999"); err == nil {
		t.Fatal("expected request to fail")
	}
	if !strings.Contains(buf.String(), `msg="http request failed"`) {
		t.Errorf("log = %s", buf.String())
	}
}

func TestNewTransport_Defaults(t *testing.T) {
	tr := NewTransport(nil, nil)
	if tr.Transport != http.DefaultTransport {
		t.Error("expected default transport when nil is passed")
	}
}
