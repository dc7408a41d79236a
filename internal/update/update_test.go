package update

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/salmonumbrella/rstgrid/internal/testutil"
)

type fakeHTTPClient struct {
	status int
	body   string
	err    error
	calls  *int
}

func (f fakeHTTPClient) Do(_ *http.Request) (*http.Response, error) {
	if f.calls != nil {
		*f.calls++
	}
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current  string
		latest   string
		expected bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.0.0", "1.0.0", false},
		{"1.0.1", "1.0.0", false},
		{"1.0.0", "2.0.0", true},
		{"1.9.0", "1.10.0", true}, // integer comparison, not string
		{"1.0", "1.0.1", true},
		{"dev", "1.0.0", false},
		{"", "1.0.0", false},
		{"1.0.0", "", false},
	}

	for _, tt := range tests {
		if got := isNewer(tt.current, tt.latest); got != tt.expected {
			t.Errorf("isNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.expected)
		}
	}
}

func TestCheck_FetchesAndCaches(t *testing.T) {
	srv := testutil.NewMockServer()
	defer srv.Close()
	srv.HandleLatestRelease(GitHubRepo, "v1.2.0")

	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	cachePath := filepath.Join(t.TempDir(), "rstgrid", "update-check.json")
	checker := NewChecker(
		WithAPIBase(srv.URL()),
		WithHTTPClient(srv.Client()),
		WithCachePath(cachePath),
		WithNow(func() time.Time { return now }),
	)

	msg, err := checker.Check(context.Background(), "1.1.0")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !strings.Contains(msg, "1.2.0") || !strings.Contains(msg, "cmd/rstgrid@latest") {
		t.Errorf("message = %q", msg)
	}

	// Second check within the interval is answered from the cache.
	if _, err := checker.Check(context.Background(), "1.1.0"); err != nil {
		t.Fatalf("second Check() error = %v", err)
	}
	if calls := srv.Calls(http.MethodGet, "/repos/"+GitHubRepo+"/releases/latest"); calls != 1 {
		t.Errorf("server saw %d requests, want 1", calls)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Errorf("cache file not written: %v", err)
	}
}

func TestCheck_NoNewerRelease(t *testing.T) {
	srv := testutil.NewMockServer()
	defer srv.Close()
	srv.HandleLatestRelease(GitHubRepo, "v1.1.0")

	msg, err := NewChecker(
		WithAPIBase(srv.URL()+"/"),
		WithHTTPClient(srv.Client()),
		WithCachePath(filepath.Join(t.TempDir(), "cache.json")),
	).Check(context.Background(), "1.1.0")
	if err != nil || msg != "" {
		t.Errorf("Check() = %q, %v; want no message", msg, err)
	}
}

func TestCheck_ExpiredCacheRefetches(t *testing.T) {
	var calls int
	cachePath := filepath.Join(t.TempDir(), "cache.json")
	old := `{"last_check":"2026-01-01T00:00:00Z","latest_version":"1.0.0"}`
	if err := os.WriteFile(cachePath, []byte(old), 0o644); err != nil {
		t.Fatal(err)
	}

	msg, err := NewChecker(
		WithCachePath(cachePath),
		WithNow(func() time.Time { return time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC) }),
		WithCheckInterval(24*time.Hour),
		WithHTTPClient(fakeHTTPClient{status: http.StatusOK, body: `{"tag_name":"v2.0.0"}`, calls: &calls}),
	).Check(context.Background(), "1.0.0")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if calls != 1 || !strings.Contains(msg, "2.0.0") {
		t.Errorf("calls = %d, message = %q", calls, msg)
	}
}

func TestCheck_DevVersionSkipsLookup(t *testing.T) {
	var calls int
	msg, err := NewChecker(
		WithCachePath(filepath.Join(t.TempDir(), "cache.json")),
		WithHTTPClient(fakeHTTPClient{err: errors.New("should not be called"), calls: &calls}),
	).Check(context.Background(), "dev")
	if err != nil || msg != "" || calls != 0 {
		t.Errorf("Check(dev) = %q, %v after %d calls", msg, err, calls)
	}
}

func TestCheck_FetchError(t *testing.T) {
	_, err := NewChecker(
		WithCachePath(filepath.Join(t.TempDir(), "cache.json")),
		WithHTTPClient(fakeHTTPClient{err: errors.New("boom")}),
	).Check(context.Background(), "1.0.0")
	var updateErr *UpdateError
	if !errors.As(err, &updateErr) {
		t.Fatalf("expected UpdateError, got %T", err)
	}
	if updateErr.Op != "fetch latest release" {
		t.Errorf("Op = %q", updateErr.Op)
	}
}

func TestCheck_BadStatus(t *testing.T) {
	_, err := NewChecker(
		WithCachePath(filepath.Join(t.TempDir(), "cache.json")),
		WithHTTPClient(fakeHTTPClient{status: http.StatusForbidden}),
	).Check(context.Background(), "1.0.0")
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("Check() error = %v, want status 403", err)
	}
}

func TestCheck_SaveCacheErrorReturnsMessage(t *testing.T) {
	checker := NewChecker(
		WithCachePath(filepath.Join(t.TempDir(), "cache.json")),
		WithHTTPClient(fakeHTTPClient{status: http.StatusOK, body: `{"tag_name":"v9.9.9"}`}),
	)
	checker.writeFile = func(string, []byte, os.FileMode) error { return errors.New("write failed") }

	msg, err := checker.Check(context.Background(), "1.0.0")
	if msg == "" {
		t.Fatal("expected update message despite cache write failure")
	}
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
