// Package update tells interactive users when a newer rstgrid release exists.
// Results are cached so at most one request goes out per interval.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/salmonumbrella/rstgrid/internal/debug"
)

const (
	// CheckInterval is the minimum time between release lookups.
	CheckInterval = 24 * time.Hour
	// GitHubRepo is the repository whose releases are checked.
	GitHubRepo = "salmonumbrella/rstgrid"
	// EnvDisable turns the check off when set to any value.
	EnvDisable = "RSTGRID_NO_UPDATE_CHECK"

	requestTimeout = 3 * time.Second
)

type cacheEntry struct {
	LastCheck     time.Time `json:"last_check"`
	LatestVersion string    `json:"latest_version"`
}

// HTTPDoer abstracts an HTTP client for testability.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Checker looks up the latest release and compares it with the running
// version.
type Checker struct {
	httpClient HTTPDoer
	cachePath  string
	interval   time.Duration
	now        func() time.Time
	writeFile  func(string, []byte, os.FileMode) error
	apiBase    string
	repo       string
}

// Option configures a Checker.
type Option func(*Checker)

// NewChecker creates a Checker with defaults and applies options.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		httpClient: http.DefaultClient,
		interval:   CheckInterval,
		now:        time.Now,
		writeFile:  os.WriteFile,
		apiBase:    "https://api.github.com",
		repo:       GitHubRepo,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCachePath overrides where the last result is stored.
func WithCachePath(path string) Option {
	return func(c *Checker) { c.cachePath = path }
}

// WithNow overrides the clock.
func WithNow(fn func() time.Time) Option {
	return func(c *Checker) {
		if fn != nil {
			c.now = fn
		}
	}
}

// WithCheckInterval overrides the check interval.
func WithCheckInterval(interval time.Duration) Option {
	return func(c *Checker) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithAPIBase points release lookups at another GitHub API host.
func WithAPIBase(base string) Option {
	return func(c *Checker) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.apiBase = base
		}
	}
}

// UpdateError wraps update-check failures with the step that failed.
type UpdateError struct {
	Op  string
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update check %s: %v", e.Op, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// Check returns a message when a newer version than current exists, or ""
// otherwise. A failed cache write still returns the message alongside the
// error.
func (c *Checker) Check(ctx context.Context, current string) (string, error) {
	if !isRelease(current) {
		return "", nil
	}

	path, err := c.resolveCachePath()
	if err != nil {
		return "", &UpdateError{Op: "cache path", Err: err}
	}

	entry := readCache(path)
	if entry.LatestVersion != "" && c.now().Sub(entry.LastCheck) <= c.interval {
		return c.message(current, entry.LatestVersion), nil
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	latest, err := c.fetchLatest(ctx)
	if err != nil {
		return "", &UpdateError{Op: "fetch latest release", Err: err}
	}

	msg := c.message(current, latest)
	if err := c.writeCache(path, cacheEntry{LastCheck: c.now(), LatestVersion: latest}); err != nil {
		return msg, &UpdateError{Op: "save cache", Err: err}
	}
	return msg, nil
}

// Check runs a default check and logs failures at debug level.
func Check(ctx context.Context, current string) string {
	client := &http.Client{Transport: debug.NewTransport(nil, nil)}
	msg, err := NewChecker(WithHTTPClient(client)).Check(ctx, current)
	if err != nil {
		slog.Debug("update check failed", "error", err)
	}
	return msg
}

func (c *Checker) message(current, latest string) string {
	if !isNewer(current, latest) {
		return ""
	}
	return fmt.Sprintf("A new version of rstgrid is available: %s (current: %s)\nRun: go install github.com/%s/cmd/rstgrid@latest",
		latest, current, c.repo)
}

func (c *Checker) resolveCachePath() (string, error) {
	if strings.TrimSpace(c.cachePath) != "" {
		return c.cachePath, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rstgrid", "update-check.json"), nil
}

// readCache treats a missing or unreadable cache as empty.
func readCache(path string) cacheEntry {
	var entry cacheEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Debug("ignoring corrupt update cache", "path", path, "error", err)
		return cacheEntry{}
	}
	return entry
}

func (c *Checker) writeCache(path string, entry cacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.writeFile(path, data, 0o644)
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBase, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}

// isRelease reports whether v is a release version. Development builds
// never prompt.
func isRelease(v string) bool {
	return v != "" && v != "dev" && v != "unknown"
}

// isNewer compares dotted versions numerically, so 1.10.0 is newer than 1.9.0.
func isNewer(current, latest string) bool {
	if !isRelease(current) || latest == "" {
		return false
	}
	cur := strings.Split(current, ".")
	lat := strings.Split(latest, ".")
	for i := 0; i < len(cur) && i < len(lat); i++ {
		c, _ := strconv.Atoi(cur[i])
		l, _ := strconv.Atoi(lat[i])
		if l != c {
			return l > c
		}
	}
	return len(lat) > len(cur)
}
