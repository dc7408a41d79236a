package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/salmonumbrella/rstgrid/internal/config"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// isolateEnv points HOME at an empty directory and clears the environment
// overrides, so the user's own config never leaks into a test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvLineBreaks, "")
	t.Setenv("NO_COLOR", "1")
	return home
}

// runCLI executes the CLI with stdin set to the given text.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var out, errBuf bytes.Buffer
	app := &App{
		Stdin:     strings.NewReader(stdin),
		Stdout:    &out,
		Stderr:    &errBuf,
		Version:   "1.2.3",
		Commit:    "abc123",
		BuildTime: "today",
	}
	err := app.Execute(context.Background(), args)
	return cliResult{stdout: out.String(), stderr: errBuf.String(), err: err}
}
