package cmd

import (
	"context"
	"errors"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/gridtable"
)

const (
	ExitOK       = 0
	ExitSystem   = 1
	ExitUser     = 2
	ExitLayout   = 3
	ExitNotFound = 4
	ExitCanceled = 130
)

// ExitCode maps a command error to a stable process exit code for automation.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	if gridtable.IsLayoutError(err) {
		return ExitLayout
	}
	if clierrors.IsNotFound(err) {
		return ExitNotFound
	}
	if clierrors.IsValidationError(err) || clierrors.IsUserError(err) || clierrors.IsInputError(err) {
		return ExitUser
	}
	return ExitSystem
}
