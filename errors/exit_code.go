package errors

import (
	"github.com/cockroachdb/errors"
)

// Exit codes used by the CLI.
const (
	ExitCodeGeneric        = 1
	ExitCodeConfiguration  = 2
	ExitCodeNonInteractive = 3
	ExitCodeTimeout        = 4
)

// exitCoder wraps an error and specifies an exit code.
type exitCoder struct {
	cause error
	code  int
}

func (e *exitCoder) Error() string {
	return e.cause.Error()
}

func (e *exitCoder) Cause() error {
	return e.cause
}

func (e *exitCoder) Unwrap() error {
	return e.cause
}

// ExitCode returns the exit code.
func (e *exitCoder) ExitCode() int {
	return e.code
}

// WithExitCode attaches an exit code to an error.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &exitCoder{
		cause: err,
		code:  code,
	}
}

// GetExitCode extracts the exit code from an error chain.
// Returns 0 for nil, the attached exit code when present, otherwise a code derived
// from well-known sentinels, falling back to 1.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec *exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	switch {
	case errors.Is(err, ErrLoginTimeout):
		return ExitCodeTimeout
	case errors.Is(err, ErrNonInteractive), errors.Is(err, ErrLogoutNonInteractive):
		return ExitCodeNonInteractive
	case errors.Is(err, ErrSSONotConfigured), errors.Is(err, ErrSSOMissingRegion),
		errors.Is(err, ErrLicenseKeyDashboardConflict), errors.Is(err, ErrInvalidConfigValue):
		return ExitCodeConfiguration
	}

	return ExitCodeGeneric
}
