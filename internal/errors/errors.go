// Package errors provides error handling for tsflatten.
//
// It re-exports github.com/cockroachdb/errors so every package wraps errors
// the same way, attaches user-facing hints, and checks sentinels with Is:
//
//	if err := loadProject(); err != nil {
//	    return errors.Wrap(err, "loading project")
//	}
//	return errors.WithHint(err, "pass --root to choose another declaration")
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
	Mark  = crdb.Mark
)

// User-facing hints and details
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Inspection
var (
	Is = crdb.Is
	As = crdb.As
)

// Sentinel errors shared across packages. Wrap them to add context; callers
// match with errors.Is.
var (
	// ErrUsage indicates the command line was incomplete or malformed.
	ErrUsage = New("usage error")

	// ErrInvalidConfig indicates a tsflatten config file failed validation.
	ErrInvalidConfig = New("invalid config")

	// ErrRootNotFound indicates the router file declares none of the root names.
	ErrRootNotFound = New("root declaration not found")

	// ErrDiagnostics indicates tsconfig or program diagnostics blocked the run.
	ErrDiagnostics = New("typescript diagnostics")
)

// UserMessage renders err followed by any hints attached along the chain.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if hint := FlattenHints(err); hint != "" {
		msg += "\nhint: " + hint
	}
	return msg
}
