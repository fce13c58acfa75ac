// Package errors provides error handling for mechrelay.
//
// This package re-exports github.com/cockroachdb/errors so callers get stack
// traces, wrapping and user-facing hints from a single import, and defines the
// sentinel errors shared across the relay.
//
// Usage:
//
//	if err := cmd.Run(); err != nil {
//	    return errors.Wrap(err, "mechx interact failed")
//	}
//
//	return errors.WithHint(err, "install the mech client: pip install mech-client")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Mark lets a concrete error match a sentinel with Is() without changing its message.
var Mark = crdb.Mark

// Sentinel errors for the relay.
// Match them with errors.Is(); wrap or Mark them to add context.
var (
	// ErrInvalidConfig indicates a configuration value failed validation
	ErrInvalidConfig = New("invalid configuration")

	// ErrKeyFile indicates the private key file is missing or unreadable
	ErrKeyFile = New("private key file unusable")

	// ErrClientNotFound indicates the mech client command is not installed
	ErrClientNotFound = New("mech client not found")

	// ErrClientFailed indicates the mech client exited unsuccessfully
	ErrClientFailed = New("mech client failed")

	// ErrNoResult indicates the mech client finished without producing a result
	ErrNoResult = New("no result from mech")

	// ErrDeliveryFetch indicates the delivered result could not be retrieved
	ErrDeliveryFetch = New("delivery fetch failed")

	// ErrRateLimited indicates the caller exceeded the configured request rate
	ErrRateLimited = New("rate limit exceeded")
)

// IsClientError reports whether err came from running the mech client itself
// (missing binary or a failed invocation).
func IsClientError(err error) bool {
	return err != nil && IsAny(err, ErrClientNotFound, ErrClientFailed)
}

// IsConfigError reports whether err is or wraps ErrInvalidConfig
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}

// NewConfigError creates an invalid-configuration error with a formatted message
func NewConfigError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidConfig)
}
