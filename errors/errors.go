// Package errors provides error handling for tagdex.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrMediaTypeMismatch) {
//	    // handle rejected upsert
//	}
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
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Sentinel errors for the tagdex core.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrMediaTypeMismatch indicates an entity upsert tried to change the
	// media type of an existing entity. Entities never change kind.
	ErrMediaTypeMismatch = New("media type mismatch")

	// ErrMalformedArchive indicates an import payload could not be
	// decompressed or parsed. Import aborts before any transaction begins.
	ErrMalformedArchive = New("malformed archive")

	// ErrReferenceInvalid is the class of validator failure that marks an
	// entity's file reference as no longer resolvable. Repair collects
	// these; every other validator error aborts the run.
	ErrReferenceInvalid = New("file reference invalid")

	// ErrRepairCooldown indicates a repair was requested within the
	// cooldown interval of the previous successful run. Advisory rate
	// limiting, not mutual exclusion.
	ErrRepairCooldown = New("repair ran too recently")

	// ErrUnknownMediaType indicates a media type outside the closed
	// variant set, or a file reference whose type code is unrecognized.
	ErrUnknownMediaType = New("unknown media type")
)
