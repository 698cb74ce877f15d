// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package database

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/metrics"
)

// Sentinel errors returned by store operations. Callers match with
// errors.Is to map them onto API error codes.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned when a nickname is already taken.
	ErrDuplicateName = errors.New("nickname already taken")

	// ErrInvalidCredentials is returned when a login fails, without
	// distinguishing unknown nickname from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// isUniqueViolation reports whether an error is a DuckDB unique
// constraint violation. Used as a backstop behind the nickname
// pre-check when two registrations race.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Constraint Error") ||
		strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "violates unique constraint")
}

// observe records one query's duration and outcome. Deferred by CRUD
// methods:
//
//	defer func(start time.Time) { observe("insert", "users", start, err) }(time.Now())
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// closeWithLog closes a resource and logs any error. Use this for
// cleanup where errors should be acknowledged but not fail the
// operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
