// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import "strings"

// IsUniqueConstraintError checks if the error is a SQLite UNIQUE constraint
// violation, e.g. inserting a second user with the same email.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: users.email")
}

// IsSQLiteBusyError checks if the error is a SQLITE_BUSY or "database is
// locked" error. These are concurrency errors that typically warrant a retry.
func IsSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY") ||
		strings.Contains(err.Error(), "database is locked")
}
