// Package store is the sqlx-backed persistence layer for accounts and links.
// No handler queries the database directly; all access goes through the
// AccountStore and LinkStore types.
package store

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert or update violates a unique index.
	ErrDuplicate = errors.New("duplicate value for unique field")

	// ErrProviderHashMismatch is returned when an account's password hash does
	// not agree with its auth provider (local requires one, external forbids it).
	ErrProviderHashMismatch = errors.New("password hash must be set if and only if provider is local")
)

// isUniqueConstraintError reports whether err is a unique index violation on
// any of the supported drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 // ER_DUP_ENTRY
	}

	// modernc sqlite only exposes the extended code through its message.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint")
}
