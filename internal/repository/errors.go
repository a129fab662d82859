// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the row-level policy rejected the
// caller, while ErrNotFound signals that the target row does not exist.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// ErrForbidden is returned when the policy layer rejects the caller.
// Handlers should translate this into an HTTP 403 response.
var ErrForbidden = policy.ErrForbidden

// ErrNotFound is returned when the requested row does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write cannot be performed because of a
// uniqueness violation or another conflicting row.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by sign-up when the email is already taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}
