// Package repository implements data access against MySQL using plain SQL.
// Sentinel errors defined here let handlers map failures to HTTP statuses
// without inspecting driver-specific error strings at the call site.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a row does not exist.  Handlers translate it
// into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update violates the unique
// index on users.email.  Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when an insert or update violates a unique slug
// index on categories or news.  Handlers translate it into HTTP 409.
var ErrSlugExists = errors.New("slug already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
