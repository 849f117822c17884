// Package repository defines the persistence contract consumed by the
// auction engine and its MySQL and in-memory implementations.  The
// sentinel values below let higher layers distinguish failure
// scenarios without depending on a storage technology.
package repository

import "errors"

// ErrNotFound is returned when a lookup by identifier or predicate finds
// no row.  Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update loses an optimistic version
// check because another writer committed first.  The whole transaction
// is rolled back and may be retried.
var ErrConflict = errors.New("conflict")
