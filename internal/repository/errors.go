// Package repository implements data access for the ticketing service. One
// repo struct per table, each holding a *sql.DB; methods suffixed Tx run
// inside a caller-owned transaction. Sentinel errors defined here and next
// to their repos let handlers pick the right HTTP status with errors.Is.
package repository

import "errors"

// ErrForbidden is returned when the caller does not own the resource it is
// trying to read or mutate. Handlers translate it to 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting existing state (duplicate code, dependent records). Handlers
// translate it to 409.
var ErrConflict = errors.New("conflict")
