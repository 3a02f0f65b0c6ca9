// Package repository defines the backend-agnostic storage contract for
// the portal and its two implementations: a volatile in-memory store
// for development and tests, and a durable MySQL store. Both must
// produce identical observable results for every operation, including
// ordering guarantees and default-value behavior.
package repository

import "errors"

// ErrNotFound is returned when a record with the requested id (or
// token hash, for sessions) does not exist. Handlers translate it
// into an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating or updating a user would
// duplicate an existing email. Emails are unique case-insensitively.
// Handlers translate it into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")
