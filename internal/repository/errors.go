// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reconciler and handlers to distinguish between different failure
// scenarios with errors.Is instead of string matching. For example,
// ErrDuplicateEntry signals that a ledger row with the same
// (booking, provider, ref) triple already exists, which webhook callers
// treat as an already-applied success rather than a failure.
package repository

import "errors"

// ErrBookingNotFound is returned when no booking exists for the given
// code. Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrTourNotFound is returned when a booking references a tour that
// does not exist, typically during checkout validation.
var ErrTourNotFound = errors.New("tour not found")

// ErrDuplicateEntry is returned when inserting a ledger entry whose
// (booking_id, provider, ref) triple already exists. This is the
// idempotency guard against replayed gateway callbacks; callers that
// receive it must not re-apply the amount.
var ErrDuplicateEntry = errors.New("duplicate ledger entry")

// ErrAdminNotFound is returned when no active staff account matches
// the given email during login.
var ErrAdminNotFound = errors.New("admin account not found")
