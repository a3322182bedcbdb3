// Package reconcile contains the payment reconciliation engine: the only
// code path allowed to mutate the payment ledger, the cached paid amount
// and the booking status.  Sentinel errors below form the validation
// taxonomy surfaced to API callers; none of them are ever clamped or
// silently absorbed except ErrDuplicateEntry, which webhook handlers
// report back to the gateway as success.
package reconcile

import "errors"

// ErrOverpayment is returned when applying a payment would push the
// cached paid amount above the booking's total price.
var ErrOverpayment = errors.New("payment exceeds booking total")

// ErrRefundExceedsPaid is returned when a refund request is larger than
// the amount currently collected on the booking.
var ErrRefundExceedsPaid = errors.New("refund exceeds paid amount")

// ErrInvalidTransition is returned for a status change that the state
// machine does not allow, such as confirmed back to pending.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrTerminalState is returned for any attempt to move a booking out of
// the cancelled state.
var ErrTerminalState = errors.New("booking is cancelled")

// ErrNonPositiveAmount is returned when a payment or refund amount is
// zero or negative; signs are fixed by the operation, not the caller.
var ErrNonPositiveAmount = errors.New("amount must be positive")

// ErrLedgerDrift is returned when the post-write invariant check finds
// the ledger sum disagreeing with the cached paid amount.  The enclosing
// transaction is rolled back, so the caller sees the prior consistent
// state.
var ErrLedgerDrift = errors.New("ledger sum does not match cached paid amount")
