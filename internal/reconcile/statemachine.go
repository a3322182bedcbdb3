package reconcile

import "github.com/goviettour/booking-backend/internal/model"

// ValidateTransition checks a booking status change against the lifecycle
// state machine:
//
//	pending   -> confirmed   admin decision, or auto-confirm on full payment
//	pending   -> cancelled   admin or customer self-cancel
//	confirmed -> cancelled   operational cancellation after confirmation
//
// cancelled is terminal: every transition out of it fails with
// ErrTerminalState.  Anything else not listed (including confirmed back
// to pending and self-transitions) fails with ErrInvalidTransition.
// Cancelling a booking never touches the ledger; refunds are a separate
// explicit action.
func ValidateTransition(from, to model.BookingStatus) error {
    if from == model.StatusCancelled {
        return ErrTerminalState
    }
    switch {
    case from == model.StatusPending && to == model.StatusConfirmed:
        return nil
    case from == model.StatusPending && to == model.StatusCancelled:
        return nil
    case from == model.StatusConfirmed && to == model.StatusCancelled:
        return nil
    }
    return ErrInvalidTransition
}
