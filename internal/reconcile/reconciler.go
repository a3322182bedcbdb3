package reconcile

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/goviettour/booking-backend/internal/model"
    "github.com/goviettour/booking-backend/internal/queue"
    "github.com/goviettour/booking-backend/internal/repository"
)

// Policy carries the configurable behaviors of the reconciler.  The
// frontend historically mixed two confirmation flows (auto-confirm after a
// gateway redirect versus an explicit admin decision), so auto-confirm is
// a switch rather than a hard rule.
type Policy struct {
    // ConfirmOnFullPayment moves a pending booking to confirmed
    // automatically when a payment brings paid_amount up to the total.
    ConfirmOnFullPayment bool
}

// EventSink receives domain events after a successful commit.
// Implementations must not block; the RabbitMQ publisher logs and drops
// delivery failures.  A nil sink disables publishing.
type EventSink interface {
    PaymentRecorded(ctx context.Context, e queue.PaymentRecordedEvent)
    BookingConfirmed(ctx context.Context, e queue.BookingConfirmedEvent)
}

// Reconciler is the single writer of the payment ledger, the cached paid
// amount and the booking status.  Every mutation runs as one transaction
// per booking: read the row under a lock, validate, append the ledger
// entry, update the cache, re-check the invariant, commit.  Concurrent
// calls for the same booking serialize on an in-process mutex and on the
// database row lock; calls for different bookings run in parallel.
type Reconciler struct {
    db       *sql.DB
    bookings *repository.BookingRepo
    ledger   *repository.LedgerRepo
    policy   Policy
    locks    *bookingLocks
    events   EventSink
}

// NewReconciler constructs a Reconciler.  events may be nil.
func NewReconciler(db *sql.DB, bookings *repository.BookingRepo, ledger *repository.LedgerRepo, policy Policy, events EventSink) *Reconciler {
    if db == nil || bookings == nil || ledger == nil {
        panic("nil dependency passed to NewReconciler")
    }
    return &Reconciler{
        db:       db,
        bookings: bookings,
        ledger:   ledger,
        policy:   policy,
        locks:    newBookingLocks(),
        events:   events,
    }
}

// MarkPaid records a manual payment against a booking, typically entered
// by an admin for money taken at the office.  When amount is zero or
// negative the outstanding remainder (total - paid) is used.  When ref is
// empty a unique reference is synthesized so the entry still satisfies
// the ledger uniqueness key.  Fails with ErrOverpayment when the result
// would exceed the booking total.
func (r *Reconciler) MarkPaid(ctx context.Context, code string, amount int64, provider, ref, note string) (*model.Booking, error) {
    if provider == "" {
        provider = model.ProviderManual
    }
    if provider == model.ProviderRefund {
        return nil, fmt.Errorf("provider %q is reserved for refunds", provider)
    }
    if ref == "" {
        ref = fmt.Sprintf("MAN-%d", time.Now().UTC().UnixNano())
    }
    return r.applyPayment(ctx, code, provider, ref, amount, note, true)
}

// ConfirmGatewayPayment applies a verified asynchronous confirmation from
// an online payment provider.  It is safe under arbitrary webhook
// redelivery: a duplicate (provider, ref) pair returns the current
// booking together with repository.ErrDuplicateEntry, which callers
// report back to the gateway as success.  A late confirmation for an
// already-cancelled booking is still written to the ledger for audit
// accuracy but never moves the status out of cancelled.
func (r *Reconciler) ConfirmGatewayPayment(ctx context.Context, code, provider, ref string, amount int64) (*model.Booking, error) {
    if amount <= 0 {
        return nil, ErrNonPositiveAmount
    }
    if ref == "" {
        return nil, fmt.Errorf("gateway confirmation without a transaction ref")
    }
    return r.applyPayment(ctx, code, provider, ref, amount, "", false)
}

// applyPayment is the shared write path for MarkPaid and
// ConfirmGatewayPayment.  defaultToRemainder controls whether a
// non-positive amount means "the outstanding remainder" (manual flow) or
// is rejected outright (gateway flow validates earlier).
func (r *Reconciler) applyPayment(ctx context.Context, code, provider, ref string, amount int64, note string, defaultToRemainder bool) (*model.Booking, error) {
    unlock := r.locks.acquire(code)
    defer unlock()

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin transaction: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := r.bookings.GetByCodeForUpdateTx(ctx, tx, code)
    if err != nil {
        return nil, err
    }
    if defaultToRemainder && amount <= 0 {
        amount = b.Remaining()
    }
    if amount <= 0 {
        return nil, ErrNonPositiveAmount
    }
    if b.PaidAmount+amount > b.TotalAmount {
        return nil, ErrOverpayment
    }

    entry := &model.LedgerEntry{
        BookingID: b.ID,
        Provider:  provider,
        Ref:       ref,
        Amount:    amount,
        Note:      note,
    }
    if err := r.ledger.InsertTx(ctx, tx, entry); err != nil {
        if errors.Is(err, repository.ErrDuplicateEntry) {
            // Already applied; hand back the current state so webhook
            // handlers can acknowledge the redelivery.
            _ = tx.Rollback()
            committed = true // suppress the deferred rollback
            current, getErr := r.bookings.GetByCode(ctx, code)
            if getErr != nil {
                return nil, getErr
            }
            return current, repository.ErrDuplicateEntry
        }
        return nil, err
    }

    newPaid := b.PaidAmount + amount
    if err := r.bookings.UpdatePaidAmountTx(ctx, tx, b.ID, newPaid); err != nil {
        return nil, err
    }
    if err := r.assertLedgerMatches(ctx, tx, b.ID, newPaid); err != nil {
        return nil, err
    }
    b.PaidAmount = newPaid

    confirmed := false
    if r.policy.ConfirmOnFullPayment && b.Status == model.StatusPending && b.FullyPaid() {
        if err := r.bookings.UpdateStatusTx(ctx, tx, b.ID, model.StatusConfirmed); err != nil {
            return nil, err
        }
        b.Status = model.StatusConfirmed
        confirmed = true
    }

    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit payment: %w", err)
    }
    committed = true

    r.emitPaymentRecorded(ctx, b, provider, ref, amount)
    if confirmed {
        r.emitBookingConfirmed(ctx, b)
    }
    return b, nil
}

// Refund records an outgoing movement against a booking.  When amount is
// zero or negative the full collected amount is refunded.  Fails with
// ErrRefundExceedsPaid when the request is larger than what the ledger
// has collected.  Refunds never change the booking status; cancelling
// and refunding are deliberately separate admin actions.
func (r *Reconciler) Refund(ctx context.Context, code string, amount int64, reason string) (*model.Booking, error) {
    unlock := r.locks.acquire(code)
    defer unlock()

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin transaction: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := r.bookings.GetByCodeForUpdateTx(ctx, tx, code)
    if err != nil {
        return nil, err
    }
    if amount <= 0 {
        amount = b.PaidAmount
    }
    if amount <= 0 {
        return nil, ErrNonPositiveAmount
    }
    if amount > b.PaidAmount {
        return nil, ErrRefundExceedsPaid
    }

    ref := fmt.Sprintf("RF-%d", time.Now().UTC().UnixNano())
    entry := &model.LedgerEntry{
        BookingID: b.ID,
        Provider:  model.ProviderRefund,
        Ref:       ref,
        Amount:    -amount,
        Note:      reason,
    }
    if err := r.ledger.InsertTx(ctx, tx, entry); err != nil {
        return nil, err
    }

    newPaid := b.PaidAmount - amount
    if err := r.bookings.UpdatePaidAmountTx(ctx, tx, b.ID, newPaid); err != nil {
        return nil, err
    }
    if err := r.assertLedgerMatches(ctx, tx, b.ID, newPaid); err != nil {
        return nil, err
    }
    b.PaidAmount = newPaid

    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit refund: %w", err)
    }
    committed = true

    r.emitPaymentRecorded(ctx, b, model.ProviderRefund, ref, -amount)
    return b, nil
}

// Transition applies an explicit status change requested by an admin or a
// customer self-cancel.  The target state is validated against the
// lifecycle state machine under the same row lock used for payments, so
// a status change can never interleave with a ledger write.
func (r *Reconciler) Transition(ctx context.Context, code string, to model.BookingStatus) (*model.Booking, error) {
    unlock := r.locks.acquire(code)
    defer unlock()

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("begin transaction: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := r.bookings.GetByCodeForUpdateTx(ctx, tx, code)
    if err != nil {
        return nil, err
    }
    if err := ValidateTransition(b.Status, to); err != nil {
        return nil, err
    }
    if err := r.bookings.UpdateStatusTx(ctx, tx, b.ID, to); err != nil {
        return nil, err
    }
    b.Status = to

    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("commit status change: %w", err)
    }
    committed = true

    if to == model.StatusConfirmed {
        r.emitBookingConfirmed(ctx, b)
    }
    return b, nil
}

// BulkResult reports the outcome of one booking inside a bulk operation.
type BulkResult struct {
    Code       string `json:"booking_code"`
    OK         bool   `json:"ok"`
    Error      string `json:"error,omitempty"`
    PaidAmount int64  `json:"paid_amount,omitempty"`
    Status     string `json:"status,omitempty"`
}

// BulkMarkPaid applies MarkPaid to each booking independently.  One
// booking's failure never aborts or rolls back the others; the caller
// gets a result per code in the order requested.
func (r *Reconciler) BulkMarkPaid(ctx context.Context, codes []string, amount int64, provider, note string) []BulkResult {
    out := make([]BulkResult, 0, len(codes))
    for _, code := range codes {
        res := BulkResult{Code: code}
        b, err := r.MarkPaid(ctx, code, amount, provider, "", note)
        if err != nil {
            res.Error = err.Error()
        } else {
            res.OK = true
            res.PaidAmount = b.PaidAmount
            res.Status = b.Status.WireCode()
        }
        out = append(out, res)
    }
    return out
}

// assertLedgerMatches re-reads the ledger sum inside the transaction and
// compares it with the paid amount just written.  A mismatch means a bug
// somewhere in the write path; the transaction is aborted rather than
// committing a drifted cache.
func (r *Reconciler) assertLedgerMatches(ctx context.Context, tx *sql.Tx, bookingID uint64, expected int64) error {
    sum, err := r.ledger.SumTx(ctx, tx, bookingID)
    if err != nil {
        return err
    }
    if sum != expected {
        return fmt.Errorf("%w: ledger=%d cache=%d", ErrLedgerDrift, sum, expected)
    }
    return nil
}

func (r *Reconciler) emitPaymentRecorded(ctx context.Context, b *model.Booking, provider, ref string, amount int64) {
    if r.events == nil {
        return
    }
    r.events.PaymentRecorded(ctx, queue.PaymentRecordedEvent{
        BookingCode: b.Code,
        Provider:    provider,
        Ref:         ref,
        Amount:      amount,
        PaidAmount:  b.PaidAmount,
        TotalAmount: b.TotalAmount,
        Status:      string(b.Status),
        RecordedAt:  time.Now().UTC().Format(time.RFC3339),
    })
}

func (r *Reconciler) emitBookingConfirmed(ctx context.Context, b *model.Booking) {
    if r.events == nil {
        return
    }
    r.events.BookingConfirmed(ctx, queue.BookingConfirmedEvent{
        BookingCode:  b.Code,
        TourID:       b.TourID,
        Destination:  b.Destination,
        ContactEmail: b.ContactEmail,
        TotalAmount:  b.TotalAmount,
        PaidAmount:   b.PaidAmount,
        ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
    })
}
