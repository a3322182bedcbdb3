package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/goviettour/booking-backend/internal/model"
)

// BookingRepo provides persistence for booking records.  The paid_amount
// column is a cache over the payment ledger and is only ever written by
// the reconciler inside the same transaction as a ledger insert; no method
// here updates it outside an explicit *sql.Tx for that reason.  All
// timestamp columns are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span the booking row and its ledger entries.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, code, tour_id, destination, contact_name, contact_email,
        contact_phone, contact_address, adults, children, price_adult, price_child,
        total_amount, paid_amount, status, payment_method, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
    var b model.Booking
    var status string
    if err := row.Scan(
        &b.ID, &b.Code, &b.TourID, &b.Destination, &b.ContactName, &b.ContactEmail,
        &b.ContactPhone, &b.ContactAddress, &b.Adults, &b.Children, &b.PriceAdult,
        &b.PriceChild, &b.TotalAmount, &b.PaidAmount, &status, &b.PaymentMethod,
        &b.CreatedAt, &b.UpdatedAt,
    ); err != nil {
        return nil, err
    }
    b.Status = model.BookingStatus(status)
    return &b, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record.  The caller must commit or roll back the transaction.
// New bookings always start as pending with a zero paid amount and an
// empty ledger; these defaults come from the table schema.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings
        (code, tour_id, destination, contact_name, contact_email, contact_phone,
         contact_address, adults, children, price_adult, price_child,
         total_amount, payment_method, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`
    result, err := tx.ExecContext(ctx, q,
        b.Code, b.TourID, b.Destination, b.ContactName, b.ContactEmail,
        b.ContactPhone, b.ContactAddress, b.Adults, b.Children,
        b.PriceAdult, b.PriceChild, b.TotalAmount, b.PaymentMethod,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults
    row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, b.ID)
    created, err := scanBooking(row)
    if err != nil {
        return err
    }
    *b = *created
    return nil
}

// GetByCode returns the booking with the given code, or
// ErrBookingNotFound when no such row exists.
func (r *BookingRepo) GetByCode(ctx context.Context, code string) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE code = ?`, code)
    b, err := scanBooking(row)
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

// GetByCodeForUpdateTx loads a booking inside the given transaction with a
// row lock (SELECT ... FOR UPDATE).  Every ledger-mutating operation goes
// through this method so that two concurrent payments against the same
// booking serialize at the database and cannot both read the same stale
// paid_amount.  Returns ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetByCodeForUpdateTx(ctx context.Context, tx *sql.Tx, code string) (*model.Booking, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE code = ? FOR UPDATE`, code)
    b, err := scanBooking(row)
    if err == sql.ErrNoRows {
        return nil, ErrBookingNotFound
    }
    if err != nil {
        return nil, err
    }
    return b, nil
}

// UpdatePaidAmountTx writes the cached paid_amount for a booking inside a
// transaction.  Callers must have inserted the matching ledger entry in
// the same transaction; the two writes commit or roll back together.
func (r *BookingRepo) UpdatePaidAmountTx(ctx context.Context, tx *sql.Tx, bookingID uint64, paid int64) error {
    const q = `UPDATE bookings SET paid_amount = ?, updated_at = NOW() WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, paid, bookingID)
    return err
}

// UpdateStatusTx writes a new lifecycle status for a booking inside a
// transaction.  Validation of the transition happens in the reconciler;
// this method only persists the result.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status model.BookingStatus) error {
    const q = `UPDATE bookings SET status = ?, updated_at = NOW() WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, string(status), bookingID)
    return err
}

// ListFilter narrows the admin booking list.  Zero values mean "no
// filter".  Limit is capped by the caller.
type ListFilter struct {
    Status        model.BookingStatus
    PaymentMethod string
    Limit         int
    Offset        int
}

// List returns bookings for the admin console, newest first, honoring the
// optional status and payment-method filters.
func (r *BookingRepo) List(ctx context.Context, f ListFilter) ([]model.Booking, error) {
    var sb strings.Builder
    sb.WriteString(`SELECT ` + bookingColumns + ` FROM bookings`)
    var conds []string
    var args []interface{}
    if f.Status != "" {
        conds = append(conds, "status = ?")
        args = append(args, string(f.Status))
    }
    if f.PaymentMethod != "" {
        conds = append(conds, "payment_method = ?")
        args = append(args, f.PaymentMethod)
    }
    if len(conds) > 0 {
        sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
    }
    sb.WriteString(" ORDER BY created_at DESC")
    if f.Limit > 0 {
        sb.WriteString(" LIMIT ? OFFSET ?")
        args = append(args, f.Limit, f.Offset)
    }
    rows, err := r.db.QueryContext(ctx, sb.String(), args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// StatusCount is one row of the status breakdown used by the payment
// statistics endpoint.
type StatusCount struct {
    Status model.BookingStatus
    Count  int64
    Total  int64
    Paid   int64
}

// CountByStatusBetween aggregates booking counts and amounts per status
// for bookings created inside [start, end).  Used by the reporting view.
func (r *BookingRepo) CountByStatusBetween(ctx context.Context, start, end time.Time) ([]StatusCount, error) {
    const q = `SELECT status, COUNT(*), COALESCE(SUM(total_amount),0), COALESCE(SUM(paid_amount),0)
               FROM bookings
               WHERE created_at >= ? AND created_at < ?
               GROUP BY status`
    rows, err := r.db.QueryContext(ctx, q, start.UTC(), end.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]StatusCount, 0, 3)
    for rows.Next() {
        var sc StatusCount
        var status string
        if err := rows.Scan(&status, &sc.Count, &sc.Total, &sc.Paid); err != nil {
            return nil, err
        }
        sc.Status = model.BookingStatus(status)
        out = append(out, sc)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
