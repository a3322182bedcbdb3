package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/goviettour/booking-backend/internal/model"
)

// LedgerRepo persists the append-only payment ledger.  Rows are never
// updated or deleted; corrections are expressed as new entries (a refund
// is a negative amount under the 'refund' provider).  A unique index over
// (booking_id, provider, ref) backs idempotency for gateway callbacks.
type LedgerRepo struct {
    db *sql.DB
}

// NewLedgerRepo returns a new LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// mysqlDuplicateKey is the server error number MySQL raises when an
// insert violates a unique index.
const mysqlDuplicateKey = 1062

// InsertTx appends one ledger entry within the scope of an existing
// transaction and populates the generated ID and timestamp on the
// provided record.  A violation of the (booking_id, provider, ref)
// uniqueness index is translated into ErrDuplicateEntry so callers can
// treat replayed callbacks as already applied.
func (r *LedgerRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.LedgerEntry) error {
    const q = `INSERT INTO payment_ledger (booking_id, provider, ref, amount, note)
               VALUES (?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, e.BookingID, e.Provider, e.Ref, e.Amount, e.Note)
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == mysqlDuplicateKey {
            return ErrDuplicateEntry
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return tx.QueryRowContext(ctx, `SELECT created_at FROM payment_ledger WHERE id = ?`, e.ID).
        Scan(&e.CreatedAt)
}

// SumTx returns the signed sum of all ledger entries for a booking inside
// the given transaction.  The reconciler asserts this against the cached
// paid_amount after every mutation; it is also the authoritative recovery
// path if the cache is ever suspected of drifting.
func (r *LedgerRepo) SumTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (int64, error) {
    var sum int64
    err := tx.QueryRowContext(ctx,
        `SELECT COALESCE(SUM(amount), 0) FROM payment_ledger WHERE booking_id = ?`,
        bookingID,
    ).Scan(&sum)
    return sum, err
}

// History returns all ledger entries for a booking, oldest first.  The
// order is stable so exports and receipts replay identically.
func (r *LedgerRepo) History(ctx context.Context, bookingID uint64) ([]model.LedgerEntry, error) {
    const q = `SELECT id, booking_id, provider, ref, amount, note, created_at
               FROM payment_ledger
               WHERE booking_id = ?
               ORDER BY created_at ASC, id ASC`
    rows, err := r.db.QueryContext(ctx, q, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.LedgerEntry, 0)
    for rows.Next() {
        var e model.LedgerEntry
        if err := rows.Scan(&e.ID, &e.BookingID, &e.Provider, &e.Ref, &e.Amount, &e.Note, &e.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// ProviderStat is one row of the per-provider aggregation used by the
// payment statistics endpoint.  Collected counts incoming entries only;
// Refunded is the absolute value of outgoing entries.
type ProviderStat struct {
    Provider  string
    Entries   int64
    Collected int64
    Refunded  int64
}

// StatsBetween aggregates ledger movement per provider for entries
// created inside [start, end).
func (r *LedgerRepo) StatsBetween(ctx context.Context, start, end time.Time) ([]ProviderStat, error) {
    const q = `SELECT provider,
                      COUNT(*),
                      COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
                      COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)
               FROM payment_ledger
               WHERE created_at >= ? AND created_at < ?
               GROUP BY provider
               ORDER BY provider`
    rows, err := r.db.QueryContext(ctx, q, start.UTC(), end.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ProviderStat, 0)
    for rows.Next() {
        var s ProviderStat
        if err := rows.Scan(&s.Provider, &s.Entries, &s.Collected, &s.Refunded); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
