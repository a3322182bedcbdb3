package model

import "time"

// Ledger entry provider tags.  ProviderRefund marks outgoing money; every
// other tag marks an incoming payment.
const (
    ProviderManual = "manual"
    ProviderVNPay  = "vnpay"
    ProviderSepay  = "sepay"
    ProviderRefund = "refund"
)

// LedgerEntry is one immutable movement of money against a booking.  Rows
// are append-only: once committed they are never updated or deleted, and
// the (booking_id, provider, ref) triple is unique so that a replayed
// gateway callback can never be applied twice.
//
// Amount is signed: positive for payments in, negative for refunds out.
// All amounts are integers in the smallest currency unit.
type LedgerEntry struct {
    ID        uint64    // payment_ledger.id
    BookingID uint64    // payment_ledger.booking_id
    Provider  string    // payment_ledger.provider
    Ref       string    // payment_ledger.ref
    Amount    int64     // payment_ledger.amount
    Note      string    // payment_ledger.note
    CreatedAt time.Time // payment_ledger.created_at
}
