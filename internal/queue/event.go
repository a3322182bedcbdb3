// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentRecordedEvent is published after every committed ledger write:
// manual payments, gateway confirmations and refunds alike.  It contains
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type PaymentRecordedEvent struct {
    BookingCode string `json:"booking_code"`
    Provider    string `json:"provider"`
    Ref         string `json:"ref"`
    Amount      int64  `json:"amount"`
    PaidAmount  int64  `json:"paid_amount"`
    TotalAmount int64  `json:"total_amount"`
    Status      string `json:"status"`
    RecordedAt  string `json:"recorded_at"`
}

// BookingConfirmedEvent is published when a booking reaches the confirmed
// state, whether through an explicit admin decision or the auto-confirm
// policy on full payment.
type BookingConfirmedEvent struct {
    BookingCode  string `json:"booking_code"`
    TourID       uint64 `json:"tour_id"`
    Destination  string `json:"destination"`
    ContactEmail string `json:"contact_email"`
    TotalAmount  int64  `json:"total_amount"`
    PaidAmount   int64  `json:"paid_amount"`
    ConfirmedAt  string `json:"confirmed_at"`
}
