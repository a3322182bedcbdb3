package model

import "time"

// Booking is the aggregate record for one customer reservation against a
// tour.  The pricing fields are a snapshot taken at creation time from the
// tour's prices; they are never recomputed afterwards, so later price edits
// on the tour cannot retroactively change what a customer owes.
//
// PaidAmount is a denormalized cache of the signed sum of the booking's
// ledger entries.  It is only ever written together with a ledger insert in
// the same transaction; the ledger history stays the source of truth.
//
// Fields:
//  ID            – primary key identifier.
//  Code          – unique human-readable booking code (immutable).
//  TourID        – tour being booked.
//  Destination   – destination snapshot for display and receipts.
//  ContactName   – customer contact details captured at checkout.
//  Adults        – number of adult travellers.
//  Children      – number of child travellers.
//  PriceAdult    – per-adult price snapshot, minor currency units.
//  PriceChild    – per-child price snapshot, minor currency units.
//  TotalAmount   – total price snapshot, minor currency units.
//  PaidAmount    – cached sum of ledger entries (payments minus refunds).
//  Status        – lifecycle state, mutated only through the reconciler.
//  PaymentMethod – channel chosen at checkout (office/vnpay/sepay);
//                  informational only, any provider may still pay later.
type Booking struct {
    ID             uint64        // bookings.id
    Code           string        // bookings.code
    TourID         uint64        // bookings.tour_id
    Destination    string        // bookings.destination
    ContactName    string        // bookings.contact_name
    ContactEmail   string        // bookings.contact_email
    ContactPhone   string        // bookings.contact_phone
    ContactAddress string        // bookings.contact_address
    Adults         uint32        // bookings.adults
    Children       uint32        // bookings.children
    PriceAdult     int64         // bookings.price_adult
    PriceChild     int64         // bookings.price_child
    TotalAmount    int64         // bookings.total_amount
    PaidAmount     int64         // bookings.paid_amount
    Status         BookingStatus // bookings.status
    PaymentMethod  string        // bookings.payment_method
    CreatedAt      time.Time     // bookings.created_at
    UpdatedAt      time.Time     // bookings.updated_at
}

// Remaining returns the outstanding balance on the booking.
func (b *Booking) Remaining() int64 {
    return b.TotalAmount - b.PaidAmount
}

// FullyPaid reports whether the ledger has collected the whole price.
func (b *Booking) FullyPaid() bool {
    return b.PaidAmount == b.TotalAmount
}

// Payment method channels accepted at checkout.
const (
    MethodOffice = "office"
    MethodVNPay  = "vnpay"
    MethodSepay  = "sepay"
)

// ValidPaymentMethod reports whether m is a known checkout channel.
func ValidPaymentMethod(m string) bool {
    switch m {
    case MethodOffice, MethodVNPay, MethodSepay:
        return true
    }
    return false
}
