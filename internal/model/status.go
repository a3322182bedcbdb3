package model

import "fmt"

// BookingStatus is the lifecycle state of a booking.  It is stored in the
// database as a full word ('pending', 'confirmed', 'cancelled') and exposed
// on the wire as the legacy single-letter codes ('p', 'c', 'x') that the
// admin console and customer site already consume.  Handlers translate at
// the boundary; everything inside the service works with this typed enum.
type BookingStatus string

const (
    StatusPending   BookingStatus = "pending"
    StatusConfirmed BookingStatus = "confirmed"
    StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the three known states.
func (s BookingStatus) Valid() bool {
    switch s {
    case StatusPending, StatusConfirmed, StatusCancelled:
        return true
    }
    return false
}

// WireCode returns the single-letter representation used by the frontend.
func (s BookingStatus) WireCode() string {
    switch s {
    case StatusPending:
        return "p"
    case StatusConfirmed:
        return "c"
    case StatusCancelled:
        return "x"
    }
    return ""
}

// StatusFromWire maps either a single-letter wire code or a full word to a
// BookingStatus.  It accepts both forms because older admin clients send
// 'c'/'x' while newer ones send 'confirmed'/'cancelled'.
func StatusFromWire(v string) (BookingStatus, error) {
    switch v {
    case "p", "pending":
        return StatusPending, nil
    case "c", "confirmed":
        return StatusConfirmed, nil
    case "x", "cancelled":
        return StatusCancelled, nil
    }
    return "", fmt.Errorf("unknown booking status %q", v)
}
