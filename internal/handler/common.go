package handler // handler defines http handlers

import (
    "crypto/rand"
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/goviettour/booking-backend/internal/model"
)

// bookingJSON is the wire representation of a booking shared by every
// endpoint that returns one.  Status uses the single-letter codes the
// frontend consumes ('p'/'c'/'x'); remaining is derived so clients never
// compute it themselves.
type bookingJSON struct {
    Code           string `json:"code"`
    TourID         uint64 `json:"tour_id"`
    Destination    string `json:"destination"`
    ContactName    string `json:"contact_name"`
    ContactEmail   string `json:"contact_email"`
    ContactPhone   string `json:"contact_phone"`
    ContactAddress string `json:"contact_address"`
    Adults         uint32 `json:"adults"`
    Children       uint32 `json:"children"`
    PriceAdult     int64  `json:"price_adult"`
    PriceChild     int64  `json:"price_child"`
    TotalAmount    int64  `json:"total_amount"`
    PaidAmount     int64  `json:"paid_amount"`
    Remaining      int64  `json:"remaining"`
    Status         string `json:"status"`
    PaymentMethod  string `json:"payment_method"`
    CreatedAt      string `json:"created_at"`
    UpdatedAt      string `json:"updated_at"`
}

func toBookingJSON(b *model.Booking) bookingJSON {
    return bookingJSON{
        Code:           b.Code,
        TourID:         b.TourID,
        Destination:    b.Destination,
        ContactName:    b.ContactName,
        ContactEmail:   b.ContactEmail,
        ContactPhone:   b.ContactPhone,
        ContactAddress: b.ContactAddress,
        Adults:         b.Adults,
        Children:       b.Children,
        PriceAdult:     b.PriceAdult,
        PriceChild:     b.PriceChild,
        TotalAmount:    b.TotalAmount,
        PaidAmount:     b.PaidAmount,
        Remaining:      b.Remaining(),
        Status:         b.Status.WireCode(),
        PaymentMethod:  b.PaymentMethod,
        CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
        UpdatedAt:      b.UpdatedAt.UTC().Format(time.RFC3339),
    }
}

// codeAlphabet deliberately omits characters that are easy to misread
// over the phone (0/O, 1/I).
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// newBookingCode returns a fresh GV-prefixed booking code such as
// GV240831X7KQ: date of creation plus four random characters.  Codes are
// quoted by customers in emails and bank transfer memos, so they stay
// short and unambiguous.  A collision is caught by the unique index on
// bookings.code and surfaces as a failed insert.
func newBookingCode(now time.Time) (string, error) {
    buf := make([]byte, 4)
    if _, err := rand.Read(buf); err != nil {
        return "", fmt.Errorf("generate booking code: %w", err)
    }
    suffix := make([]byte, 4)
    for i, b := range buf {
        suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
    }
    return "GV" + now.UTC().Format("060102") + string(suffix), nil
}

// getUserID extracts the staff account id from echo.Context.  The JWT
// middleware stores the raw claim, so several numeric representations
// are possible.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}
