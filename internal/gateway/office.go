package gateway

import (
    "context"
    "fmt"
    "net/http"

    "github.com/goviettour/booking-backend/internal/model"
)

// Office is the null gateway for customers paying in person.  Initiate
// returns instructions instead of a redirect; the booking stays pending
// until an admin records the payment manually.  There is no callback
// channel.
type Office struct {
    // Address shown in the payment instructions.
    Address string
}

// NewOffice returns an Office adapter with the given branch address.
func NewOffice(address string) *Office {
    if address == "" {
        address = "our nearest branch office"
    }
    return &Office{Address: address}
}

// Name implements Adapter.
func (o *Office) Name() string { return model.MethodOffice }

// Initiate implements Adapter.  It never fails: paying at the office is
// always available.
func (o *Office) Initiate(_ context.Context, b *model.Booking, amount int64) (*Intent, error) {
    return &Intent{
        Provider:    o.Name(),
        BookingCode: b.Code,
        Amount:      amount,
        Instructions: fmt.Sprintf(
            "Please visit %s within 48 hours and quote booking code %s to pay %d VND.",
            o.Address, b.Code, amount,
        ),
    }, nil
}

// ParseCallback implements Adapter.  Office payments are recorded by an
// admin through mark-paid, never through a callback.
func (o *Office) ParseCallback(_ *http.Request) (*Confirmation, error) {
    return nil, ErrNoCallback
}
