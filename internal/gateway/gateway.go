// Package gateway abstracts the payment channels a booking can be paid
// through.  Each adapter turns a booking and an amount into a
// provider-specific payment intent (a redirect URL, a QR image, or plain
// instructions for paying at the office) and normalizes the provider's
// asynchronous confirmation into the (booking, provider, ref, amount)
// shape the reconciler applies to the ledger.  The reconciler itself
// stays provider-agnostic.
package gateway

import (
    "context"
    "errors"
    "net/http"

    "github.com/goviettour/booking-backend/internal/model"
)

// ErrGatewayUnavailable is returned when an adapter cannot produce a
// payment intent, typically because its credentials are not configured
// or the deadline expired.  Checkout falls back to treating the booking
// as pending manual payment; no ledger entry is written.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrNoCallback is returned by adapters that have no asynchronous
// confirmation channel (the office adapter).
var ErrNoCallback = errors.New("gateway has no callback channel")

// Intent is what a customer needs to complete a payment.  Exactly one of
// RedirectURL, QRImageURL or Instructions is populated depending on the
// provider.
type Intent struct {
    Provider     string `json:"provider"`
    BookingCode  string `json:"booking_code"`
    Amount       int64  `json:"amount"`
    RedirectURL  string `json:"redirect_url,omitempty"`
    QRImageURL   string `json:"qr_image_url,omitempty"`
    Instructions string `json:"instructions,omitempty"`
}

// Confirmation is a provider callback normalized for the reconciler.
// Verified reports whether the payload passed the provider's integrity
// check (signature or API key); unverified confirmations must never
// reach the ledger.  Success distinguishes a verified "payment failed"
// notification from a verified successful payment.
type Confirmation struct {
    Provider    string
    BookingCode string
    Ref         string
    Amount      int64
    Verified    bool
    Success     bool
}

// Adapter is one payment channel.
type Adapter interface {
    // Name returns the provider tag recorded on ledger entries.
    Name() string
    // Initiate produces a payment intent for amount against the booking.
    // Implementations honor the context deadline and return
    // ErrGatewayUnavailable rather than a partial intent.
    Initiate(ctx context.Context, b *model.Booking, amount int64) (*Intent, error)
    // ParseCallback extracts and verifies a provider confirmation from
    // an incoming webhook request.  Adapters without callbacks return
    // ErrNoCallback.
    ParseCallback(r *http.Request) (*Confirmation, error)
}

// Registry maps provider names to adapters.
type Registry struct {
    adapters map[string]Adapter
}

// NewRegistry builds a Registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
    m := make(map[string]Adapter, len(adapters))
    for _, a := range adapters {
        m[a.Name()] = a
    }
    return &Registry{adapters: m}
}

// Get returns the adapter for provider, or nil when unknown.
func (r *Registry) Get(provider string) Adapter {
    return r.adapters[provider]
}
