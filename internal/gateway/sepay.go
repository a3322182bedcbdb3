package gateway

import (
    "context"
    "crypto/subtle"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "regexp"
    "strings"

    "github.com/goviettour/booking-backend/internal/model"
)

// SepayConfig carries the bank account behind the Sepay QR flow and the
// API key Sepay includes on webhook deliveries.
type SepayConfig struct {
    APIKey      string // shared key expected in the Authorization header
    AccountNo   string // receiving bank account number
    BankCode    string // receiving bank short code, e.g. VCB
    QRBaseURL   string // QR image endpoint, default https://qr.sepay.vn/img
}

// Configured reports whether the QR flow can be offered.
func (c SepayConfig) Configured() bool {
    return c.APIKey != "" && c.AccountNo != "" && c.BankCode != ""
}

// Sepay offers bank-transfer payments: Initiate returns a QR image URL
// encoding the transfer with the booking code as the memo, and Sepay
// notifies us of matching incoming transfers through a JSON webhook
// authenticated with an API key.
type Sepay struct {
    cfg SepayConfig
}

// NewSepay returns a Sepay adapter for the given account.
func NewSepay(cfg SepayConfig) *Sepay {
    if cfg.QRBaseURL == "" {
        cfg.QRBaseURL = "https://qr.sepay.vn/img"
    }
    return &Sepay{cfg: cfg}
}

// Name implements Adapter.
func (s *Sepay) Name() string { return model.MethodSepay }

// Initiate implements Adapter.  The transfer memo carries the booking
// code; Sepay echoes it back in the webhook so the payment can be
// matched to the booking.
func (s *Sepay) Initiate(ctx context.Context, b *model.Booking, amount int64) (*Intent, error) {
    if !s.cfg.Configured() {
        return nil, ErrGatewayUnavailable
    }
    if err := ctx.Err(); err != nil {
        return nil, ErrGatewayUnavailable
    }
    q := url.Values{}
    q.Set("acc", s.cfg.AccountNo)
    q.Set("bank", s.cfg.BankCode)
    q.Set("amount", fmt.Sprintf("%d", amount))
    q.Set("des", b.Code)
    return &Intent{
        Provider:    s.Name(),
        BookingCode: b.Code,
        Amount:      amount,
        QRImageURL:  s.cfg.QRBaseURL + "?" + q.Encode(),
    }, nil
}

// sepayWebhook mirrors the JSON body Sepay posts for an incoming
// transfer.  Only the fields the reconciler needs are mapped.
type sepayWebhook struct {
    ID             int64  `json:"id"`
    TransferType   string `json:"transferType"`
    TransferAmount int64  `json:"transferAmount"`
    Content        string `json:"content"`
    ReferenceCode  string `json:"referenceCode"`
}

// bookingCodePattern matches our GV-prefixed booking codes inside the
// free-text transfer memo, which banks often pad with extra words.
var bookingCodePattern = regexp.MustCompile(`GV[0-9A-Z]{6,}`)

// ParseCallback implements Adapter.  The webhook is verified by
// comparing the Authorization header ("Apikey <key>") against the
// configured key in constant time.  Outgoing transfers and payloads
// without a recognizable booking code are verified but unsuccessful.
func (s *Sepay) ParseCallback(r *http.Request) (*Confirmation, error) {
    c := &Confirmation{Provider: s.Name()}

    auth := strings.TrimSpace(r.Header.Get("Authorization"))
    key := strings.TrimSpace(strings.TrimPrefix(auth, "Apikey"))
    if s.cfg.APIKey == "" ||
        subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) != 1 {
        return c, nil
    }
    c.Verified = true

    body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
    if err != nil {
        return nil, fmt.Errorf("sepay callback: read body: %w", err)
    }
    var w sepayWebhook
    if err := json.Unmarshal(body, &w); err != nil {
        return nil, fmt.Errorf("sepay callback: decode body: %w", err)
    }

    if w.TransferType != "in" || w.TransferAmount <= 0 {
        return c, nil
    }
    code := bookingCodePattern.FindString(strings.ToUpper(w.Content))
    if code == "" {
        return c, nil
    }
    c.Success = true
    c.BookingCode = code
    c.Amount = w.TransferAmount
    c.Ref = w.ReferenceCode
    if c.Ref == "" {
        c.Ref = fmt.Sprintf("SEPAY-%d", w.ID)
    }
    return c, nil
}
