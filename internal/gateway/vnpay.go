package gateway

import (
    "context"
    "crypto/hmac"
    "crypto/sha512"
    "encoding/hex"
    "fmt"
    "net/http"
    "net/url"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/goviettour/booking-backend/internal/model"
)

// VNPayConfig carries the merchant credentials issued by VNPay.
type VNPayConfig struct {
    TmnCode    string // merchant terminal code
    HashSecret string // HMAC-SHA512 secret
    PayURL     string // hosted payment page, e.g. https://sandbox.vnpayment.vn/paymentv2/vpcpay.html
    ReturnURL  string // where the customer lands after paying
}

// Configured reports whether the credentials needed to build and verify
// payment URLs are present.
func (c VNPayConfig) Configured() bool {
    return c.TmnCode != "" && c.HashSecret != "" && c.PayURL != ""
}

// VNPay builds signed redirect URLs to the VNPay hosted payment page and
// verifies the vnp_SecureHash on return/IPN callbacks.  Building a URL is
// a local operation; no network call is made at initiation time.
type VNPay struct {
    cfg VNPayConfig
    now func() time.Time
}

// NewVNPay returns a VNPay adapter for the given credentials.
func NewVNPay(cfg VNPayConfig) *VNPay {
    return &VNPay{cfg: cfg, now: time.Now}
}

// Name implements Adapter.
func (v *VNPay) Name() string { return model.MethodVNPay }

// Initiate implements Adapter.  The transaction reference sent to VNPay
// is the booking code plus a timestamp suffix so that retried checkouts
// produce distinct references; the booking code is recovered from it
// when the callback arrives.
func (v *VNPay) Initiate(ctx context.Context, b *model.Booking, amount int64) (*Intent, error) {
    if !v.cfg.Configured() {
        return nil, ErrGatewayUnavailable
    }
    if err := ctx.Err(); err != nil {
        return nil, ErrGatewayUnavailable
    }
    now := v.now().UTC()
    params := url.Values{}
    params.Set("vnp_Version", "2.1.0")
    params.Set("vnp_Command", "pay")
    params.Set("vnp_TmnCode", v.cfg.TmnCode)
    // VNPay expects the amount multiplied by 100.
    params.Set("vnp_Amount", strconv.FormatInt(amount*100, 10))
    params.Set("vnp_CurrCode", "VND")
    params.Set("vnp_TxnRef", fmt.Sprintf("%s-%d", b.Code, now.Unix()))
    params.Set("vnp_OrderInfo", "Thanh toan tour "+b.Code)
    params.Set("vnp_OrderType", "other")
    params.Set("vnp_Locale", "vn")
    params.Set("vnp_ReturnUrl", v.cfg.ReturnURL)
    params.Set("vnp_CreateDate", now.Format("20060102150405"))

    signed := signVNPay(params, v.cfg.HashSecret)
    params.Set("vnp_SecureHash", signed)

    return &Intent{
        Provider:    v.Name(),
        BookingCode: b.Code,
        Amount:      amount,
        RedirectURL: v.cfg.PayURL + "?" + params.Encode(),
    }, nil
}

// ParseCallback implements Adapter.  It verifies the vnp_SecureHash over
// the sorted query parameters; tampered or unverifiable payloads come
// back with Verified=false and must never be applied to the ledger.
// Success mirrors vnp_ResponseCode "00".  The ledger reference is the
// provider-assigned vnp_TransactionNo, which stays stable across IPN
// redeliveries.
func (v *VNPay) ParseCallback(r *http.Request) (*Confirmation, error) {
    q := r.URL.Query()
    received := q.Get("vnp_SecureHash")
    q.Del("vnp_SecureHash")
    q.Del("vnp_SecureHashType")

    c := &Confirmation{Provider: v.Name()}
    if v.cfg.HashSecret == "" || received == "" {
        return c, nil
    }
    expected := signVNPay(q, v.cfg.HashSecret)
    if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
        return c, nil
    }
    c.Verified = true
    c.Success = q.Get("vnp_ResponseCode") == "00"
    c.Ref = q.Get("vnp_TransactionNo")
    c.BookingCode = bookingCodeFromTxnRef(q.Get("vnp_TxnRef"))

    amount, err := strconv.ParseInt(q.Get("vnp_Amount"), 10, 64)
    if err != nil {
        return nil, fmt.Errorf("vnpay callback: bad amount %q", q.Get("vnp_Amount"))
    }
    c.Amount = amount / 100
    return c, nil
}

// signVNPay computes the hex HMAC-SHA512 over the parameters sorted by
// key and encoded the way VNPay specifies (query escaping, '+' for
// spaces).
func signVNPay(params url.Values, secret string) string {
    keys := make([]string, 0, len(params))
    for k := range params {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    var sb strings.Builder
    for i, k := range keys {
        if i > 0 {
            sb.WriteByte('&')
        }
        sb.WriteString(url.QueryEscape(k))
        sb.WriteByte('=')
        sb.WriteString(url.QueryEscape(params.Get(k)))
    }
    mac := hmac.New(sha512.New, []byte(secret))
    mac.Write([]byte(sb.String()))
    return hex.EncodeToString(mac.Sum(nil))
}

// bookingCodeFromTxnRef strips the timestamp suffix Initiate appended to
// the booking code.
func bookingCodeFromTxnRef(ref string) string {
    if i := strings.LastIndex(ref, "-"); i > 0 {
        return ref[:i]
    }
    return ref
}
