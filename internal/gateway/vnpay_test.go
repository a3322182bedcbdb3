package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goviettour/booking-backend/internal/model"
)

func testVNPay() *VNPay {
	v := NewVNPay(VNPayConfig{
		TmnCode:    "GVTOUR01",
		HashSecret: "topsecret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://goviettour.example/payments/vnpay/return",
	})
	v.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return v
}

func TestVNPayInitiateBuildsSignedURL(t *testing.T) {
	v := testVNPay()
	b := &model.Booking{Code: "GV260314AB12", TotalAmount: 5000000}

	intent, err := v.Initiate(context.Background(), b, 5000000)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	u, err := url.Parse(intent.RedirectURL)
	if err != nil {
		t.Fatalf("redirect URL does not parse: %v", err)
	}
	q := u.Query()
	if got := q.Get("vnp_Amount"); got != "500000000" {
		t.Errorf("vnp_Amount = %s, want amount x100", got)
	}
	if got := q.Get("vnp_TxnRef"); bookingCodeFromTxnRef(got) != b.Code {
		t.Errorf("booking code not recoverable from vnp_TxnRef %q", got)
	}
	sig := q.Get("vnp_SecureHash")
	if sig == "" {
		t.Fatal("redirect URL is unsigned")
	}
	q.Del("vnp_SecureHash")
	if signVNPay(q, "topsecret") != sig {
		t.Error("vnp_SecureHash does not verify against the signed parameters")
	}
}

func TestVNPayInitiateUnconfigured(t *testing.T) {
	v := NewVNPay(VNPayConfig{})
	if _, err := v.Initiate(context.Background(), &model.Booking{Code: "GV1"}, 1000); err != ErrGatewayUnavailable {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
}

// signedCallback builds a callback request carrying a valid signature
// over the given parameters.
func signedCallback(t *testing.T, secret string, params url.Values) *http.Request {
	t.Helper()
	sig := signVNPay(params, secret)
	params.Set("vnp_SecureHash", sig)
	return httptest.NewRequest(http.MethodGet, "/v1/payments/vnpay/ipn?"+params.Encode(), nil)
}

func TestVNPayParseCallbackRoundTrip(t *testing.T) {
	v := testVNPay()
	params := url.Values{}
	params.Set("vnp_TxnRef", "GV260314AB12-1773480600")
	params.Set("vnp_TransactionNo", "14422001")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_Amount", "500000000")

	conf, err := v.ParseCallback(signedCallback(t, "topsecret", params))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if !conf.Verified {
		t.Fatal("valid signature not verified")
	}
	if !conf.Success {
		t.Error("response code 00 should be success")
	}
	if conf.BookingCode != "GV260314AB12" {
		t.Errorf("booking code = %s", conf.BookingCode)
	}
	if conf.Ref != "14422001" {
		t.Errorf("ref = %s, want provider transaction number", conf.Ref)
	}
	if conf.Amount != 5000000 {
		t.Errorf("amount = %d, want the wire amount divided by 100", conf.Amount)
	}
}

func TestVNPayParseCallbackRejectsTampering(t *testing.T) {
	v := testVNPay()
	params := url.Values{}
	params.Set("vnp_TxnRef", "GV260314AB12-1773480600")
	params.Set("vnp_TransactionNo", "14422001")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_Amount", "500000000")
	req := signedCallback(t, "topsecret", params)

	// Inflate the amount after signing.
	q := req.URL.Query()
	q.Set("vnp_Amount", "900000000")
	req.URL.RawQuery = q.Encode()

	conf, err := v.ParseCallback(req)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if conf.Verified {
		t.Fatal("tampered callback must not verify")
	}
}

func TestVNPayParseCallbackFailedPayment(t *testing.T) {
	v := testVNPay()
	params := url.Values{}
	params.Set("vnp_TxnRef", "GV260314AB12-1773480600")
	params.Set("vnp_TransactionNo", "14422002")
	params.Set("vnp_ResponseCode", "24") // customer aborted
	params.Set("vnp_Amount", "500000000")

	conf, err := v.ParseCallback(signedCallback(t, "topsecret", params))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if !conf.Verified || conf.Success {
		t.Errorf("aborted payment: verified=%v success=%v, want verified and not success", conf.Verified, conf.Success)
	}
}

func TestBookingCodeFromTxnRef(t *testing.T) {
	cases := map[string]string{
		"GV260314AB12-1773480600": "GV260314AB12",
		"GV260314AB12":            "GV260314AB12",
		"":                        "",
	}
	for in, want := range cases {
		if got := bookingCodeFromTxnRef(in); got != want {
			t.Errorf("bookingCodeFromTxnRef(%q) = %q, want %q", in, got, want)
		}
	}
}
