package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goviettour/booking-backend/internal/model"
)

func testSepay() *Sepay {
	return NewSepay(SepayConfig{
		APIKey:    "sepay-key",
		AccountNo: "0123456789",
		BankCode:  "VCB",
	})
}

func sepayRequest(apiKey, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/sepay/webhook", strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+apiKey)
	}
	return req
}

func TestSepayInitiateBuildsQRURL(t *testing.T) {
	s := testSepay()
	b := &model.Booking{Code: "GV260314CD34"}

	intent, err := s.Initiate(context.Background(), b, 1500000)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	u, err := url.Parse(intent.QRImageURL)
	if err != nil {
		t.Fatalf("QR URL does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("acc") != "0123456789" || q.Get("bank") != "VCB" {
		t.Errorf("account params wrong: %s", intent.QRImageURL)
	}
	if q.Get("amount") != "1500000" {
		t.Errorf("amount = %s", q.Get("amount"))
	}
	if q.Get("des") != b.Code {
		t.Errorf("memo = %s, want the booking code", q.Get("des"))
	}
}

func TestSepayParseCallbackAcceptsValidTransfer(t *testing.T) {
	s := testSepay()
	body := `{"id":881,"transferType":"in","transferAmount":1500000,` +
		`"content":"CK den GV260314CD34 thanh toan tour","referenceCode":"FT2607400123"}`

	conf, err := s.ParseCallback(sepayRequest("sepay-key", body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if !conf.Verified || !conf.Success {
		t.Fatalf("verified=%v success=%v, want both", conf.Verified, conf.Success)
	}
	if conf.BookingCode != "GV260314CD34" {
		t.Errorf("booking code = %s", conf.BookingCode)
	}
	if conf.Amount != 1500000 {
		t.Errorf("amount = %d", conf.Amount)
	}
	if conf.Ref != "FT2607400123" {
		t.Errorf("ref = %s, want the bank reference", conf.Ref)
	}
}

func TestSepayParseCallbackRejectsBadKey(t *testing.T) {
	s := testSepay()
	body := `{"id":1,"transferType":"in","transferAmount":1000,"content":"GV260314CD34"}`

	conf, err := s.ParseCallback(sepayRequest("wrong-key", body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if conf.Verified {
		t.Fatal("wrong API key must not verify")
	}

	conf, err = s.ParseCallback(sepayRequest("", body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if conf.Verified {
		t.Fatal("missing Authorization header must not verify")
	}
}

func TestSepayParseCallbackIgnoresOutgoingTransfer(t *testing.T) {
	s := testSepay()
	body := `{"id":2,"transferType":"out","transferAmount":1000,"content":"GV260314CD34"}`

	conf, err := s.ParseCallback(sepayRequest("sepay-key", body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if !conf.Verified || conf.Success {
		t.Errorf("outgoing transfer: verified=%v success=%v, want verified and not success", conf.Verified, conf.Success)
	}
}

func TestSepayParseCallbackIgnoresUnmatchedMemo(t *testing.T) {
	s := testSepay()
	body := `{"id":3,"transferType":"in","transferAmount":1000,"content":"chuyen tien an trua"}`

	conf, err := s.ParseCallback(sepayRequest("sepay-key", body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if !conf.Verified || conf.Success {
		t.Errorf("memo without code: verified=%v success=%v", conf.Verified, conf.Success)
	}
}

func TestSepayParseCallbackSynthesizesRef(t *testing.T) {
	s := testSepay()
	body := `{"id":42,"transferType":"in","transferAmount":1000,"content":"gv260314cd34"}`

	conf, err := s.ParseCallback(sepayRequest("sepay-key", body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if !conf.Success {
		t.Fatal("lowercase memo should still match after upcasing")
	}
	if conf.Ref != "SEPAY-42" {
		t.Errorf("ref = %s, want SEPAY-42", conf.Ref)
	}
}
