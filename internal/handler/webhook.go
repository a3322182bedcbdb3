package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/goviettour/booking-backend/internal/gateway"
    "github.com/goviettour/booking-backend/internal/reconcile"
    "github.com/goviettour/booking-backend/internal/repository"
)

// WebhookHandler receives the asynchronous confirmations from the online
// payment providers.  Each payload is verified by its adapter before the
// reconciler is allowed to touch the ledger; unverified payloads are
// logged and dropped without any state change.  Providers may redeliver:
// a duplicate confirmation is acknowledged as success because the ledger
// uniqueness key guarantees it was applied exactly once.
type WebhookHandler struct {
    VNPay      gateway.Adapter
    Sepay      gateway.Adapter
    Reconciler *reconcile.Reconciler
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(vnpay, sepay gateway.Adapter, r *reconcile.Reconciler) *WebhookHandler {
    if r == nil {
        panic("nil reconciler passed to NewWebhookHandler")
    }
    return &WebhookHandler{VNPay: vnpay, Sepay: sepay, Reconciler: r}
}

// VNPayIPN handles GET /v1/payments/vnpay/ipn, the server-to-server
// confirmation channel.  Responses follow the VNPay IPN contract:
// RspCode 00 confirms receipt, 02 tells VNPay the order was already
// confirmed, 97 rejects a bad signature.
func (h *WebhookHandler) VNPayIPN(c echo.Context) error {
    if h.VNPay == nil {
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "99", "Message": "Channel disabled"})
    }
    conf, err := h.VNPay.ParseCallback(c.Request())
    if err != nil {
        c.Logger().Errorf("vnpay ipn: malformed payload: %v", err)
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "99", "Message": "Invalid request"})
    }
    if !conf.Verified {
        c.Logger().Warnf("vnpay ipn: unverified callback dropped")
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "97", "Message": "Invalid signature"})
    }
    if !conf.Success {
        // Verified "payment failed" notification; nothing to apply.
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "00", "Message": "Confirm Success"})
    }
    _, err = h.Reconciler.ConfirmGatewayPayment(c.Request().Context(), conf.BookingCode, conf.Provider, conf.Ref, conf.Amount)
    switch {
    case err == nil:
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "00", "Message": "Confirm Success"})
    case errors.Is(err, repository.ErrDuplicateEntry):
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "02", "Message": "Order already confirmed"})
    case errors.Is(err, repository.ErrBookingNotFound):
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "01", "Message": "Order not found"})
    case errors.Is(err, reconcile.ErrOverpayment):
        return c.JSON(http.StatusOK, echo.Map{"RspCode": "04", "Message": "Invalid amount"})
    }
    c.Logger().Errorf("vnpay ipn: apply failed for %s: %v", conf.BookingCode, err)
    return c.JSON(http.StatusOK, echo.Map{"RspCode": "99", "Message": "Unknown error"})
}

// VNPayReturn handles GET /v1/payments/vnpay/return, the browser
// redirect after payment.  It applies the confirmation the same way the
// IPN does (whichever arrives first wins, the other is a duplicate) and
// reports the outcome to the customer-facing frontend as JSON.
func (h *WebhookHandler) VNPayReturn(c echo.Context) error {
    if h.VNPay == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "payment channel disabled"})
    }
    conf, err := h.VNPay.ParseCallback(c.Request())
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed payment result"})
    }
    if !conf.Verified {
        c.Logger().Warnf("vnpay return: unverified callback dropped")
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment result could not be verified"})
    }
    if !conf.Success {
        return c.JSON(http.StatusOK, echo.Map{"paid": false, "booking_code": conf.BookingCode})
    }
    b, err := h.Reconciler.ConfirmGatewayPayment(c.Request().Context(), conf.BookingCode, conf.Provider, conf.Ref, conf.Amount)
    if err != nil && !errors.Is(err, repository.ErrDuplicateEntry) {
        return reconcileError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"paid": true, "booking": toBookingJSON(b)})
}

// SepayWebhook handles POST /v1/payments/sepay/webhook.  Sepay posts
// every incoming bank transfer on the configured account; transfers
// whose memo does not carry a booking code are acknowledged and
// ignored so Sepay stops retrying them.
func (h *WebhookHandler) SepayWebhook(c echo.Context) error {
    if h.Sepay == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"success": false})
    }
    conf, err := h.Sepay.ParseCallback(c.Request())
    if err != nil {
        c.Logger().Errorf("sepay webhook: malformed payload: %v", err)
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false})
    }
    if !conf.Verified {
        c.Logger().Warnf("sepay webhook: unverified callback dropped")
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false})
    }
    if !conf.Success {
        return c.JSON(http.StatusOK, echo.Map{"success": true})
    }
    _, err = h.Reconciler.ConfirmGatewayPayment(c.Request().Context(), conf.BookingCode, conf.Provider, conf.Ref, conf.Amount)
    switch {
    case err == nil, errors.Is(err, repository.ErrDuplicateEntry):
        return c.JSON(http.StatusOK, echo.Map{"success": true})
    case errors.Is(err, repository.ErrBookingNotFound):
        // Transfer references a code we do not know; acknowledge so the
        // delivery is not retried, operations reconcile it by hand.
        c.Logger().Warnf("sepay webhook: no booking for ref %s", conf.Ref)
        return c.JSON(http.StatusOK, echo.Map{"success": true})
    case errors.Is(err, reconcile.ErrOverpayment):
        c.Logger().Warnf("sepay webhook: overpayment rejected for %s", conf.BookingCode)
        return c.JSON(http.StatusOK, echo.Map{"success": true})
    }
    c.Logger().Errorf("sepay webhook: apply failed for %s: %v", conf.BookingCode, err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"success": false})
}
