package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/goviettour/booking-backend/internal/model"
    "github.com/goviettour/booking-backend/internal/reconcile"
    "github.com/goviettour/booking-backend/internal/repository"
)

// PaymentHandler serves the admin payment actions: status transitions,
// manual mark-paid, refunds and the bulk operation.  Every mutation goes
// through the reconciler; the handler only translates HTTP to calls and
// reconciler errors back to status codes.
type PaymentHandler struct {
    Reconciler *reconcile.Reconciler
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(r *reconcile.Reconciler) *PaymentHandler {
    if r == nil {
        panic("nil reconciler passed to NewPaymentHandler")
    }
    return &PaymentHandler{Reconciler: r}
}

// reconcileError maps the reconciler's validation taxonomy to HTTP
// responses.  Each rejection carries its specific reason; nothing is
// clamped or rounded on the caller's behalf.
func reconcileError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    case errors.Is(err, reconcile.ErrOverpayment):
        return c.JSON(http.StatusConflict, echo.Map{"error": "payment exceeds booking total"})
    case errors.Is(err, reconcile.ErrRefundExceedsPaid):
        return c.JSON(http.StatusConflict, echo.Map{"error": "refund exceeds paid amount"})
    case errors.Is(err, reconcile.ErrNonPositiveAmount):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
    case errors.Is(err, reconcile.ErrTerminalState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
    case errors.Is(err, reconcile.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment operation failed"})
}

type statusReq struct {
    Status string `json:"status"`
}

// UpdateStatus handles PATCH /v1/admin/bookings/:code/status.  It accepts
// either wire codes ('c'/'x') or full words and runs the change through
// the lifecycle state machine.
func (h *PaymentHandler) UpdateStatus(c echo.Context) error {
    code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
    var req statusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    to, err := model.StatusFromWire(strings.TrimSpace(req.Status))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
    }
    b, err := h.Reconciler.Transition(c.Request().Context(), code, to)
    if err != nil {
        return reconcileError(c, err)
    }
    return c.JSON(http.StatusOK, toBookingJSON(b))
}

type markPaidReq struct {
    Action   string `json:"action"`
    Amount   int64  `json:"amount"`
    Provider string `json:"provider"`
    Ref      string `json:"ref"`
    Note     string `json:"note"`
}

// MarkPaid handles PATCH /v1/admin/bookings/:code/payment.  An omitted
// or zero amount records the outstanding remainder.  A duplicate
// (provider, ref) pair is reported as already applied rather than an
// error, matching the webhook semantics.
func (h *PaymentHandler) MarkPaid(c echo.Context) error {
    code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
    var req markPaidReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Action != "" && req.Action != "mark_paid" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported payment action"})
    }
    if req.Amount < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
    }
    b, err := h.Reconciler.MarkPaid(c.Request().Context(), code, req.Amount, req.Provider, req.Ref, req.Note)
    if err != nil {
        if errors.Is(err, repository.ErrDuplicateEntry) {
            return c.JSON(http.StatusOK, echo.Map{"booking": toBookingJSON(b), "already_applied": true})
        }
        return reconcileError(c, err)
    }
    return c.JSON(http.StatusOK, toBookingJSON(b))
}

type refundReq struct {
    RefundAmount int64  `json:"refund_amount"`
    Reason       string `json:"reason"`
}

// Refund handles POST /v1/admin/bookings/:code/refund.  An omitted or
// zero refund_amount refunds the full collected amount.  Refunds never
// change booking status.
func (h *PaymentHandler) Refund(c echo.Context) error {
    code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
    var req refundReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.RefundAmount < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refund amount must be positive"})
    }
    b, err := h.Reconciler.Refund(c.Request().Context(), code, req.RefundAmount, strings.TrimSpace(req.Reason))
    if err != nil {
        return reconcileError(c, err)
    }
    return c.JSON(http.StatusOK, toBookingJSON(b))
}

type bulkMarkPaidReq struct {
    BookingCodes []string `json:"booking_codes"`
    Amount       int64    `json:"amount"`
    Provider     string   `json:"provider"`
    Note         string   `json:"note"`
}

// BulkMarkPaid handles POST /v1/admin/bookings/bulk/mark-paid.  Bookings
// are processed independently; the response always carries one result
// per requested code and the endpoint returns 200 even when some items
// fail.
func (h *PaymentHandler) BulkMarkPaid(c echo.Context) error {
    var req bulkMarkPaidReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(req.BookingCodes) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_codes is required"})
    }
    if req.Amount < 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
    }
    codes := make([]string, 0, len(req.BookingCodes))
    for _, raw := range req.BookingCodes {
        if code := strings.ToUpper(strings.TrimSpace(raw)); code != "" {
            codes = append(codes, code)
        }
    }
    results := h.Reconciler.BulkMarkPaid(c.Request().Context(), codes, req.Amount, req.Provider, req.Note)
    return c.JSON(http.StatusOK, echo.Map{"results": results})
}
