package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/goviettour/booking-backend/internal/gateway"
    "github.com/goviettour/booking-backend/internal/model"
    "github.com/goviettour/booking-backend/internal/repository"
)

// CheckoutHandler turns a booking into a payment intent through the
// selected gateway.  Initiation is bounded by a timeout and writes
// nothing: if the gateway cannot produce a redirect the booking simply
// stays pending and the customer is told to pay at the office instead,
// so the booking is never lost to a gateway outage.
type CheckoutHandler struct {
    Bookings *repository.BookingRepo
    Gateways *gateway.Registry
    Timeout  time.Duration
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(bookings *repository.BookingRepo, gateways *gateway.Registry, timeout time.Duration) *CheckoutHandler {
    if bookings == nil || gateways == nil {
        panic("nil dependency passed to NewCheckoutHandler")
    }
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &CheckoutHandler{Bookings: bookings, Gateways: gateways, Timeout: timeout}
}

type checkoutReq struct {
    Provider string `json:"provider"`
    // Amount allows a partial deposit; zero means the outstanding
    // remainder.
    Amount int64 `json:"amount"`
}

// Checkout handles POST /v1/bookings/:code/checkout.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
    code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
    var req checkoutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Provider == "" {
        req.Provider = model.MethodOffice
    }
    adapter := h.Gateways.Get(req.Provider)
    if adapter == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment provider"})
    }

    ctx := c.Request().Context()
    b, err := h.Bookings.GetByCode(ctx, code)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if b.Status == model.StatusCancelled {
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
    }
    amount := req.Amount
    if amount <= 0 {
        amount = b.Remaining()
    }
    if amount <= 0 {
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking is already fully paid"})
    }
    if amount > b.Remaining() {
        return c.JSON(http.StatusConflict, echo.Map{"error": "payment exceeds booking total"})
    }

    initCtx, cancel := context.WithTimeout(ctx, h.Timeout)
    defer cancel()
    intent, err := adapter.Initiate(initCtx, b, amount)
    if err != nil {
        if errors.Is(err, gateway.ErrGatewayUnavailable) {
            // Fall back to manual payment rather than losing the booking.
            c.Logger().Warnf("checkout: %s unavailable for %s, falling back to office", req.Provider, code)
            office := h.Gateways.Get(model.MethodOffice)
            if office != nil {
                if intent, err := office.Initiate(ctx, b, amount); err == nil {
                    return c.JSON(http.StatusOK, echo.Map{"intent": intent, "fallback": true})
                }
            }
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payment gateway unavailable"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to initiate payment"})
    }
    return c.JSON(http.StatusOK, echo.Map{"intent": intent})
}
