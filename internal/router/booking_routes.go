package router

import (
	"github.com/labstack/echo/v4"

	"github.com/goviettour/booking-backend/internal/handler"
)

// RegisterBooking registers the customer-facing booking endpoints under
// /v1.  None of them require authentication: customers identify a
// booking by its code, which is unguessable enough for lookups.  The
// optional middleware (rate limiter, response cache) is passed in by the
// caller so that deployments without Redis simply get pass-through
// functions.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, co *handler.CheckoutHandler, limiter, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")

	// Creation and checkout mutate state and sit behind the rate
	// limiter to blunt scripted abuse.
	g.POST("/bookings", b.CreateBooking, limiter)
	g.POST("/bookings/:code/checkout", co.Checkout, limiter)

	// Read endpoints are cacheable; the TTL is short so a payment shows
	// up in the status view within seconds.
	g.GET("/bookings/:code", b.GetBooking, cache)
	g.GET("/bookings/:code/payment-history", b.PaymentHistory, cache)
}

// RegisterWebhooks registers the payment gateway callback endpoints.
// These are called by VNPay and Sepay servers, not by browsers, so no
// JWT is involved; each handler does its own signature or API key
// verification.  The rate limiter still applies because the endpoints
// are reachable from the open internet.
func RegisterWebhooks(e *echo.Echo, w *handler.WebhookHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/payments", limiter)
	g.GET("/vnpay/return", w.VNPayReturn)
	g.GET("/vnpay/ipn", w.VNPayIPN)
	g.POST("/sepay/webhook", w.SepayWebhook)
}
