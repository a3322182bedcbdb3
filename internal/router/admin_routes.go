package router

import (
	"github.com/labstack/echo/v4"

	"github.com/goviettour/booking-backend/internal/handler"
	"github.com/goviettour/booking-backend/internal/middleware"
	"github.com/goviettour/booking-backend/internal/model"
)

// RegisterAdmin registers the staff console endpoints under /v1/admin.
// Every route requires a valid staff JWT.  Both roles may view and
// record payments; status transitions and refunds are reserved for
// ADMIN because they change what the company owes the customer.  The
// list and stats views are polled by the console, so they sit behind
// the response cache; the receipt is generated on demand and is not.
func RegisterAdmin(
	e *echo.Echo,
	b *handler.BookingHandler,
	p *handler.PaymentHandler,
	s *handler.StatsHandler,
	r *handler.ReceiptHandler,
	cache echo.MiddlewareFunc,
	jwtSecret string,
) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleAccountant),
	)

	// Reporting and payment recording, open to both staff roles.
	g.GET("/bookings", b.ListBookings, cache)
	g.GET("/bookings/stats/payments", s.PaymentStats, cache)
	g.GET("/bookings/:code/receipt", r.Receipt)
	g.PATCH("/bookings/:code/payment", p.MarkPaid)
	g.POST("/bookings/bulk/mark-paid", p.BulkMarkPaid)

	// Lifecycle changes and refunds, ADMIN only.
	admin := g.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.PATCH("/bookings/:code/status", p.UpdateStatus)
	admin.POST("/bookings/:code/refund", p.Refund)
}
