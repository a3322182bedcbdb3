package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/goviettour/booking-backend/internal/handler"    // import the handlers that implement business logic
	"github.com/goviettour/booking-backend/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/goviettour/booking-backend/internal/model"      // import staff role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers staff authentication routes.  Login is open;
// the whoami endpoint requires a valid access token.  Both staff roles
// are accepted here, finer role checks belong to the individual admin
// route groups.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	me := e.Group(
		"/v1/auth",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleAccountant),
	)
	me.GET("/me", a.Me)
}
