package handler // declare the package name; contains HTTP handlers

import (
    "net/http"          // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint behind /healthz.  It reports only that
// the HTTP process is up; it deliberately touches neither the database
// nor Redis, so a flapping dependency never makes the load balancer
// recycle the service while payments are in flight.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok") // write "ok" with a 200 OK status
}
