package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/goviettour/booking-backend/internal/repository"
)

// StatsHandler serves the read-only payment statistics for the admin
// dashboard.  It is a thin aggregation over bookings and the ledger; the
// route sits behind the Redis response cache because the dashboard polls
// it.
type StatsHandler struct {
    Bookings *repository.BookingRepo
    Ledger   *repository.LedgerRepo
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(bookings *repository.BookingRepo, ledger *repository.LedgerRepo) *StatsHandler {
    if bookings == nil || ledger == nil {
        panic("nil repository passed to NewStatsHandler")
    }
    return &StatsHandler{Bookings: bookings, Ledger: ledger}
}

type providerStatJSON struct {
    Provider  string `json:"provider"`
    Entries   int64  `json:"entries"`
    Collected int64  `json:"collected"`
    Refunded  int64  `json:"refunded"`
}

type statusStatJSON struct {
    Status string `json:"status"`
    Count  int64  `json:"count"`
    Total  int64  `json:"total_amount"`
    Paid   int64  `json:"paid_amount"`
}

// PaymentStats handles GET /v1/admin/bookings/stats/payments with
// ?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD (end date inclusive).
// Defaults cover the last 30 days.
func (h *StatsHandler) PaymentStats(c echo.Context) error {
    end := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
    start := end.AddDate(0, 0, -30)
    if v := c.QueryParam("start_date"); v != "" {
        t, err := time.Parse("2006-01-02", v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
        }
        start = t
    }
    if v := c.QueryParam("end_date"); v != "" {
        t, err := time.Parse("2006-01-02", v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
        }
        end = t.Add(24 * time.Hour)
    }
    if !start.Before(end) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be before end_date"})
    }

    ctx := c.Request().Context()
    providers, err := h.Ledger.StatsBetween(ctx, start, end)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    statuses, err := h.Bookings.CountByStatusBetween(ctx, start, end)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    provOut := make([]providerStatJSON, 0, len(providers))
    var collected, refunded int64
    for _, p := range providers {
        provOut = append(provOut, providerStatJSON{
            Provider:  p.Provider,
            Entries:   p.Entries,
            Collected: p.Collected,
            Refunded:  p.Refunded,
        })
        collected += p.Collected
        refunded += p.Refunded
    }
    statusOut := make([]statusStatJSON, 0, len(statuses))
    for _, s := range statuses {
        statusOut = append(statusOut, statusStatJSON{
            Status: s.Status.WireCode(),
            Count:  s.Count,
            Total:  s.Total,
            Paid:   s.Paid,
        })
    }

    return c.JSON(http.StatusOK, echo.Map{
        "start_date":      start.Format("2006-01-02"),
        "end_date":        end.Add(-24 * time.Hour).Format("2006-01-02"),
        "total_collected": collected,
        "total_refunded":  refunded,
        "net_collected":   collected - refunded,
        "by_provider":     provOut,
        "by_status":       statusOut,
    })
}
