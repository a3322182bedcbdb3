package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/goviettour/booking-backend/internal/model"
    "github.com/goviettour/booking-backend/internal/repository"
)

// BookingHandler serves the customer-facing booking endpoints and the
// admin list.  Creation snapshots prices from the tour inside a
// transaction so a concurrent price edit cannot split the snapshot;
// everything money-related after creation goes through the reconciler.
type BookingHandler struct {
    Bookings *repository.BookingRepo
    Tours    *repository.TourRepo
    Ledger   *repository.LedgerRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(bookings *repository.BookingRepo, tours *repository.TourRepo, ledger *repository.LedgerRepo) *BookingHandler {
    if bookings == nil || tours == nil || ledger == nil {
        panic("nil repository passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: bookings, Tours: tours, Ledger: ledger}
}

type createBookingReq struct {
    TourID         uint64 `json:"tour_id"`
    ContactName    string `json:"contact_name"`
    ContactEmail   string `json:"contact_email"`
    ContactPhone   string `json:"contact_phone"`
    ContactAddress string `json:"contact_address"`
    Adults         uint32 `json:"adults"`
    Children       uint32 `json:"children"`
    PaymentMethod  string `json:"payment_method"`
}

// CreateBooking handles POST /v1/bookings.  The booking starts pending
// with a zero paid amount and an empty ledger; the response carries the
// generated booking code the customer uses for payment and lookups.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    req.ContactName = strings.TrimSpace(req.ContactName)
    req.ContactEmail = strings.ToLower(strings.TrimSpace(req.ContactEmail))
    req.ContactPhone = strings.TrimSpace(req.ContactPhone)
    if req.TourID == 0 || req.ContactName == "" || req.ContactPhone == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "tour_id, contact_name and contact_phone are required"})
    }
    if req.Adults == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one adult traveller is required"})
    }
    if req.PaymentMethod == "" {
        req.PaymentMethod = model.MethodOffice
    }
    if !model.ValidPaymentMethod(req.PaymentMethod) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment method"})
    }

    ctx := c.Request().Context()
    tour, err := h.Tours.GetByID(ctx, req.TourID)
    if err != nil {
        if errors.Is(err, repository.ErrTourNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    code, err := newBookingCode(time.Now())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to allocate booking code"})
    }
    b := &model.Booking{
        Code:           code,
        TourID:         tour.ID,
        Destination:    tour.Destination,
        ContactName:    req.ContactName,
        ContactEmail:   req.ContactEmail,
        ContactPhone:   req.ContactPhone,
        ContactAddress: strings.TrimSpace(req.ContactAddress),
        Adults:         req.Adults,
        Children:       req.Children,
        PriceAdult:     tour.PriceAdult,
        PriceChild:     tour.PriceChild,
        TotalAmount:    tour.PriceAdult*int64(req.Adults) + tour.PriceChild*int64(req.Children),
        PaymentMethod:  req.PaymentMethod,
    }

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
    }
    committed = true

    return c.JSON(http.StatusCreated, toBookingJSON(b))
}

// GetBooking handles GET /v1/bookings/:code.
func (h *BookingHandler) GetBooking(c echo.Context) error {
    code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking code"})
    }
    b, err := h.Bookings.GetByCode(c.Request().Context(), code)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, toBookingJSON(b))
}

type ledgerEntryJSON struct {
    Provider  string `json:"provider"`
    Ref       string `json:"ref"`
    Amount    int64  `json:"amount"`
    Note      string `json:"note,omitempty"`
    CreatedAt string `json:"created_at"`
}

// PaymentHistory handles GET /v1/bookings/:code/payment-history.  It
// returns the ledger oldest first together with the derived remaining
// balance, so the admin console can render a full audit view.
func (h *BookingHandler) PaymentHistory(c echo.Context) error {
    code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
    ctx := c.Request().Context()
    b, err := h.Bookings.GetByCode(ctx, code)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    entries, err := h.Ledger.History(ctx, b.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]ledgerEntryJSON, 0, len(entries))
    for _, e := range entries {
        out = append(out, ledgerEntryJSON{
            Provider:  e.Provider,
            Ref:       e.Ref,
            Amount:    e.Amount,
            Note:      e.Note,
            CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "booking_code": b.Code,
        "total_amount": b.TotalAmount,
        "paid_amount":  b.PaidAmount,
        "remaining":    b.Remaining(),
        "history":      out,
    })
}

// ListBookings handles GET /v1/admin/bookings with optional ?status=
// (wire code or full word), ?payment_method=, ?limit= and ?offset=.
func (h *BookingHandler) ListBookings(c echo.Context) error {
    f := repository.ListFilter{Limit: 50}
    if s := c.QueryParam("status"); s != "" {
        st, err := model.StatusFromWire(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
        }
        f.Status = st
    }
    if m := c.QueryParam("payment_method"); m != "" {
        if !model.ValidPaymentMethod(m) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment method filter"})
        }
        f.PaymentMethod = m
    }
    if v := c.QueryParam("limit"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
            f.Limit = n
        }
    }
    if v := c.QueryParam("offset"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n >= 0 {
            f.Offset = n
        }
    }
    bookings, err := h.Bookings.List(c.Request().Context(), f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]bookingJSON, 0, len(bookings))
    for i := range bookings {
        out = append(out, toBookingJSON(&bookings[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}
