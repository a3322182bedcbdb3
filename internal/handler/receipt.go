package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/phpdave11/gofpdf"

	"github.com/goviettour/booking-backend/internal/model"
	"github.com/goviettour/booking-backend/internal/repository"
)

// ReceiptHandler renders a payment receipt for a booking as a PDF.  The
// receipt lists the pricing snapshot plus every ledger entry to date, so
// it doubles as a statement for partially paid bookings.
type ReceiptHandler struct {
	Bookings *repository.BookingRepo
	Ledger   *repository.LedgerRepo
}

// NewReceiptHandler constructs a ReceiptHandler.
func NewReceiptHandler(bookings *repository.BookingRepo, ledger *repository.LedgerRepo) *ReceiptHandler {
	if bookings == nil || ledger == nil {
		panic("nil repository passed to NewReceiptHandler")
	}
	return &ReceiptHandler{Bookings: bookings, Ledger: ledger}
}

// Receipt handles GET /v1/admin/bookings/:code/receipt and streams the
// generated PDF inline.
func (h *ReceiptHandler) Receipt(c echo.Context) error {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking code is required"})
	}

	ctx := c.Request().Context()
	booking, err := h.Bookings.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	entries, err := h.Ledger.History(ctx, booking.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payment history"})
	}

	pdfBytes, filename, err := buildReceiptPDF(booking, entries)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render receipt"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

func buildReceiptPDF(b *model.Booking, entries []model.LedgerEntry) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		"Booking code : " + b.Code,
		"Issued       : " + time.Now().Format("2006-01-02 15:04"),
		"Status       : " + string(b.Status),
	}
	for _, s := range header {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Customer")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	customer := []string{
		"Name  : " + orDash(b.ContactName),
		"Phone : " + orDash(b.ContactPhone),
		"Email : " + orDash(b.ContactEmail),
	}
	for _, s := range customer {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Tour")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	desc := fmt.Sprintf("%s  (%d adult x %s, %d child x %s)",
		orDash(b.Destination),
		b.Adults, formatVND(b.PriceAdult),
		b.Children, formatVND(b.PriceChild),
	)
	pdf.MultiCell(0, 6, desc, "", "", false)
	pdf.Ln(2)
	pdf.Cell(0, 6, "Total price : "+formatVND(b.TotalAmount))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payments")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	if len(entries) == 0 {
		pdf.Cell(0, 6, "No payments recorded.")
		pdf.Ln(6)
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %s  ref %s",
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Provider,
			formatVND(e.Amount),
			orDash(e.Ref),
		)
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Paid      : "+formatVND(b.PaidAmount))
	pdf.Ln(8)
	pdf.Cell(0, 8, "Remaining : "+formatVND(b.Remaining()))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This receipt reflects all payments and refunds recorded to date.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("RECEIPT_%s.pdf", b.Code), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// formatVND renders an amount in minor units with thousands separators,
// e.g. 1500000 -> "1.500.000 VND".  Negative amounts keep their sign.
func formatVND(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var out []byte
	for i, ch := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, ch)
	}
	if neg {
		return "-" + string(out) + " VND"
	}
	return string(out) + " VND"
}
