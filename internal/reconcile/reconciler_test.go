package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/goviettour/booking-backend/internal/model"
	"github.com/goviettour/booking-backend/internal/queue"
	"github.com/goviettour/booking-backend/internal/repository"
)

// recordingSink captures emitted events so tests can assert on them.
type recordingSink struct {
	payments  []queue.PaymentRecordedEvent
	confirmed []queue.BookingConfirmedEvent
}

func (s *recordingSink) PaymentRecorded(_ context.Context, e queue.PaymentRecordedEvent) {
	s.payments = append(s.payments, e)
}

func (s *recordingSink) BookingConfirmed(_ context.Context, e queue.BookingConfirmedEvent) {
	s.confirmed = append(s.confirmed, e)
}

func newTestReconciler(t *testing.T, policy Policy, sink EventSink) (*Reconciler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	r := NewReconciler(db, repository.NewBookingRepo(db), repository.NewLedgerRepo(db), policy, sink)
	return r, mock, func() { db.Close() }
}

func bookingRow(id uint64, code string, total, paid int64, status model.BookingStatus) *sqlmock.Rows {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "code", "tour_id", "destination", "contact_name", "contact_email",
		"contact_phone", "contact_address", "adults", "children", "price_adult", "price_child",
		"total_amount", "paid_amount", "status", "payment_method", "created_at", "updated_at",
	}).AddRow(
		id, code, 7, "Ha Giang Loop", "Tran Thi B", "b@example.com",
		"0903000111", "", 2, 0, total/2, 0,
		total, paid, string(status), model.MethodOffice, now, now,
	)
}

func TestMarkPaidHappyPath(t *testing.T) {
	sink := &recordingSink{}
	r, mock, closeDB := newTestReconciler(t, Policy{}, sink)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE code = \\? FOR UPDATE").
		WithArgs("GV2603140001").
		WillReturnRows(bookingRow(1, "GV2603140001", 5000000, 0, model.StatusPending))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(1), model.ProviderManual, "CASH-1", int64(2000000), "deposit").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(2000000), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(2000000))
	mock.ExpectCommit()

	b, err := r.MarkPaid(context.Background(), "GV2603140001", 2000000, "", "CASH-1", "deposit")
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if b.PaidAmount != 2000000 {
		t.Errorf("paid amount = %d, want 2000000", b.PaidAmount)
	}
	if b.Status != model.StatusPending {
		t.Errorf("status = %s, want pending (auto-confirm disabled)", b.Status)
	}
	if len(sink.payments) != 1 || sink.payments[0].Provider != model.ProviderManual {
		t.Errorf("payment event not emitted: %+v", sink.payments)
	}
	if len(sink.confirmed) != 0 {
		t.Errorf("unexpected confirmation event: %+v", sink.confirmed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkPaidDefaultsToRemainder(t *testing.T) {
	r, mock, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	// 3,000,000 already collected on a 5,000,000 booking; omitted amount
	// must settle the remaining 2,000,000.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140002").
		WillReturnRows(bookingRow(2, "GV2603140002", 5000000, 3000000, model.StatusPending))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(2), model.ProviderManual, sqlmock.AnyArg(), int64(2000000), "").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(5000000), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(5000000))
	mock.ExpectCommit()

	b, err := r.MarkPaid(context.Background(), "GV2603140002", 0, "", "", "")
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !b.FullyPaid() {
		t.Errorf("booking not fully paid: paid=%d total=%d", b.PaidAmount, b.TotalAmount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkPaidRejectsOverpayment(t *testing.T) {
	r, mock, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140003").
		WillReturnRows(bookingRow(3, "GV2603140003", 5000000, 4000000, model.StatusPending))
	mock.ExpectRollback()

	_, err := r.MarkPaid(context.Background(), "GV2603140003", 2000000, "", "X-1", "")
	if !errors.Is(err, ErrOverpayment) {
		t.Fatalf("err = %v, want ErrOverpayment", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConcurrentMarkPaidSerializes(t *testing.T) {
	r, mock, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	// Two writers race to collect 600,000 each on a 1,000,000 booking.
	// The per-booking lock serializes them, so whichever goroutine goes
	// first commits and the loser re-reads paid=600,000 under the row
	// lock and must fail overpayment instead of double-collecting.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140020").
		WillReturnRows(bookingRow(20, "GV2603140020", 1000000, 0, model.StatusPending))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(20), model.ProviderManual, sqlmock.AnyArg(), int64(600000), "").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(600000), uint64(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(600000))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140020").
		WillReturnRows(bookingRow(20, "GV2603140020", 1000000, 600000, model.StatusPending))
	mock.ExpectRollback()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.MarkPaid(context.Background(), "GV2603140020", 600000, "", "", "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, over int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOverpayment):
			over++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || over != 1 {
		t.Errorf("got %d successes and %d overpayment rejections, want exactly one of each", ok, over)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkPaidRejectsRefundProvider(t *testing.T) {
	r, _, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	if _, err := r.MarkPaid(context.Background(), "GV2603140003", 1000, model.ProviderRefund, "X-1", ""); err == nil {
		t.Fatal("expected error for refund provider on a payment")
	}
}

func TestConfirmGatewayPaymentDuplicateReturnsCurrentState(t *testing.T) {
	sink := &recordingSink{}
	r, mock, closeDB := newTestReconciler(t, Policy{}, sink)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140004").
		WillReturnRows(bookingRow(4, "GV2603140004", 5000000, 5000000, model.StatusConfirmed))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(4), model.ProviderVNPay, "14422craze", int64(5000000), "").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()
	mock.ExpectQuery("FROM bookings WHERE code = \\?").
		WithArgs("GV2603140004").
		WillReturnRows(bookingRow(4, "GV2603140004", 5000000, 5000000, model.StatusConfirmed))

	b, err := r.ConfirmGatewayPayment(context.Background(), "GV2603140004", model.ProviderVNPay, "14422craze", 5000000)
	if !errors.Is(err, repository.ErrDuplicateEntry) {
		t.Fatalf("err = %v, want ErrDuplicateEntry", err)
	}
	if b == nil || b.PaidAmount != 5000000 {
		t.Errorf("duplicate must return current booking state, got %+v", b)
	}
	if len(sink.payments) != 0 {
		t.Errorf("duplicate must not emit events: %+v", sink.payments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConfirmGatewayPaymentValidatesInput(t *testing.T) {
	r, _, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	if _, err := r.ConfirmGatewayPayment(context.Background(), "GV2603140004", model.ProviderVNPay, "T1", 0); !errors.Is(err, ErrNonPositiveAmount) {
		t.Errorf("zero amount: err = %v, want ErrNonPositiveAmount", err)
	}
	if _, err := r.ConfirmGatewayPayment(context.Background(), "GV2603140004", model.ProviderVNPay, "", 1000); err == nil {
		t.Error("empty ref must be rejected")
	}
}

func TestAutoConfirmOnFullPayment(t *testing.T) {
	sink := &recordingSink{}
	r, mock, closeDB := newTestReconciler(t, Policy{ConfirmOnFullPayment: true}, sink)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140005").
		WillReturnRows(bookingRow(5, "GV2603140005", 5000000, 3000000, model.StatusPending))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(5), model.ProviderSepay, "SEPAY-881", int64(2000000), "").
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(13)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(5000000), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(5000000))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(string(model.StatusConfirmed), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := r.ConfirmGatewayPayment(context.Background(), "GV2603140005", model.ProviderSepay, "SEPAY-881", 2000000)
	if err != nil {
		t.Fatalf("ConfirmGatewayPayment: %v", err)
	}
	if b.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}
	if len(sink.confirmed) != 1 {
		t.Errorf("confirmation event not emitted: %+v", sink.confirmed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLateConfirmationOnCancelledBookingKeepsStatus(t *testing.T) {
	sink := &recordingSink{}
	r, mock, closeDB := newTestReconciler(t, Policy{ConfirmOnFullPayment: true}, sink)
	defer closeDB()

	// The customer paid after the booking was cancelled.  The money did
	// move, so the ledger entry and the paid cache are written for the
	// audit trail, but the booking never leaves cancelled even with
	// auto-confirm on; reimbursement is a separate explicit refund.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140021").
		WillReturnRows(bookingRow(21, "GV2603140021", 5000000, 0, model.StatusCancelled))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(21), model.ProviderVNPay, "14422099", int64(5000000), "").
		WillReturnResult(sqlmock.NewResult(22, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(22)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(5000000), uint64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(5000000))
	mock.ExpectCommit()

	b, err := r.ConfirmGatewayPayment(context.Background(), "GV2603140021", model.ProviderVNPay, "14422099", 5000000)
	if err != nil {
		t.Fatalf("ConfirmGatewayPayment: %v", err)
	}
	if b.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled to stay terminal", b.Status)
	}
	if b.PaidAmount != 5000000 {
		t.Errorf("paid amount = %d, want the late payment recorded", b.PaidAmount)
	}
	if len(sink.confirmed) != 0 {
		t.Errorf("cancelled booking must never emit a confirmation event: %+v", sink.confirmed)
	}
	if len(sink.payments) != 1 {
		t.Errorf("ledger write must still emit a payment event: %+v", sink.payments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPartialPaymentNeverAutoConfirms(t *testing.T) {
	sink := &recordingSink{}
	r, mock, closeDB := newTestReconciler(t, Policy{ConfirmOnFullPayment: true}, sink)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140006").
		WillReturnRows(bookingRow(6, "GV2603140006", 5000000, 0, model.StatusPending))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(6), model.ProviderVNPay, "T-55", int64(1000000), "").
		WillReturnResult(sqlmock.NewResult(14, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(14)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(1000000), uint64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1000000))
	mock.ExpectCommit()

	b, err := r.ConfirmGatewayPayment(context.Background(), "GV2603140006", model.ProviderVNPay, "T-55", 1000000)
	if err != nil {
		t.Fatalf("ConfirmGatewayPayment: %v", err)
	}
	if b.Status != model.StatusPending {
		t.Errorf("status = %s, want pending after partial payment", b.Status)
	}
	if len(sink.confirmed) != 0 {
		t.Errorf("partial payment must not confirm: %+v", sink.confirmed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLedgerDriftAbortsTransaction(t *testing.T) {
	r, mock, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140007").
		WillReturnRows(bookingRow(7, "GV2603140007", 5000000, 0, model.StatusPending))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(7), model.ProviderManual, "C-1", int64(1000000), "").
		WillReturnResult(sqlmock.NewResult(15, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(1000000), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The ledger disagrees with the cache that was just written.
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(999))
	mock.ExpectRollback()

	_, err := r.MarkPaid(context.Background(), "GV2603140007", 1000000, "", "C-1", "")
	if !errors.Is(err, ErrLedgerDrift) {
		t.Fatalf("err = %v, want ErrLedgerDrift", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRefundFullCollectedAmount(t *testing.T) {
	sink := &recordingSink{}
	r, mock, closeDB := newTestReconciler(t, Policy{}, sink)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140008").
		WillReturnRows(bookingRow(8, "GV2603140008", 5000000, 5000000, model.StatusCancelled))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(8), model.ProviderRefund, sqlmock.AnyArg(), int64(-5000000), "tour cancelled").
		WillReturnResult(sqlmock.NewResult(16, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(16)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(0), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectCommit()

	b, err := r.Refund(context.Background(), "GV2603140008", 0, "tour cancelled")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if b.PaidAmount != 0 {
		t.Errorf("paid amount = %d, want 0 after full refund", b.PaidAmount)
	}
	if b.Status != model.StatusCancelled {
		t.Errorf("refund must not change status, got %s", b.Status)
	}
	if len(sink.payments) != 1 || sink.payments[0].Amount != -5000000 {
		t.Errorf("refund event wrong: %+v", sink.payments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRefundCannotExceedPaid(t *testing.T) {
	r, mock, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140009").
		WillReturnRows(bookingRow(9, "GV2603140009", 5000000, 1000000, model.StatusPending))
	mock.ExpectRollback()

	_, err := r.Refund(context.Background(), "GV2603140009", 2000000, "")
	if !errors.Is(err, ErrRefundExceedsPaid) {
		t.Fatalf("err = %v, want ErrRefundExceedsPaid", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTransitionConfirm(t *testing.T) {
	sink := &recordingSink{}
	r, mock, closeDB := newTestReconciler(t, Policy{}, sink)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140010").
		WillReturnRows(bookingRow(10, "GV2603140010", 5000000, 0, model.StatusPending))
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(string(model.StatusConfirmed), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := r.Transition(context.Background(), "GV2603140010", model.StatusConfirmed)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if b.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", b.Status)
	}
	if len(sink.confirmed) != 1 {
		t.Errorf("confirmation event not emitted: %+v", sink.confirmed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTransitionOutOfCancelledFails(t *testing.T) {
	r, mock, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140011").
		WillReturnRows(bookingRow(11, "GV2603140011", 5000000, 0, model.StatusCancelled))
	mock.ExpectRollback()

	_, err := r.Transition(context.Background(), "GV2603140011", model.StatusPending)
	if !errors.Is(err, ErrTerminalState) {
		t.Fatalf("err = %v, want ErrTerminalState", err)
	}
}

func TestBulkMarkPaidIsolatesFailures(t *testing.T) {
	r, mock, closeDB := newTestReconciler(t, Policy{}, nil)
	defer closeDB()

	// First booking settles fine.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GV2603140012").
		WillReturnRows(bookingRow(12, "GV2603140012", 1000000, 0, model.StatusPending))
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(uint64(12), model.ProviderManual, sqlmock.AnyArg(), int64(1000000), "").
		WillReturnResult(sqlmock.NewResult(17, 1))
	mock.ExpectQuery("SELECT created_at FROM payment_ledger").
		WithArgs(uint64(17)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec("UPDATE bookings SET paid_amount").
		WithArgs(int64(1000000), uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1000000))
	mock.ExpectCommit()

	// Second booking does not exist.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("GVMISSING1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	results := r.BulkMarkPaid(context.Background(), []string{"GV2603140012", "GVMISSING1"}, 0, "", "")
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].OK || results[0].PaidAmount != 1000000 {
		t.Errorf("first result: %+v", results[0])
	}
	if results[1].OK || results[1].Error == "" {
		t.Errorf("second result should carry the failure: %+v", results[1])
	}
}
