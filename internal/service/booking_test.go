package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/xeviet/bus-ticketing/internal/queue"
	"github.com/xeviet/bus-ticketing/internal/repository"
)

func newBookingService(t *testing.T, publish PublishFunc) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := NewBookingService(db,
		repository.NewTripRepo(db),
		repository.NewVehicleRepo(db),
		repository.NewCustomerRepo(db),
		repository.NewTicketRepo(db),
		repository.NewSeatRepo(db),
		repository.NewFareRepo(db),
		publish)
	return svc, mock
}

func customerRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "name", "phone", "email", "address", "password_hash", "created_at"}).
		AddRow(7, "KH0007", "Nguyen Van A", "0900000007", "a@example.com", "", "x", time.Now())
}

func tripRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "vehicle_code", "route_code", "origin", "destination",
		"depart_date", "depart_time", "status", "stops", "driver_name", "codriver_name", "created_at"}).
		AddRow(3, "TRIP01", "XE01", nil, "Sai Gon", "Da Lat",
			time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "08:30", "upcoming", "", nil, nil, time.Now())
}

func vehicleRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "name", "plate_no", "type_code", "status"}).
		AddRow(1, "XE01", "Bus 1", "51B-12345", "VIP30", "active")
}

func TestBookSeatsValidatesSelection(t *testing.T) {
	svc, _ := newBookingService(t, nil)

	if _, err := svc.BookSeats(context.Background(), "TRIP01", 7, nil); !errors.Is(err, ErrNoSeatsSelected) {
		t.Fatalf("expected ErrNoSeatsSelected, got %v", err)
	}
	six := []string{"V01", "V02", "V03", "V04", "V05", "V06"}
	if _, err := svc.BookSeats(context.Background(), "TRIP01", 7, six); !errors.Is(err, ErrTooManySeats) {
		t.Fatalf("expected ErrTooManySeats, got %v", err)
	}
}

func TestBookSeatsRejectsTakenSeatByName(t *testing.T) {
	svc, mock := newBookingService(t, nil)

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(uint64(7)).WillReturnRows(customerRow())
	mock.ExpectQuery("FROM trips WHERE code").WithArgs("TRIP01").WillReturnRows(tripRow())
	mock.ExpectQuery("SELECT 1 FROM tickets").WithArgs("TRIP01", "V01").
		WillReturnRows(sqlmock.NewRows([]string{"1"})) // free
	mock.ExpectQuery("SELECT 1 FROM tickets").WithArgs("TRIP01", "V02").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1)) // taken

	_, err := svc.BookSeats(context.Background(), "TRIP01", 7, []string{"V01", "V02"})
	var taken *repository.SeatTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected SeatTakenError, got %v", err)
	}
	if taken.SeatNumber != "V02" {
		t.Fatalf("conflict should name V02, got %s", taken.SeatNumber)
	}
	if !errors.Is(err, repository.ErrSeatTaken) {
		t.Fatalf("SeatTakenError must match ErrSeatTaken sentinel")
	}
}

func TestBookSeatsDuplicateKeyRollsBack(t *testing.T) {
	svc, mock := newBookingService(t, nil)

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(uint64(7)).WillReturnRows(customerRow())
	mock.ExpectQuery("FROM trips WHERE code").WithArgs("TRIP01").WillReturnRows(tripRow())
	mock.ExpectQuery("SELECT 1 FROM tickets").WithArgs("TRIP01", "V01").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("FROM vehicles WHERE code").WithArgs("XE01").WillReturnRows(vehicleRow())
	mock.ExpectQuery("FROM fares WHERE vehicle_type").WithArgs("VIP30").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "route_code", "vehicle_type", "amount_vnd"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'TRIP01-V01' for key 'uniq_trip_seat'"))
	mock.ExpectRollback()

	_, err := svc.BookSeats(context.Background(), "TRIP01", 7, []string{"V01"})
	if !errors.Is(err, repository.ErrSeatTaken) {
		t.Fatalf("expected seat-taken error from the unique key, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookSeatsCommitsBatchAndPublishes(t *testing.T) {
	var published *queue.TicketIssuedEvent
	svc, mock := newBookingService(t, func(ctx context.Context, ev queue.TicketIssuedEvent) error {
		published = &ev
		return nil
	})

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(uint64(7)).WillReturnRows(customerRow())
	mock.ExpectQuery("FROM trips WHERE code").WithArgs("TRIP01").WillReturnRows(tripRow())
	mock.ExpectQuery("SELECT 1 FROM tickets").WithArgs("TRIP01", "V01").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("SELECT 1 FROM tickets").WithArgs("TRIP01", "V02").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery("FROM vehicles WHERE code").WithArgs("XE01").WillReturnRows(vehicleRow())
	mock.ExpectQuery("FROM fares WHERE vehicle_type").WithArgs("VIP30").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "route_code", "vehicle_type", "amount_vnd"}).
			AddRow(1, "GV01", "", "VIP30", 250000))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(102, 1))
	mock.ExpectExec("UPDATE seats SET status").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	result, err := svc.BookSeats(context.Background(), "TRIP01", 7, []string{"V01", "V02"})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if len(result.TicketCodes) != 2 {
		t.Fatalf("expected 2 ticket codes, got %d", len(result.TicketCodes))
	}
	if !strings.HasPrefix(result.BatchCode, "DV-") {
		t.Fatalf("batch code missing DV- prefix: %s", result.BatchCode)
	}
	for _, code := range result.TicketCodes {
		if !strings.HasPrefix(code, "VX-") {
			t.Fatalf("ticket code missing VX- prefix: %s", code)
		}
	}
	if result.TicketCodes[0] == result.TicketCodes[1] {
		t.Fatalf("ticket codes must be unique")
	}
	if result.TotalVND != 500000 {
		t.Fatalf("expected total 500000, got %d", result.TotalVND)
	}
	if published == nil {
		t.Fatalf("expected a published event after commit")
	}
	if published.BatchCode != result.BatchCode || len(published.SeatNumbers) != 2 {
		t.Fatalf("event does not match booking: %+v", published)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelTicketReleasesSeat(t *testing.T) {
	svc, mock := newBookingService(t, nil)

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(uint64(7)).WillReturnRows(customerRow())
	mock.ExpectQuery("FROM tickets WHERE code").WithArgs("VX-abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "trip_code", "seat_number", "customer_code",
			"customer_id", "fare_code", "batch_code", "status", "legacy_status", "created_at"}).
			AddRow(101, "VX-abc", "TRIP01", "V01", "KH0007", 7, "GV01", "DV-xyz", "pending", nil, time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tickets SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE seats SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.CancelTicket(context.Background(), "VX-abc", 7); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelTicketRejectsForeignTicket(t *testing.T) {
	svc, mock := newBookingService(t, nil)

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(uint64(7)).WillReturnRows(customerRow())
	mock.ExpectQuery("FROM tickets WHERE code").WithArgs("VX-abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "trip_code", "seat_number", "customer_code",
			"customer_id", "fare_code", "batch_code", "status", "legacy_status", "created_at"}).
			AddRow(101, "VX-abc", "TRIP01", "V01", "KH0099", 99, "GV01", "DV-xyz", "pending", nil, time.Now()))

	if err := svc.CancelTicket(context.Background(), "VX-abc", 7); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign ticket, got %v", err)
	}
}
