package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/xeviet/bus-ticketing/internal/repository"
)

func newProjector(t *testing.T) (*SeatProjector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	p := NewSeatProjector(
		repository.NewSeatRepo(db),
		repository.NewTicketRepo(db),
		repository.NewCustomerRepo(db),
		repository.NewTripRepo(db))
	return p, mock
}

func seatRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "seat_key", "trip_code", "seat_number", "seat_class", "status", "description", "created_at"})
}

func ticketRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "trip_code", "seat_number", "customer_code",
		"customer_id", "fare_code", "batch_code", "status", "legacy_status", "created_at"})
}

func TestProjectTripStatuses(t *testing.T) {
	p, mock := newProjector(t)
	now := time.Now()

	mock.ExpectQuery("FROM seats WHERE trip_code").WithArgs("TRIP01").
		WillReturnRows(seatRows().
			AddRow(1, "SEAT_TRIP01_V01", "TRIP01", "V01", "VIP", "held", "", now).
			AddRow(2, "SEAT_TRIP01_V02", "TRIP01", "V02", "VIP", "sold", "", now).
			AddRow(3, "SEAT_TRIP01_V03", "TRIP01", "V03", "VIP", "free", "", now).
			AddRow(4, "SEAT_TRIP01_V04", "TRIP01", "V04", "VIP", "cancelled", "", now))
	mock.ExpectQuery("FROM tickets WHERE trip_code").WithArgs("TRIP01").
		WillReturnRows(ticketRows().
			AddRow(11, "VX-1", "TRIP01", "V01", "KH0007", nil, "", "DV-1", "pending", nil, now).
			AddRow(12, "VX-2", "TRIP01", "V02", "", 8, "", "DV-2", "paid", nil, now))
	mock.ExpectQuery("FROM customers WHERE code IN").WithArgs("KH0007").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "phone", "email", "address", "password_hash", "created_at"}).
			AddRow(7, "KH0007", "Nguyen Van A", "0900000007", "a@example.com", "", "x", now))
	mock.ExpectQuery("FROM customers WHERE id IN").WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "phone", "email", "address", "password_hash", "created_at"}).
			AddRow(8, "KH0008", "Tran Thi B", "0900000008", "b@example.com", "", "x", now))

	views, err := p.ProjectTrip(context.Background(), "TRIP01")
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	if got := views["V01"].Status; got != SeatViewHeld {
		t.Fatalf("pending ticket should show held, got %s", got)
	}
	if got := views["V01"].CustomerName; got != "Nguyen Van A" {
		t.Fatalf("occupant by legacy code not resolved, got %q", got)
	}
	if got := views["V02"].Status; got != SeatViewSold {
		t.Fatalf("paid ticket should show sold, got %s", got)
	}
	if got := views["V02"].CustomerName; got != "Tran Thi B" {
		t.Fatalf("occupant by id not resolved, got %q", got)
	}
	if got := views["V03"].Status; got != SeatViewAvailable {
		t.Fatalf("free seat should show available, got %s", got)
	}
	if got := views["V04"].Status; got != SeatViewMaintenance {
		t.Fatalf("withdrawn seat should show maintenance, got %s", got)
	}
}

func TestProjectTripMatchesLegacySeatSpellings(t *testing.T) {
	p, mock := newProjector(t)
	now := time.Now()

	// Seat generated as "A01", ticket seeded externally as "A1".
	mock.ExpectQuery("FROM seats WHERE trip_code").WithArgs("TRIP01").
		WillReturnRows(seatRows().
			AddRow(1, "SEAT_TRIP01_A01", "TRIP01", "A01", "Standard", "free", "", now))
	mock.ExpectQuery("FROM tickets WHERE trip_code").WithArgs("TRIP01").
		WillReturnRows(ticketRows().
			AddRow(11, "VX-1", "TRIP01", "A1", "", 8, "", "DV-1", "paid", nil, now))
	mock.ExpectQuery("FROM customers WHERE id IN").WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "phone", "email", "address", "password_hash", "created_at"}).
			AddRow(8, "KH0008", "Tran Thi B", "0900000008", "b@example.com", "", "x", now))

	views, err := p.ProjectTrip(context.Background(), "TRIP01")
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	if got := views["A01"].Status; got != SeatViewSold {
		t.Fatalf("A1 ticket should occupy seat A01, got %s", got)
	}
}

func TestCandidateNumbers(t *testing.T) {
	cases := map[string][]string{
		"A01": {"A01", "A1", "01", "1"},
		"A1":  {"A1", "A01", "01", "1"},
		"7":   {"7", "07"},
	}
	for in, want := range cases {
		got := candidateNumbers(in)
		if len(got) != len(want) {
			t.Fatalf("candidateNumbers(%q) = %v, want %v", in, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("candidateNumbers(%q) = %v, want %v", in, got, want)
			}
		}
	}
}

func TestAvailableSeatsNeverNegative(t *testing.T) {
	if got := AvailableSeats(40, 3); got != 37 {
		t.Fatalf("expected 37, got %d", got)
	}
	if got := AvailableSeats(22, 25); got != 0 {
		t.Fatalf("oversold trip must report 0, got %d", got)
	}
}
