package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/xeviet/bus-ticketing/internal/repository"
)

func newProvisioner(t *testing.T) (*SeatProvisioner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSeatProvisioner(repository.NewSeatRepo(db), repository.NewVehicleRepo(db)), mock
}

func TestProvisionCreatesLayoutSeats(t *testing.T) {
	p, mock := newProvisioner(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM seats").WithArgs("TRIP01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM vehicles WHERE code").WithArgs("XE01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "plate_no", "type_code", "status"}).
			AddRow(1, "XE01", "Bus 1", "51B-12345", "LIMOUSINE22", "active"))
	mock.ExpectExec("INSERT INTO seats").
		WillReturnResult(sqlmock.NewResult(1, 22))

	if got := p.Provision(context.Background(), "TRIP01", "XE01"); got != 22 {
		t.Fatalf("expected 22 seats created, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProvisionIdempotent(t *testing.T) {
	p, mock := newProvisioner(t)

	// Seats already materialized: no vehicle lookup, no insert.
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM seats").WithArgs("TRIP01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(36))

	if got := p.Provision(context.Background(), "TRIP01", "XE01"); got != 36 {
		t.Fatalf("expected existing count 36, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProvisionMissingVehicleReturnsZero(t *testing.T) {
	p, mock := newProvisioner(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM seats").WithArgs("TRIP01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM vehicles WHERE code").WithArgs("GHOST").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "plate_no", "type_code", "status"}))

	if got := p.Provision(context.Background(), "TRIP01", "GHOST"); got != 0 {
		t.Fatalf("expected 0 for missing vehicle, got %d", got)
	}
}

func TestProvisionInsertFailureReturnsZero(t *testing.T) {
	p, mock := newProvisioner(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM seats").WithArgs("TRIP01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM vehicles WHERE code").WithArgs("XE01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "plate_no", "type_code", "status"}).
			AddRow(1, "XE01", "Bus 1", "51B-12345", "VIP30", "active"))
	mock.ExpectExec("INSERT INTO seats").
		WillReturnError(errors.New("deadlock"))

	if got := p.Provision(context.Background(), "TRIP01", "XE01"); got != 0 {
		t.Fatalf("expected 0 on insert failure, got %d", got)
	}
}
