package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/queue"
	"github.com/xeviet/bus-ticketing/internal/repository"
	"github.com/xeviet/bus-ticketing/internal/service"
)

func newBookingTestHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	trips := repository.NewTripRepo(db)
	seats := repository.NewSeatRepo(db)
	tickets := repository.NewTicketRepo(db)
	customers := repository.NewCustomerRepo(db)
	svc := service.NewBookingService(db, trips, repository.NewVehicleRepo(db), customers,
		tickets, seats, repository.NewFareRepo(db),
		func(ctx context.Context, ev queue.TicketIssuedEvent) error { return nil })
	projector := service.NewSeatProjector(seats, tickets, customers, trips)
	return NewBookingHandler(svc, projector), mock
}

func postBooking(h *BookingHandler, body string, authed bool) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authed {
		c.Set("user_id", float64(7))
		c.Set("role", "CUSTOMER")
	}
	_ = h.Create(c)
	return rec
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	h, _ := newBookingTestHandler(t)
	rec := postBooking(h, `{"trip_code":"TRIP01","seats":"V01"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateBookingRequiresTripCode(t *testing.T) {
	h, _ := newBookingTestHandler(t)
	rec := postBooking(h, `{"seats":"V01,V02"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateBookingRejectsEmptySelection(t *testing.T) {
	h, _ := newBookingTestHandler(t)
	rec := postBooking(h, `{"trip_code":"TRIP01","seats":" , "}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection, got %d", rec.Code)
	}
}

func TestCreateBookingRejectsTooManySeats(t *testing.T) {
	h, _ := newBookingTestHandler(t)
	rec := postBooking(h, `{"trip_code":"TRIP01","seats":"V01,V02,V03,V04,V05,V06"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for six seats, got %d", rec.Code)
	}
}

func TestCreateBookingConflictNamesSeat(t *testing.T) {
	h, mock := newBookingTestHandler(t)
	now := time.Now()

	mock.ExpectQuery("FROM customers WHERE id").WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "phone", "email", "address", "password_hash", "created_at"}).
			AddRow(7, "KH0007", "Nguyen Van A", "0900000007", "a@example.com", "", "x", now))
	mock.ExpectQuery("FROM trips WHERE code").WithArgs("TRIP01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "vehicle_code", "route_code", "origin", "destination",
			"depart_date", "depart_time", "status", "stops", "driver_name", "codriver_name", "created_at"}).
			AddRow(3, "TRIP01", "XE01", nil, "Sai Gon", "Da Lat", now, "08:30", "upcoming", "", nil, nil, now))
	mock.ExpectQuery("SELECT 1 FROM tickets").WithArgs("TRIP01", "V01").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	rec := postBooking(h, `{"trip_code":"TRIP01","seats":"V01"}`, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["seat"] != "V01" {
		t.Fatalf("conflict response should name V01, got %q", resp["seat"])
	}
}
