package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/repository"
	"github.com/xeviet/bus-ticketing/internal/service"
)

// BookingHandler exposes the booking transaction and the public seat map.
type BookingHandler struct {
	Bookings  *service.BookingService
	Projector *service.SeatProjector
}

func NewBookingHandler(bookings *service.BookingService, projector *service.SeatProjector) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Projector: projector}
}

type bookingReq struct {
	TripCode string `json:"trip_code"`
	// Seats is comma separated ("A01,A02"); the storefront form posts the
	// selection as one field.
	Seats string `json:"seats"`
}

// Create books the requested seats for the authenticated customer. All seats
// of the request are claimed atomically; a single conflict rejects the whole
// batch with 409 naming the losing seat.
func (h *BookingHandler) Create(c echo.Context) error {
	customerID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.TripCode = strings.TrimSpace(req.TripCode)
	if req.TripCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_code required"})
	}
	seats := splitSeats(req.Seats)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := h.Bookings.BookSeats(ctx, req.TripCode, customerID, seats)
	if err != nil {
		var taken *repository.SeatTakenError
		switch {
		case errors.Is(err, service.ErrNoSeatsSelected):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats selected"})
		case errors.Is(err, service.ErrTooManySeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "at most 5 seats per booking"})
		case errors.As(err, &taken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat already booked", "seat": taken.SeatNumber})
		case errors.Is(err, repository.ErrTripNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		case errors.Is(err, repository.ErrCustomerNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown customer"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
		}
	}
	return c.JSON(http.StatusCreated, result)
}

// SeatMap returns the derived seat map of a trip, keyed by seat number.
func (h *BookingHandler) SeatMap(c echo.Context) error {
	tripCode := c.Param("code")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	views, err := h.Projector.ProjectTrip(ctx, tripCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load seat map failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"trip_code": tripCode, "seats": views, "total": len(views)})
}

func splitSeats(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
