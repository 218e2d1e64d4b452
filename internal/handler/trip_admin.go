package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/repository"
	"github.com/xeviet/bus-ticketing/internal/service"
)

// TripAdminHandler serves the staff back office: trip creation with seat
// provisioning, and the trip overview with booking counts.
type TripAdminHandler struct {
	Trips       *repository.TripRepo
	Tickets     *repository.TicketRepo
	Seats       *repository.SeatRepo
	Provisioner *service.SeatProvisioner
}

func NewTripAdminHandler(trips *repository.TripRepo, tickets *repository.TicketRepo, seats *repository.SeatRepo, prov *service.SeatProvisioner) *TripAdminHandler {
	return &TripAdminHandler{Trips: trips, Tickets: tickets, Seats: seats, Provisioner: prov}
}

type createTripReq struct {
	Code         string   `json:"code"`
	VehicleCode  string   `json:"vehicle_code"`
	RouteCode    string   `json:"route_code"`
	Origin       string   `json:"origin"`
	Destination  string   `json:"destination"`
	DepartDate   string   `json:"depart_date"` // YYYY-MM-DD
	DepartTime   string   `json:"depart_time"` // HH:MM
	Stops        []string `json:"stops"`
	DriverName   string   `json:"driver_name"`
	CoDriverName string   `json:"codriver_name"`
}

// Create inserts a trip and provisions its seat inventory in one call. The
// trip survives even when provisioning yields zero seats; the response
// carries a warning instead so staff can retry provisioning later rather
// than re-enter the whole schedule.
func (h *TripAdminHandler) Create(c echo.Context) error {
	var req createTripReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	req.VehicleCode = strings.TrimSpace(req.VehicleCode)
	if req.Code == "" || req.VehicleCode == "" || req.Origin == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code, vehicle_code, origin, destination required"})
	}
	departDate, err := time.Parse("2006-01-02", req.DepartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "depart_date must be YYYY-MM-DD"})
	}
	if req.DepartTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "depart_time required"})
	}

	trip := &model.Trip{
		Code:         req.Code,
		VehicleCode:  req.VehicleCode,
		Origin:       req.Origin,
		Destination:  req.Destination,
		DepartDate:   departDate,
		DepartTime:   req.DepartTime,
		Status:       model.TripUpcoming,
		Stops:        req.Stops,
		DriverName:   req.DriverName,
		CoDriverName: req.CoDriverName,
	}
	if rc := strings.TrimSpace(req.RouteCode); rc != "" {
		trip.RouteCode = &rc
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Trips.Create(ctx, trip); err != nil {
		if errors.Is(err, repository.ErrTripCodeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "trip code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create trip failed"})
	}

	seatCount := h.Provisioner.Provision(ctx, trip.Code, trip.VehicleCode)
	resp := echo.Map{"trip": trip, "seats_created": seatCount}
	if seatCount == 0 {
		resp["warning"] = "trip created but no seats were provisioned"
	}
	return c.JSON(http.StatusCreated, resp)
}

// List returns trips for the back office with per-trip booking counts.
func (h *TripAdminHandler) List(c echo.Context) error {
	f := repository.TripFilter{
		Search: c.QueryParam("q"),
		Status: model.TripStatus(c.QueryParam("status")),
	}
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	if n, err := strconv.Atoi(c.QueryParam("offset")); err == nil && n > 0 {
		f.Offset = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trips, err := h.Trips.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trips failed"})
	}

	type staffTripView struct {
		model.Trip
		EffectiveStatus model.TripStatus `json:"effective_status"`
		TotalSeats      int              `json:"total_seats"`
		BookedSeats     int              `json:"booked_seats"`
	}
	now := time.Now()
	views := []staffTripView{}
	for _, t := range trips {
		total, err := h.Seats.CountByTrip(ctx, t.Code)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trips failed"})
		}
		booked, err := h.Tickets.CountActiveByTrip(ctx, t.Code)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trips failed"})
		}
		views = append(views, staffTripView{
			Trip:            t,
			EffectiveStatus: t.EffectiveStatus(now),
			TotalSeats:      total,
			BookedSeats:     booked,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"trips": views, "total": len(views)})
}
