package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/repository"
	"github.com/xeviet/bus-ticketing/internal/service"
)

// PublicHandler serves the unauthenticated storefront reads: routes, trip
// search and trip detail.
type PublicHandler struct {
	Routes  *repository.RouteRepo
	Trips   *repository.TripRepo
	Seats   *repository.SeatRepo
	Tickets *repository.TicketRepo
}

func NewPublicHandler(routes *repository.RouteRepo, trips *repository.TripRepo, seats *repository.SeatRepo, tickets *repository.TicketRepo) *PublicHandler {
	return &PublicHandler{Routes: routes, Trips: trips, Seats: seats, Tickets: tickets}
}

// ListRoutes returns all published routes.
func (h *PublicHandler) ListRoutes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	routes, err := h.Routes.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load routes failed"})
	}
	if routes == nil {
		routes = []model.Route{}
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": routes, "total": len(routes)})
}

// tripView decorates a trip with its derived status and seat availability.
type tripView struct {
	model.Trip
	EffectiveStatus model.TripStatus `json:"effective_status"`
	TotalSeats      int              `json:"total_seats"`
	AvailableSeats  int              `json:"available_seats"`
}

// SearchTrips filters trips by origin, destination, date range, free-text
// search and status. The status filter matches the derived status, so a trip
// stored as upcoming but departing today answers to "running".
func (h *PublicHandler) SearchTrips(c echo.Context) error {
	f := repository.TripFilter{
		Search: c.QueryParam("q"),
		Origin: c.QueryParam("origin"),
		Dest:   c.QueryParam("destination"),
	}
	if d, err := time.Parse("2006-01-02", c.QueryParam("date")); err == nil {
		f.DateFrom, f.DateTo = d, d
	} else {
		if from, err := time.Parse("2006-01-02", c.QueryParam("date_from")); err == nil {
			f.DateFrom = from
		}
		if to, err := time.Parse("2006-01-02", c.QueryParam("date_to")); err == nil {
			f.DateTo = to
		}
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
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	wantStatus := model.TripStatus(c.QueryParam("status"))
	now := time.Now()
	views := []tripView{}
	for _, t := range trips {
		eff := t.EffectiveStatus(now)
		if wantStatus != "" && eff != wantStatus {
			continue
		}
		view, err := h.decorate(ctx, t, eff)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, echo.Map{"trips": views, "total": len(views)})
}

// TripDetail returns one trip with availability.
func (h *PublicHandler) TripDetail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trip, err := h.Trips.GetByCode(ctx, c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trip failed"})
	}
	view, err := h.decorate(ctx, *trip, trip.EffectiveStatus(time.Now()))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trip failed"})
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PublicHandler) decorate(ctx context.Context, t model.Trip, eff model.TripStatus) (tripView, error) {
	total, err := h.Seats.CountByTrip(ctx, t.Code)
	if err != nil {
		return tripView{}, err
	}
	active, err := h.Tickets.CountActiveByTrip(ctx, t.Code)
	if err != nil {
		return tripView{}, err
	}
	return tripView{
		Trip:            t,
		EffectiveStatus: eff,
		TotalSeats:      total,
		AvailableSeats:  service.AvailableSeats(total, active),
	}, nil
}
