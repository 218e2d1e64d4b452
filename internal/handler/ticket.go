package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/repository"
	"github.com/xeviet/bus-ticketing/internal/service"
)

// TicketHandler serves a customer's own tickets.
type TicketHandler struct {
	Tickets  *repository.TicketRepo
	Trips    *repository.TripRepo
	Bookings *service.BookingService
}

func NewTicketHandler(tickets *repository.TicketRepo, trips *repository.TripRepo, bookings *service.BookingService) *TicketHandler {
	return &TicketHandler{Tickets: tickets, Trips: trips, Bookings: bookings}
}

// MyTickets lists every ticket of the authenticated customer, newest first.
// Legacy rows referenced by KH code are included alongside id-referenced
// ones.
func (h *TicketHandler) MyTickets(c echo.Context) error {
	customerID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListByCustomer(ctx, customerCodeFrom(c), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tickets failed"})
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets, "total": len(tickets)})
}

// TripHistory lists the customer's paid and completed journeys with trip
// details attached. Pending and cancelled tickets are not history.
func (h *TicketHandler) TripHistory(c echo.Context) error {
	customerID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListByCustomer(ctx, customerCodeFrom(c), customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tickets failed"})
	}

	type historyEntry struct {
		Ticket model.Ticket `json:"ticket"`
		Trip   *model.Trip  `json:"trip,omitempty"`
	}
	entries := []historyEntry{}
	tripCache := map[string]*model.Trip{}
	for _, t := range tickets {
		if t.Status != model.TicketPaid && t.Status != model.TicketCompleted {
			continue
		}
		trip, seen := tripCache[t.TripCode]
		if !seen {
			trip, err = h.Trips.GetByCode(ctx, t.TripCode)
			if err != nil && !errors.Is(err, repository.ErrTripNotFound) {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load trips failed"})
			}
			tripCache[t.TripCode] = trip
		}
		entries = append(entries, historyEntry{Ticket: t, Trip: trip})
	}
	return c.JSON(http.StatusOK, echo.Map{"history": entries, "total": len(entries)})
}

// Cancel cancels one of the customer's tickets and releases the seat.
func (h *TicketHandler) Cancel(c echo.Context) error {
	customerID, ok := userIDFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := c.Param("code")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	err := h.Bookings.CancelTicket(ctx, code, customerID)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
	case errors.Is(err, repository.ErrCustomerNotFound):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown customer"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
}
