package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/repository"
)

// Seat display vocabulary. The projector collapses ticket states into the
// three occupied values the seat map renders; a seat with no active ticket
// is available.
const (
	SeatViewAvailable   = "available"
	SeatViewSold        = "sold"
	SeatViewHeld        = "held"
	SeatViewMaintenance = "maintenance"
)

// SeatView is one seat's derived occupancy as shown on the seat map.
type SeatView struct {
	Status        string             `json:"status"`
	SeatClass     string             `json:"seat_class,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	TicketCode    string             `json:"ticket_code,omitempty"`
	TicketStatus  model.TicketStatus `json:"ticket_status,omitempty"`
	BookedAt      *time.Time         `json:"booked_at,omitempty"`
}

// SeatProjector derives per-seat occupancy by merging seat rows with the
// active tickets of a trip. Seat rows are the inventory; tickets are the
// truth about occupancy.
type SeatProjector struct {
	Seats     *repository.SeatRepo
	Tickets   *repository.TicketRepo
	Customers *repository.CustomerRepo
	Trips     *repository.TripRepo
}

func NewSeatProjector(seats *repository.SeatRepo, tickets *repository.TicketRepo, customers *repository.CustomerRepo, trips *repository.TripRepo) *SeatProjector {
	return &SeatProjector{Seats: seats, Tickets: tickets, Customers: customers, Trips: trips}
}

// ProjectTrip returns the seat map of one trip keyed by seat number.
func (p *SeatProjector) ProjectTrip(ctx context.Context, tripCode string) (map[string]SeatView, error) {
	seats, err := p.Seats.ListByTrip(ctx, tripCode)
	if err != nil {
		return nil, err
	}
	tickets, err := p.Tickets.ListActiveByTrip(ctx, tripCode)
	if err != nil {
		return nil, err
	}
	return p.project(ctx, seats, tickets)
}

// ProjectVehicle aggregates seat occupancy across every trip of a vehicle,
// the staff back-office view. Seat numbers repeat across trips; the last
// projected trip wins for a duplicate number, matching the flat per-vehicle
// grid the admin seat map renders.
func (p *SeatProjector) ProjectVehicle(ctx context.Context, vehicleCode string) (map[string]SeatView, int, error) {
	tripCodes, err := p.Trips.CodesByVehicle(ctx, vehicleCode)
	if err != nil {
		return nil, 0, err
	}
	if len(tripCodes) == 0 {
		return map[string]SeatView{}, 0, nil
	}
	seats, err := p.Seats.ListByTrips(ctx, tripCodes)
	if err != nil {
		return nil, 0, err
	}
	tickets, err := p.Tickets.ListActiveByTrips(ctx, tripCodes)
	if err != nil {
		return nil, 0, err
	}
	views, err := p.project(ctx, seats, tickets)
	if err != nil {
		return nil, 0, err
	}
	return views, len(tripCodes), nil
}

func (p *SeatProjector) project(ctx context.Context, seats []model.Seat, tickets []model.Ticket) (map[string]SeatView, error) {
	// Index tickets by seat number within their trip so that identically
	// numbered seats on different trips cannot shadow each other.
	bySeat := make(map[string]model.Ticket, len(tickets))
	var codes []string
	var ids []uint64
	for _, t := range tickets {
		bySeat[t.TripCode+"/"+t.SeatNumber] = t
		if t.CustomerCode != "" {
			codes = append(codes, t.CustomerCode)
		} else if t.CustomerID != nil {
			ids = append(ids, *t.CustomerID)
		}
	}

	// Occupants: legacy KH code first, then the numeric id. Both lookups
	// are batched.
	byCode, err := p.Customers.GetManyByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	byID, err := p.Customers.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make(map[string]SeatView, len(seats))
	for _, s := range seats {
		view := SeatView{Status: SeatViewAvailable, SeatClass: s.Class}

		ticket, matched := matchTicket(bySeat, s.TripCode, s.Number)
		switch {
		case matched:
			view.Status = displayStatus(ticket.Status)
			view.TicketCode = ticket.Code
			view.TicketStatus = ticket.Status
			booked := ticket.CreatedAt
			view.BookedAt = &booked

			var cust model.Customer
			var ok bool
			if ticket.CustomerCode != "" {
				cust, ok = byCode[ticket.CustomerCode]
			}
			if !ok && ticket.CustomerID != nil {
				cust, ok = byID[*ticket.CustomerID]
			}
			if ok {
				view.CustomerName = cust.Name
				view.CustomerPhone = cust.Phone
			}
		case s.Status == model.SeatCancelled:
			// Seat row itself withdrawn from service.
			view.Status = SeatViewMaintenance
		}
		views[s.Number] = view
	}
	return views, nil
}

// matchTicket probes candidate spellings of a seat number before declaring
// the seat empty. Generated seats are canonical ("A01") but externally
// seeded ticket data has been seen zero-padded, bare and letter-banded; the
// probe is a migration shim, not an invariant.
func matchTicket(bySeat map[string]model.Ticket, tripCode, number string) (model.Ticket, bool) {
	for _, cand := range candidateNumbers(number) {
		if t, ok := bySeat[tripCode+"/"+cand]; ok {
			return t, true
		}
	}
	return model.Ticket{}, false
}

// candidateNumbers lists equivalent spellings of a seat number: the number
// itself, the prefix with and without zero padding, and the bare numeric
// part both ways.
func candidateNumbers(number string) []string {
	cands := []string{number}
	seen := map[string]bool{number: true}
	i := 0
	for i < len(number) && (number[i] < '0' || number[i] > '9') {
		i++
	}
	prefix, digits := number[:i], number[i:]
	n, err := strconv.Atoi(digits)
	if err != nil {
		return cands
	}
	for _, alt := range []string{
		fmt.Sprintf("%s%02d", prefix, n),
		fmt.Sprintf("%s%d", prefix, n),
		fmt.Sprintf("%02d", n),
		strconv.Itoa(n),
	} {
		if !seen[alt] {
			seen[alt] = true
			cands = append(cands, alt)
		}
	}
	return cands
}

// displayStatus collapses a canonical ticket status into the seat-map
// vocabulary: pending payment holds the seat, anything paid or later shows
// as sold. Cancelled tickets never reach the projector (they are filtered
// as inactive), so the default arm is unreachable in practice.
func displayStatus(s model.TicketStatus) string {
	switch s {
	case model.TicketPending:
		return SeatViewHeld
	case model.TicketPaid, model.TicketCompleted:
		return SeatViewSold
	default:
		return SeatViewAvailable
	}
}

// AvailableSeats computes how many seats of a trip remain bookable. Never
// negative, even when seeded data carries more tickets than seats.
func AvailableSeats(totalSeats, activeTickets int) int {
	if activeTickets >= totalSeats {
		return 0
	}
	return totalSeats - activeTickets
}
