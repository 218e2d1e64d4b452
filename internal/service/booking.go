package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/queue"
	"github.com/xeviet/bus-ticketing/internal/repository"
)

// MaxSeatsPerBooking caps how many seats one checkout may claim.
const MaxSeatsPerBooking = 5

var (
	ErrNoSeatsSelected = errors.New("no seats selected")
	ErrTooManySeats    = errors.New("too many seats in one booking")
)

// BookingResult reports a committed booking: the batch code shared by all
// tickets of the checkout and the individual ticket codes, in seat order.
type BookingResult struct {
	BatchCode   string   `json:"batch_code"`
	TicketCodes []string `json:"ticket_codes"`
	TotalVND    uint32   `json:"total_vnd"`
}

// PublishFunc pushes a ticket event to the broker. Injected so tests can
// capture events without a running broker.
type PublishFunc func(ctx context.Context, ev queue.TicketIssuedEvent) error

// BookingService runs the booking transaction: all requested seats of one
// checkout are claimed atomically or none are. The tickets table's unique
// seat-slot key backs the atomicity; the service's pre-checks only exist to
// fail early with a named seat.
type BookingService struct {
	DB        *sql.DB
	Trips     *repository.TripRepo
	Vehicles  *repository.VehicleRepo
	Customers *repository.CustomerRepo
	Tickets   *repository.TicketRepo
	Seats     *repository.SeatRepo
	Fares     *repository.FareRepo
	Publish   PublishFunc
}

func NewBookingService(db *sql.DB, trips *repository.TripRepo, vehicles *repository.VehicleRepo,
	customers *repository.CustomerRepo, tickets *repository.TicketRepo, seats *repository.SeatRepo,
	fares *repository.FareRepo, publish PublishFunc) *BookingService {
	if publish == nil {
		publish = queue.PublishTicketIssued
	}
	return &BookingService{DB: db, Trips: trips, Vehicles: vehicles, Customers: customers,
		Tickets: tickets, Seats: seats, Fares: fares, Publish: publish}
}

// BookSeats books the given seats on a trip for a customer. Validation order
// is fixed: seat count, customer, trip, then per-seat availability. The
// insert itself runs in one SQL transaction; a duplicate-key rejection from
// any seat rolls the whole batch back and surfaces as SeatTakenError naming
// the losing seat.
func (s *BookingService) BookSeats(ctx context.Context, tripCode string, customerID uint64, seatNumbers []string) (*BookingResult, error) {
	if len(seatNumbers) == 0 {
		return nil, ErrNoSeatsSelected
	}
	if len(seatNumbers) > MaxSeatsPerBooking {
		return nil, ErrTooManySeats
	}

	cust, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	trip, err := s.Trips.GetByCode(ctx, tripCode)
	if err != nil {
		return nil, err
	}

	// Early rejection with a named seat. Races slipping past this check are
	// caught by the unique key inside the transaction.
	for _, num := range seatNumbers {
		taken, err := s.Tickets.ExistsActive(ctx, tripCode, num)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &repository.SeatTakenError{SeatNumber: num}
		}
	}

	fareCode := ""
	var seatPrice uint32
	if vehicle, err := s.Vehicles.GetByCode(ctx, trip.VehicleCode); err == nil {
		routeCode := ""
		if trip.RouteCode != nil {
			routeCode = *trip.RouteCode
		}
		fare, err := s.Fares.Resolve(ctx, routeCode, vehicle.TypeCode)
		switch {
		case err == nil:
			fareCode = fare.Code
			seatPrice = fare.AmountVND
		case errors.Is(err, repository.ErrFareNotFound):
			// Tickets without a priced fare are still issued; billing is
			// settled at the counter.
		default:
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrVehicleNotFound) {
		return nil, err
	}

	batchCode := "DV-" + uuid.NewString()
	ticketCodes := make([]string, 0, len(seatNumbers))

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, num := range seatNumbers {
		t := &model.Ticket{
			Code:         "VX-" + uuid.NewString(),
			TripCode:     tripCode,
			SeatNumber:   num,
			CustomerCode: cust.Code,
			CustomerID:   &cust.ID,
			FareCode:     fareCode,
			BatchCode:    batchCode,
			Status:       model.TicketPending,
		}
		if err := s.Tickets.InsertTx(ctx, tx, t); err != nil {
			return nil, err
		}
		ticketCodes = append(ticketCodes, t.Code)
	}

	if err := s.Seats.BulkUpdateStatusTx(ctx, tx, tripCode, seatNumbers, model.SeatHeld); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	total := seatPrice * uint32(len(seatNumbers))

	// Broker failures are logged inside the publisher; the booking has
	// already committed and must not be failed retroactively.
	_ = s.Publish(ctx, queue.TicketIssuedEvent{
		BatchCode:      batchCode,
		TicketCodes:    ticketCodes,
		TripCode:       trip.Code,
		Origin:         trip.Origin,
		Destination:    trip.Destination,
		DepartDate:     trip.DepartDate.Format("2006-01-02"),
		DepartTime:     trip.DepartTime,
		SeatNumbers:    seatNumbers,
		CustomerCode:   cust.Code,
		CustomerName:   cust.Name,
		TotalAmountVND: total,
		IssuedAt:       time.Now().UTC().Format(time.RFC3339),
	})

	return &BookingResult{BatchCode: batchCode, TicketCodes: ticketCodes, TotalVND: total}, nil
}

// CancelTicket cancels one ticket owned by the customer and releases its
// seat. Cancelling an already-cancelled ticket is a no-op error surfaced as
// ErrTicketNotFound by the update's zero row count.
func (s *BookingService) CancelTicket(ctx context.Context, ticketCode string, customerID uint64) error {
	cust, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	t, err := s.Tickets.GetByCodeForCustomer(ctx, ticketCode, cust.Code, cust.ID)
	if err != nil {
		return err
	}
	if !t.Status.Active() {
		return repository.ErrTicketNotFound
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.Tickets.CancelTx(ctx, tx, ticketCode); err != nil {
		return err
	}
	if err := s.Seats.BulkUpdateStatusTx(ctx, tx, t.TripCode, []string{t.SeatNumber}, model.SeatFree); err != nil {
		// Seat rows are advisory; occupancy truth lives in tickets. Still
		// roll back so the map does not drift from the ticket state.
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	log.Printf("ticket %s cancelled by customer %d, seat %s released", ticketCode, customerID, t.SeatNumber)
	return nil
}
