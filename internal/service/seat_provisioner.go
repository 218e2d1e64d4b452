package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/repository"
)

// SeatProvisioner materializes the concrete seat rows of a newly created
// trip from the vehicle's resolved layout.
type SeatProvisioner struct {
	Seats    *repository.SeatRepo
	Vehicles *repository.VehicleRepo
}

func NewSeatProvisioner(seats *repository.SeatRepo, vehicles *repository.VehicleRepo) *SeatProvisioner {
	return &SeatProvisioner{Seats: seats, Vehicles: vehicles}
}

// Provision creates the seats of a trip and returns how many seats the trip
// has afterwards. It is idempotent: when seats already exist the existing
// count is returned untouched, so a retried trip-creation call cannot
// duplicate the inventory. A zero return means no seats were created —
// missing vehicle or insert failure — and the caller should warn the user;
// the trip row itself is deliberately not rolled back.
func (p *SeatProvisioner) Provision(ctx context.Context, tripCode, vehicleCode string) int {
	existing, err := p.Seats.CountByTrip(ctx, tripCode)
	if err != nil {
		log.Printf("seat-provision: count seats for trip %s: %v", tripCode, err)
		return 0
	}
	if existing > 0 {
		return existing
	}

	vehicle, err := p.Vehicles.GetByCode(ctx, vehicleCode)
	if err != nil {
		if !errors.Is(err, repository.ErrVehicleNotFound) {
			log.Printf("seat-provision: load vehicle %s: %v", vehicleCode, err)
		}
		return 0
	}

	layout := ResolveSeatLayout(vehicle.TypeCode)
	seats := make([]model.Seat, 0, layout.Count)
	for i := 1; i <= layout.Count; i++ {
		number := fmt.Sprintf("%s%02d", layout.Prefix, i)
		seats = append(seats, model.Seat{
			Key:         model.SeatKey(tripCode, number),
			TripCode:    tripCode,
			Number:      number,
			Class:       layout.Class,
			Status:      model.SeatFree,
			Description: fmt.Sprintf("Seat %s - %s - trip %s", number, layout.Class, tripCode),
		})
	}

	created, err := p.Seats.CreateBulk(ctx, seats)
	if err != nil {
		log.Printf("seat-provision: bulk insert %d seats for trip %s: %v", len(seats), tripCode, err)
		return 0
	}
	return created
}
