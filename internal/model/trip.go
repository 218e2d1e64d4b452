package model

import "time"

// TripStatus is the lifecycle state of a scheduled trip.
type TripStatus string

const (
	TripUpcoming  TripStatus = "upcoming"
	TripRunning   TripStatus = "running"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

// Trip is one scheduled departure of a vehicle on a route. Seats are keyed
// by the trip code, never by the vehicle: two trips of the same bus have
// independent occupancy.
type Trip struct {
	ID           uint64     `json:"id"`
	Code         string     `json:"code"`
	VehicleCode  string     `json:"vehicle_code"`
	RouteCode    *string    `json:"route_code,omitempty"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	DepartDate   time.Time  `json:"depart_date"`
	DepartTime   string     `json:"depart_time"` // "HH:MM"
	Status       TripStatus `json:"status"`
	Stops        []string   `json:"stops,omitempty"`
	DriverName   string     `json:"driver_name,omitempty"`
	CoDriverName string     `json:"codriver_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// EffectiveStatus applies the read-side date rule: a trip dated today shows
// as running, a future trip as upcoming. Completed and cancelled trips keep
// their stored status. The rule is never enforced on write.
func (t Trip) EffectiveStatus(now time.Time) TripStatus {
	if t.Status == TripCompleted || t.Status == TripCancelled {
		return t.Status
	}
	today := now.UTC().Truncate(24 * time.Hour)
	day := t.DepartDate.UTC().Truncate(24 * time.Hour)
	switch {
	case day.Equal(today):
		return TripRunning
	case day.After(today):
		return TripUpcoming
	default:
		return t.Status
	}
}
