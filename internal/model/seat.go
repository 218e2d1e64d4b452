package model

import (
	"fmt"
	"time"
)

// SeatStatus is the stored occupancy state of a seat row.
type SeatStatus string

const (
	SeatFree      SeatStatus = "free"
	SeatSold      SeatStatus = "sold"
	SeatHeld      SeatStatus = "held"
	SeatCancelled SeatStatus = "cancelled"
)

// Seat is one concrete seat on one trip. Rows are materialized once per trip
// by the provisioner and never deleted except through trip deletion.
type Seat struct {
	ID          uint64     `json:"id"`
	Key         string     `json:"key"` // SEAT_{tripCode}_{number}
	TripCode    string     `json:"trip_code"`
	Number      string     `json:"number"` // e.g. "A01"
	Class       string     `json:"class"`
	Status      SeatStatus `json:"status"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SeatKey builds the deterministic seat identifier for a trip/number pair.
func SeatKey(tripCode, number string) string {
	return fmt.Sprintf("SEAT_%s_%s", tripCode, number)
}
