// Package service holds the seat inventory and booking core: layout
// resolution, seat provisioning, seat-status projection and the booking
// transaction. Handlers stay thin and delegate here.
package service

import "strings"

// SeatLayout describes how many seats a vehicle class carries and how they
// are numbered.
type SeatLayout struct {
	Count  int    // number of seats
	Prefix string // seat-number prefix, e.g. "V" -> V01..V28
	Class  string // display class label
	Plan   string // aisle layout descriptor, "2+1" or "2+2"
}

// ResolveSeatLayout maps a free-text vehicle type code onto a seat layout.
// Matching is a case-insensitive substring check, first match wins, in this
// order; unknown codes fall through to the 40-seat standard layout.
func ResolveSeatLayout(typeCode string) SeatLayout {
	tc := strings.ToUpper(typeCode)
	switch {
	case strings.Contains(tc, "LIMOUSINE"):
		return SeatLayout{Count: 22, Prefix: "L", Class: "Limousine", Plan: "2+1"}
	case strings.Contains(tc, "GIUONG") || strings.Contains(tc, "SLEEPER"):
		return SeatLayout{Count: 36, Prefix: "G", Class: "Sleeper", Plan: "2+1"}
	case strings.Contains(tc, "VIP"):
		return SeatLayout{Count: 28, Prefix: "V", Class: "VIP", Plan: "2+2"}
	default:
		return SeatLayout{Count: 40, Prefix: "A", Class: "Standard", Plan: "2+2"}
	}
}
