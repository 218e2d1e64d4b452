package model

import (
	"testing"
	"time"
)

func TestTripEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		name string
		trip Trip
		want TripStatus
	}{
		{"today runs", Trip{Status: TripUpcoming, DepartDate: day(28)}, TripRunning},
		{"future upcoming", Trip{Status: TripUpcoming, DepartDate: day(30)}, TripUpcoming},
		{"past keeps stored", Trip{Status: TripUpcoming, DepartDate: day(20)}, TripUpcoming},
		{"completed sticks", Trip{Status: TripCompleted, DepartDate: day(28)}, TripCompleted},
		{"cancelled sticks", Trip{Status: TripCancelled, DepartDate: day(30)}, TripCancelled},
	}
	for _, tc := range cases {
		if got := tc.trip.EffectiveStatus(now); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
