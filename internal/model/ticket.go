package model

import "time"

// TicketStatus is the canonical ticket state. Historical data carried two
// overlapping vocabularies ("tinhTrang" free text and "trangThai" codes);
// NormalizeTicketStatus folds both onto this enum and the repository exposes
// a one-time migration that rewrites legacy rows in place.
type TicketStatus string

const (
	TicketPending   TicketStatus = "pending" // pending payment; still occupies the seat
	TicketPaid      TicketStatus = "paid"
	TicketCompleted TicketStatus = "completed"
	TicketCancelled TicketStatus = "cancelled"
)

// Active reports whether the ticket occupies its seat. Everything except a
// cancelled ticket holds the (trip, seat) slot.
func (s TicketStatus) Active() bool { return s != TicketCancelled && s != "" }

// legacyStatus maps both historical vocabularies onto the canonical enum.
var legacyStatus = map[string]TicketStatus{
	// tinhTrang (display strings)
	"Chờ thanh toán": TicketPending,
	"Đã thanh toán":  TicketPaid,
	"Đã hoàn thành":  TicketCompleted,
	"Đã hủy":         TicketCancelled,
	// trangThai (codes)
	"DaDat":       TicketPending,
	"DaThanhToan": TicketPaid,
	"DaHoanThanh": TicketCompleted,
	"DaHuy":       TicketCancelled,
}

// NormalizeTicketStatus resolves a row's status from the canonical column
// and, when that is empty, the legacy column. Unknown legacy values fall
// back to pending: an unrecognized ticket must keep occupying its seat
// rather than silently freeing it.
func NormalizeTicketStatus(canonical, legacy string) TicketStatus {
	switch TicketStatus(canonical) {
	case TicketPending, TicketPaid, TicketCompleted, TicketCancelled:
		return TicketStatus(canonical)
	}
	if s, ok := legacyStatus[legacy]; ok {
		return s
	}
	return TicketPending
}

// Ticket is one issued ticket: exactly one seat on exactly one trip. The
// pair (TripCode, SeatNumber) is unique among non-cancelled tickets; the
// tickets table enforces it with a unique key on (trip_code, seat_slot)
// where seat_slot is nulled on cancellation.
type Ticket struct {
	ID           uint64       `json:"id"`
	Code         string       `json:"code"`
	TripCode     string       `json:"trip_code"`
	SeatNumber   string       `json:"seat_number"`
	CustomerCode string       `json:"customer_code,omitempty"` // legacy KHxxxx reference
	CustomerID   *uint64      `json:"customer_id,omitempty"`
	FareCode     string       `json:"fare_code,omitempty"`
	BatchCode    string       `json:"batch_code"` // groups tickets of one checkout
	Status       TicketStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}
