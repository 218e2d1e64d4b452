// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketIssuedEvent is published after a booking transaction commits. It
// carries enough for downstream consumers to log, notify, or feed analytics
// without querying the primary database.
type TicketIssuedEvent struct {
	BatchCode      string   `json:"batch_code"`
	TicketCodes    []string `json:"ticket_codes"`
	TripCode       string   `json:"trip_code"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DepartDate     string   `json:"depart_date"`
	DepartTime     string   `json:"depart_time"`
	SeatNumbers    []string `json:"seats"`
	CustomerCode   string   `json:"customer_code"`
	CustomerName   string   `json:"customer_name"`
	TotalAmountVND uint32   `json:"total_amount_vnd"`
	IssuedAt       string   `json:"issued_at"`
}
