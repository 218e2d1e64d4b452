package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xeviet/bus-ticketing/internal/model"
)

// ErrTicketNotFound is returned when a ticket lookup yields no rows.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrSeatTaken signals that a requested (trip, seat) slot is already held by
// a non-cancelled ticket. Use errors.Is against this sentinel; the concrete
// error is a SeatTakenError carrying the seat number for user messages.
var ErrSeatTaken = errors.New("seat already booked")

// SeatTakenError names the conflicting seat of a rejected booking.
type SeatTakenError struct {
	SeatNumber string
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat %s already booked", e.SeatNumber)
}

func (e *SeatTakenError) Is(target error) bool { return target == ErrSeatTaken }

// TicketRepo provides access to the tickets table. The table carries a
// unique key on (trip_code, seat_slot); seat_slot mirrors seat_number while
// the ticket is active and is nulled on cancellation, so the database itself
// rejects a second active ticket for the same seat.
type TicketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// InsertTx inserts one ticket within a caller-owned transaction. A
// duplicate-key violation on the seat slot is mapped to SeatTakenError so
// that two racing bookings cannot both succeed: the unique key, not the
// pre-check, is the final arbiter.
func (r *TicketRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets
		(code, trip_code, seat_number, seat_slot, customer_code, customer_id, fare_code, batch_code, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var customerID any
	if t.CustomerID != nil {
		customerID = *t.CustomerID
	}
	res, err := tx.ExecContext(ctx, q,
		t.Code, t.TripCode, t.SeatNumber, t.SeatNumber,
		t.CustomerCode, customerID, t.FareCode, t.BatchCode, string(t.Status))
	if err != nil {
		if isDuplicateKey(err) {
			return &SeatTakenError{SeatNumber: t.SeatNumber}
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ExistsActive reports whether a non-cancelled ticket occupies the seat.
// The booking transaction runs this pre-check to reject early with a named
// seat; the unique key covers the race it cannot.
func (r *TicketRepo) ExistsActive(ctx context.Context, tripCode, seatNumber string) (bool, error) {
	const q = `SELECT 1 FROM tickets WHERE trip_code = ? AND seat_slot = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, tripCode, seatNumber).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

const ticketCols = `id, code, trip_code, seat_number, customer_code, customer_id,
	fare_code, batch_code, status, legacy_status, created_at`

func collectTickets(rows *sql.Rows) ([]model.Ticket, error) {
	defer rows.Close()
	var result []model.Ticket
	for rows.Next() {
		var (
			t            model.Ticket
			custCode     sql.NullString
			custID       sql.NullInt64
			fareCode     sql.NullString
			status       sql.NullString
			legacyStatus sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Code, &t.TripCode, &t.SeatNumber,
			&custCode, &custID, &fareCode, &t.BatchCode, &status, &legacyStatus, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.CustomerCode = custCode.String
		if custID.Valid {
			id := uint64(custID.Int64)
			t.CustomerID = &id
		}
		t.FareCode = fareCode.String
		t.Status = model.NormalizeTicketStatus(status.String, legacyStatus.String)
		result = append(result, t)
	}
	return result, rows.Err()
}

// ListActiveByTrip returns every non-cancelled ticket on a trip. Rows whose
// status never went through the migration are normalized on the way out.
func (r *TicketRepo) ListActiveByTrip(ctx context.Context, tripCode string) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE trip_code = ? AND seat_slot IS NOT NULL`
	rows, err := r.db.QueryContext(ctx, q, tripCode)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// ListActiveByTrips returns non-cancelled tickets across several trips.
func (r *TicketRepo) ListActiveByTrips(ctx context.Context, tripCodes []string) ([]model.Ticket, error) {
	if len(tripCodes) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tripCodes)), ",")
	q := `SELECT ` + ticketCols + ` FROM tickets WHERE trip_code IN (` + placeholders + `) AND seat_slot IS NOT NULL`
	args := make([]any, len(tripCodes))
	for i, c := range tripCodes {
		args[i] = c
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// CountActiveByTrip returns the number of occupied seats on a trip.
func (r *TicketRepo) CountActiveByTrip(ctx context.Context, tripCode string) (int, error) {
	const q = `SELECT COUNT(*) FROM tickets WHERE trip_code = ? AND seat_slot IS NOT NULL`
	var n int
	err := r.db.QueryRowContext(ctx, q, tripCode).Scan(&n)
	return n, err
}

// ListByCustomer returns all tickets belonging to a customer, newest first.
// Legacy rows reference the customer by KH code, newer rows by numeric id;
// both schemes are matched until BackfillCustomerIDs has rewritten the old
// rows.
func (r *TicketRepo) ListByCustomer(ctx context.Context, customerCode string, customerID uint64) ([]model.Ticket, error) {
	q := `SELECT ` + ticketCols + ` FROM tickets WHERE customer_id = ?`
	args := []any{customerID}
	if customerCode != "" {
		q = `SELECT ` + ticketCols + ` FROM tickets WHERE customer_id = ? OR customer_code = ?`
		args = append(args, customerCode)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// GetByCodeForCustomer fetches one ticket and enforces ownership through
// either customer-reference scheme. Returns ErrForbidden when the ticket
// belongs to someone else.
func (r *TicketRepo) GetByCodeForCustomer(ctx context.Context, code, customerCode string, customerID uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketCols + ` FROM tickets WHERE code = ?`
	rows, err := r.db.QueryContext(ctx, q, code)
	if err != nil {
		return nil, err
	}
	tickets, err := collectTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrTicketNotFound
	}
	t := tickets[0]
	owned := (t.CustomerID != nil && *t.CustomerID == customerID) ||
		(customerCode != "" && t.CustomerCode == customerCode)
	if !owned {
		return nil, ErrForbidden
	}
	return &t, nil
}

// CancelTx marks a ticket cancelled and releases its seat slot inside a
// caller-owned transaction. The freed slot immediately re-admits bookings.
func (r *TicketRepo) CancelTx(ctx context.Context, tx *sql.Tx, code string) error {
	const q = `UPDATE tickets SET status = ?, legacy_status = NULL, seat_slot = NULL WHERE code = ?`
	res, err := tx.ExecContext(ctx, q, string(model.TicketCancelled), code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// NormalizeLegacyStatuses rewrites rows that still carry only a legacy
// status vocabulary onto the canonical enum, then clears the seat slot of
// anything that normalized to cancelled. One-time migration; safe to rerun.
func (r *TicketRepo) NormalizeLegacyStatuses(ctx context.Context) (int64, error) {
	const q = `UPDATE tickets SET status = CASE legacy_status
			WHEN 'Chờ thanh toán' THEN 'pending'
			WHEN 'DaDat'          THEN 'pending'
			WHEN 'Đã thanh toán'  THEN 'paid'
			WHEN 'DaThanhToan'    THEN 'paid'
			WHEN 'Đã hoàn thành'  THEN 'completed'
			WHEN 'DaHoanThanh'    THEN 'completed'
			WHEN 'Đã hủy'         THEN 'cancelled'
			WHEN 'DaHuy'          THEN 'cancelled'
			ELSE 'pending' END
		WHERE (status IS NULL OR status = '') AND legacy_status IS NOT NULL`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	const clearSlots = `UPDATE tickets SET seat_slot = NULL WHERE status = 'cancelled' AND seat_slot IS NOT NULL`
	if _, err := r.db.ExecContext(ctx, clearSlots); err != nil {
		return n, err
	}
	return n, nil
}

// BackfillCustomerIDs resolves legacy KH-code references to numeric
// customer ids. One-time migration; safe to rerun.
func (r *TicketRepo) BackfillCustomerIDs(ctx context.Context) (int64, error) {
	const q = `UPDATE tickets t
		JOIN customers c ON c.code = t.customer_code
		SET t.customer_id = c.id
		WHERE t.customer_id IS NULL AND t.customer_code IS NOT NULL AND t.customer_code <> ''`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
