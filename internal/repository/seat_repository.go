package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/xeviet/bus-ticketing/internal/model"
)

// SeatRepo provides access to the seats table. Seats belong to a trip
// instance, not to the physical vehicle.
type SeatRepo struct {
	db *sql.DB
}

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CountByTrip returns the number of seat rows already materialized for a
// trip. The provisioner uses this as its idempotence guard.
func (r *SeatRepo) CountByTrip(ctx context.Context, tripCode string) (int, error) {
	const q = `SELECT COUNT(*) FROM seats WHERE trip_code = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, tripCode).Scan(&n)
	return n, err
}

// CreateBulk inserts all seats of a trip in a single statement and returns
// the number of rows inserted.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) (int, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	q := `INSERT INTO seats (seat_key, trip_code, seat_number, seat_class, status, description) VALUES `
	args := make([]any, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?, ?, ?)"
		args = append(args, s.Key, s.TripCode, s.Number, s.Class, string(s.Status), s.Description)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(seats), nil
	}
	return int(n), nil
}

const seatCols = `id, seat_key, trip_code, seat_number, seat_class, status, description, created_at`

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	var result []model.Seat
	for rows.Next() {
		var (
			s      model.Seat
			status string
			desc   sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Key, &s.TripCode, &s.Number, &s.Class, &status, &desc, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Status = model.SeatStatus(status)
		s.Description = desc.String
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListByTrip returns all seats of a trip ordered by seat number.
func (r *SeatRepo) ListByTrip(ctx context.Context, tripCode string) ([]model.Seat, error) {
	const q = `SELECT ` + seatCols + ` FROM seats WHERE trip_code = ? ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, tripCode)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// ListByTrips returns the seats of several trips in one query.
func (r *SeatRepo) ListByTrips(ctx context.Context, tripCodes []string) ([]model.Seat, error) {
	if len(tripCodes) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tripCodes)), ",")
	q := `SELECT ` + seatCols + ` FROM seats WHERE trip_code IN (` + placeholders + `) ORDER BY trip_code, seat_number`
	args := make([]any, len(tripCodes))
	for i, c := range tripCodes {
		args[i] = c
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// BulkUpdateStatusTx sets the status of the given seat numbers on one trip
// within a caller-owned transaction.
func (r *SeatRepo) BulkUpdateStatusTx(ctx context.Context, tx *sql.Tx, tripCode string, numbers []string, status model.SeatStatus) error {
	if len(numbers) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(numbers)), ",")
	q := `UPDATE seats SET status = ? WHERE trip_code = ? AND seat_number IN (` + placeholders + `)`
	args := make([]any, 0, len(numbers)+2)
	args = append(args, string(status), tripCode)
	for _, n := range numbers {
		args = append(args, n)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}
