package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/xeviet/bus-ticketing/internal/model"
)

// ErrTripNotFound is returned when a trip lookup yields no rows.
var ErrTripNotFound = errors.New("trip not found")

// ErrTripCodeExists is returned when creating a trip whose code is taken.
var ErrTripCodeExists = errors.New("trip code already exists")

// TripRepo provides access to the trips table.
type TripRepo struct {
	db *sql.DB
}

func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

const tripCols = `id, code, vehicle_code, route_code, origin, destination,
	depart_date, depart_time, status, stops, driver_name, codriver_name, created_at`

func scanTripRow(scan func(dest ...any) error) (*model.Trip, error) {
	var (
		t         model.Trip
		routeCode sql.NullString
		stops     sql.NullString
		driver    sql.NullString
		codriver  sql.NullString
		status    string
	)
	err := scan(&t.ID, &t.Code, &t.VehicleCode, &routeCode, &t.Origin, &t.Destination,
		&t.DepartDate, &t.DepartTime, &status, &stops, &driver, &codriver, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = model.TripStatus(status)
	if routeCode.Valid {
		rc := routeCode.String
		t.RouteCode = &rc
	}
	if stops.Valid && strings.TrimSpace(stops.String) != "" {
		for _, s := range strings.Split(stops.String, ",") {
			if s = strings.TrimSpace(s); s != "" {
				t.Stops = append(t.Stops, s)
			}
		}
	}
	t.DriverName = driver.String
	t.CoDriverName = codriver.String
	return &t, nil
}

// GetByCode fetches a trip by its business code.
func (r *TripRepo) GetByCode(ctx context.Context, code string) (*model.Trip, error) {
	const q = `SELECT ` + tripCols + ` FROM trips WHERE code = ?`
	row := r.db.QueryRowContext(ctx, q, code)
	t, err := scanTripRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts a new trip. Stops are stored as a comma-joined list.
func (r *TripRepo) Create(ctx context.Context, t *model.Trip) error {
	const q = `INSERT INTO trips
		(code, vehicle_code, route_code, origin, destination, depart_date, depart_time,
		 status, stops, driver_name, codriver_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var routeCode any
	if t.RouteCode != nil {
		routeCode = *t.RouteCode
	}
	res, err := r.db.ExecContext(ctx, q,
		t.Code, t.VehicleCode, routeCode, t.Origin, t.Destination,
		t.DepartDate.Format("2006-01-02"), t.DepartTime,
		string(t.Status), strings.Join(t.Stops, ","), t.DriverName, t.CoDriverName)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTripCodeExists
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

// TripFilter narrows List. Zero values mean "no constraint".
type TripFilter struct {
	Search   string // matches code, origin, destination, driver names
	Status   model.TripStatus
	Origin   string
	Dest     string
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
	Offset   int
}

// List returns trips matching the filter, newest departure first.
func (r *TripRepo) List(ctx context.Context, f TripFilter) ([]model.Trip, error) {
	q := `SELECT ` + tripCols + ` FROM trips`
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, `(code LIKE ? OR origin LIKE ? OR destination LIKE ? OR driver_name LIKE ? OR codriver_name LIKE ?)`)
		args = append(args, like, like, like, like, like)
	}
	if f.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(f.Status))
	}
	if f.Origin != "" {
		conds = append(conds, `origin = ?`)
		args = append(args, f.Origin)
	}
	if f.Dest != "" {
		conds = append(conds, `destination = ?`)
		args = append(args, f.Dest)
	}
	if !f.DateFrom.IsZero() {
		conds = append(conds, `depart_date >= ?`)
		args = append(args, f.DateFrom.Format("2006-01-02"))
	}
	if !f.DateTo.IsZero() {
		conds = append(conds, `depart_date <= ?`)
		args = append(args, f.DateTo.Format("2006-01-02"))
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY depart_date DESC, depart_time DESC`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Trip
	for rows.Next() {
		t, err := scanTripRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// CodesByVehicle returns the codes of every trip scheduled for a vehicle.
// The staff seat-data view aggregates seats and tickets across these.
func (r *TripRepo) CodesByVehicle(ctx context.Context, vehicleCode string) ([]string, error) {
	const q = `SELECT code FROM trips WHERE vehicle_code = ? ORDER BY depart_date DESC`
	rows, err := r.db.QueryContext(ctx, q, vehicleCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}
