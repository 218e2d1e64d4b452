package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xeviet/bus-ticketing/internal/model"
)

// ErrFareNotFound is returned when no fare matches a lookup.
var ErrFareNotFound = errors.New("fare not found")

// FareRepo provides access to the fares table.
type FareRepo struct {
	db *sql.DB
}

func NewFareRepo(db *sql.DB) *FareRepo { return &FareRepo{db: db} }

const fareCols = `id, code, route_code, vehicle_type, amount_vnd`

func scanFare(row *sql.Row) (*model.Fare, error) {
	var f model.Fare
	err := row.Scan(&f.ID, &f.Code, &f.RouteCode, &f.VehicleType, &f.AmountVND)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFareNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Resolve picks the fare for a route/vehicle-type pair: the exact
// combination first, then the cheapest fare for the vehicle type alone.
func (r *FareRepo) Resolve(ctx context.Context, routeCode, vehicleType string) (*model.Fare, error) {
	if routeCode != "" {
		const q = `SELECT ` + fareCols + ` FROM fares WHERE route_code = ? AND vehicle_type = ? LIMIT 1`
		f, err := scanFare(r.db.QueryRowContext(ctx, q, routeCode, vehicleType))
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, ErrFareNotFound) {
			return nil, err
		}
	}
	const fallback = `SELECT ` + fareCols + ` FROM fares WHERE vehicle_type = ? ORDER BY amount_vnd LIMIT 1`
	return scanFare(r.db.QueryRowContext(ctx, fallback, vehicleType))
}
