package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xeviet/bus-ticketing/internal/model"
)

// ErrRouteNotFound is returned when a route lookup yields no rows.
var ErrRouteNotFound = errors.New("route not found")

// RouteRepo provides access to the routes table.
type RouteRepo struct {
	db *sql.DB
}

func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

const routeCols = `id, code, name, origin, destination, distance_km, status`

// List returns all routes ordered by name.
func (r *RouteRepo) List(ctx context.Context) ([]model.Route, error) {
	const q = `SELECT ` + routeCols + ` FROM routes ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Route
	for rows.Next() {
		var rt model.Route
		if err := rows.Scan(&rt.ID, &rt.Code, &rt.Name, &rt.Origin, &rt.Destination, &rt.DistanceKM, &rt.Status); err != nil {
			return nil, err
		}
		result = append(result, rt)
	}
	return result, rows.Err()
}

// GetByCode fetches a route by its business code.
func (r *RouteRepo) GetByCode(ctx context.Context, code string) (*model.Route, error) {
	const q = `SELECT ` + routeCols + ` FROM routes WHERE code = ?`
	var rt model.Route
	err := r.db.QueryRowContext(ctx, q, code).
		Scan(&rt.ID, &rt.Code, &rt.Name, &rt.Origin, &rt.Destination, &rt.DistanceKM, &rt.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// Create inserts a route. Duplicate codes surface as ErrConflict.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	const q = `INSERT INTO routes (code, name, origin, destination, distance_km, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rt.Code, rt.Name, rt.Origin, rt.Destination, rt.DistanceKM, rt.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}
