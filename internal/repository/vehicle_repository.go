package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/xeviet/bus-ticketing/internal/model"
)

// ErrVehicleNotFound is returned when a vehicle lookup yields no rows.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleRepo provides access to the vehicles table.
type VehicleRepo struct {
	db *sql.DB
}

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

const vehicleCols = `id, code, name, plate_no, type_code, status`

func scanVehicle(row *sql.Row) (*model.Vehicle, error) {
	var v model.Vehicle
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.PlateNo, &v.TypeCode, &v.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// GetByCode fetches a vehicle by its business code.
func (r *VehicleRepo) GetByCode(ctx context.Context, code string) (*model.Vehicle, error) {
	const q = `SELECT ` + vehicleCols + ` FROM vehicles WHERE code = ?`
	return scanVehicle(r.db.QueryRowContext(ctx, q, code))
}

// List returns all vehicles ordered by code. When activeOnly is set, only
// vehicles whose status marks them operational are returned.
func (r *VehicleRepo) List(ctx context.Context, activeOnly bool) ([]model.Vehicle, error) {
	q := `SELECT ` + vehicleCols + ` FROM vehicles`
	if activeOnly {
		q += ` WHERE status IN ('active', 'ready')`
	}
	q += ` ORDER BY code`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.Code, &v.Name, &v.PlateNo, &v.TypeCode, &v.Status); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// Create inserts a vehicle. Duplicate codes surface as ErrConflict.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	const q = `INSERT INTO vehicles (code, name, plate_no, type_code, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Code, v.Name, v.PlateNo, v.TypeCode, v.Status)
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
	v.ID = uint64(id)
	return nil
}

// Update rewrites the mutable columns of a vehicle identified by code.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	const q = `UPDATE vehicles SET name = ?, plate_no = ?, type_code = ?, status = ? WHERE code = ?`
	res, err := r.db.ExecContext(ctx, q, v.Name, v.PlateNo, v.TypeCode, v.Status, v.Code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-entry error.
// The driver's error text always carries the code, so a substring test keeps
// the repositories free of a direct driver type dependency.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "duplicate entry")
}
