package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeviet/bus-ticketing/internal/model"
	"github.com/xeviet/bus-ticketing/internal/utils"
)

// ErrCustomerNotFound is returned when a customer lookup yields no rows.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrCustomerExists is returned when the email or phone is already taken.
var ErrCustomerExists = errors.New("email or phone already registered")

// CustomerRepo provides access to the customers table.
type CustomerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `id, code, name, phone, email, address, password_hash, created_at`

func scanCustomer(row *sql.Row) (*model.Customer, error) {
	var (
		c       model.Customer
		address sql.NullString
	)
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.Email, &address, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	c.Address = address.String
	return &c, nil
}

// GetByID fetches a customer by numeric id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	const q = `SELECT ` + customerCols + ` FROM customers WHERE id = ?`
	return scanCustomer(r.db.QueryRowContext(ctx, q, id))
}

// GetByLogin fetches a customer by email or phone number; customers may
// sign in with either.
func (r *CustomerRepo) GetByLogin(ctx context.Context, login string) (*model.Customer, error) {
	const q = `SELECT ` + customerCols + ` FROM customers WHERE email = ? OR phone = ?`
	return scanCustomer(r.db.QueryRowContext(ctx, q, login, login))
}

// Create registers a customer: allocates the next KH code, hashes the
// password and inserts the row. Duplicate email/phone surfaces as
// ErrCustomerExists via the unique keys rather than a racy pre-check.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer, password string, bcryptCost int) error {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}
	code, err := r.nextCode(ctx)
	if err != nil {
		return err
	}
	const q = `INSERT INTO customers (code, name, phone, email, address, password_hash) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, code, c.Name, c.Phone, strings.ToLower(strings.TrimSpace(c.Email)), c.Address, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCustomerExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.Code = code
	c.PasswordHash = hash
	return nil
}

// nextCode allocates the next KHnnnn code by scanning the current maximum.
// The code is a display reference only; the unique key on the column turns
// an allocation race into a retryable insert error instead of a duplicate.
func (r *CustomerRepo) nextCode(ctx context.Context) (string, error) {
	const q = `SELECT code FROM customers ORDER BY code DESC LIMIT 1`
	var last string
	err := r.db.QueryRowContext(ctx, q).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return "KH0001", nil
	}
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, "KH"))
	if err != nil {
		return "", fmt.Errorf("malformed customer code %q: %w", last, err)
	}
	return fmt.Sprintf("KH%04d", n+1), nil
}

// UpdateProfile rewrites the mutable contact fields.
func (r *CustomerRepo) UpdateProfile(ctx context.Context, id uint64, name, phone, address string) error {
	const q = `UPDATE customers SET name = ?, phone = ?, address = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, phone, address, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCustomerExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// GetManyByCodes loads customers for a set of legacy codes, keyed by code.
// Used by the seat projector to resolve occupants in one round trip.
func (r *CustomerRepo) GetManyByCodes(ctx context.Context, codes []string) (map[string]model.Customer, error) {
	if len(codes) == 0 {
		return map[string]model.Customer{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(codes)), ",")
	q := `SELECT ` + customerCols + ` FROM customers WHERE code IN (` + placeholders + `)`
	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]model.Customer, len(codes))
	for rows.Next() {
		var (
			c       model.Customer
			address sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.Email, &address, &c.PasswordHash, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Address = address.String
		result[c.Code] = c
	}
	return result, rows.Err()
}

// GetManyByIDs loads customers for a set of numeric ids, keyed by id.
func (r *CustomerRepo) GetManyByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Customer, error) {
	if len(ids) == 0 {
		return map[uint64]model.Customer{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := `SELECT ` + customerCols + ` FROM customers WHERE id IN (` + placeholders + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uint64]model.Customer, len(ids))
	for rows.Next() {
		var (
			c       model.Customer
			address sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.Email, &address, &c.PasswordHash, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Address = address.String
		result[c.ID] = c
	}
	return result, rows.Err()
}
