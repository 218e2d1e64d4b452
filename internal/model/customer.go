package model

import "time"

// Customer is a storefront account. Code is the legacy human-readable
// reference (KH0001, KH0002, ...) still present on old ticket rows; new
// tickets reference the numeric ID. Both must be checked when collecting a
// customer's tickets until the backfill migration has run.
type Customer struct {
	ID           uint64    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account is a staff/admin login for the back office.
type Account struct {
	ID           uint64 `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // ADMIN | STAFF
}
