package domain

import "time"

// Roles recognized by the storefront. Administrator gates the whole admin
// surface; customers only ever hit the public storefront.
const (
	RoleAdministrator = "administrator"
	RoleCustomer      = "customer"
)

// User is a storefront account. Email is unique.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RefreshToken is a long-lived credential exchanged for new access tokens.
type RefreshToken struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Principal is the authenticated caller, resolved by the auth middleware and
// passed explicitly into every orchestrator operation. No ambient
// current-user state exists anywhere else.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdministrator }
