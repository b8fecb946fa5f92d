package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
// Loyalty points are only ever adjusted through the ledger
// operations and never go below zero.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address (stored lowercased).
//  PasswordHash  – bcrypt hashed password; plaintext is never stored.
//  FullName      – display name of the user.
//  PhoneNumber   – E.164-style phone number.
//  CarPlate      – default car plate used to prefill bookings (may be empty).
//  LoyaltyPoints – accumulated loyalty points, starts at 0.
//  Role          – role name (ADMIN or CUSTOMER).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	FullName      string    // users.full_name
	PhoneNumber   string    // users.phone_number
	CarPlate      string    // users.car_plate
	LoyaltyPoints int64     // users.loyalty_points
	Role          string    // users.role
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// Roles accepted by the service.  ADMIN manages bay inventory and
// performs refunds/cancellations; CUSTOMER books bays.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
