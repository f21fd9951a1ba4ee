package model

import "time"

// Role names carried in the users table and in access tokens.
const (
    RoleStaff    = "STAFF"
    RoleCustomer = "CUSTOMER"
)

// User is a row of `users`.  Staff accounts come from the startup
// bootstrap, customers from registration.
type User struct {
    ID           uint64
    Name         string // copied into access tokens
    Email        string // unique, lower-cased
    PasswordHash string
    Role         string // RoleStaff or RoleCustomer
    CreatedAt    time.Time
}

// RefreshToken is a row of `refresh_tokens`.  Only the SHA-256 hash of
// the raw token handed to the client is kept.
type RefreshToken struct {
    UserID    uint64
    TokenHash string
    ExpiresAt time.Time
    RevokedAt *time.Time
}

// Usable reports whether the token can still be exchanged at now.
func (t RefreshToken) Usable(now time.Time) bool {
    return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
