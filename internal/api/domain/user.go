package domain

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the one-per-user record that grants tenant membership.
type Profile struct {
	ID             string
	UserID         string
	Username       string // joined from users, read only
	MobileNumber   string
	VerifiedNumber bool
	Enable2FA      bool
	TOTPSecret     string // never leaves the service layer
	TenantIDs      []string
	RoleIDs        []string
}

type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
