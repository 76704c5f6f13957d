package domain

import "time"

// UserStatus marks whether an account is live.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

// User is the account record a token subject resolves to. This subsystem
// reads users, it never writes them; registration lives elsewhere.
type User struct {
	ID        string
	Name      string
	Email     string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
