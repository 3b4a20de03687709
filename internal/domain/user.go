package domain

import "time"

// User is an operator account that manages visitors and staff.
type User struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	ModifiedAt   time.Time
}
