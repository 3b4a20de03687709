package domain

import "time"

// StaffMember is the host a visitor comes to see.
type StaffMember struct {
	ID          int64
	Name        string
	PhoneNumber string
	Email       *string
	Active      bool
	CreatedAt   time.Time
	ModifiedAt  time.Time
}
