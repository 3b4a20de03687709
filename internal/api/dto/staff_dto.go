package dto

import (
	"time"

	"github.com/visitordesk/visitor-service/internal/domain"
)

// StaffRequest payload for new staff.
type StaffRequest struct {
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	Email       *string `json:"email"`
}

// StaffPatchRequest payload for partial staff updates.
type StaffPatchRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
	Active      *bool   `json:"active"`
}

// StaffResponse is a staff member.
type StaffResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Email       *string   `json:"email"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// StaffOption is the short form used by pickers and name validation.
type StaffOption struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

func NewStaffResponse(member *domain.StaffMember) StaffResponse {
	return StaffResponse{
		ID:          member.ID,
		Name:        member.Name,
		PhoneNumber: member.PhoneNumber,
		Email:       member.Email,
		Active:      member.Active,
		CreatedAt:   member.CreatedAt,
		ModifiedAt:  member.ModifiedAt,
	}
}

func NewStaffOption(member *domain.StaffMember) StaffOption {
	return StaffOption{ID: member.ID, Name: member.Name, PhoneNumber: member.PhoneNumber}
}

func NewStaffOptions(members []domain.StaffMember) []StaffOption {
	out := make([]StaffOption, 0, len(members))
	for i := range members {
		out = append(out, NewStaffOption(&members[i]))
	}
	return out
}

func NewStaffList(members []domain.StaffMember) []StaffResponse {
	out := make([]StaffResponse, 0, len(members))
	for i := range members {
		out = append(out, NewStaffResponse(&members[i]))
	}
	return out
}
