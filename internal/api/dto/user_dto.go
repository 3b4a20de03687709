package dto

import (
	"time"

	"github.com/visitordesk/visitor-service/internal/domain"
)

// CreateUserRequest payload for superadmin and admin creation.
type CreateUserRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Email    *string `json:"email"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ResetPasswordRequest payload for resetting another account.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ProfileRequest payload for profile updates.
type ProfileRequest struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

// UserResponse is a user without credentials.
type UserResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email"`
	Role       string    `json:"role"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// LoginResponse is the user plus a bearer token.
type LoginResponse struct {
	UserResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserActionResponse wraps a user after a mutation.
type UserActionResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       string(user.Role),
		Active:     user.Active,
		CreatedAt:  user.CreatedAt,
		ModifiedAt: user.ModifiedAt,
	}
}

func NewUserList(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
