package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/api/dto"
	"github.com/visitordesk/visitor-service/internal/domain"
	"github.com/visitordesk/visitor-service/internal/service"
)

// UsersHandler exposes operator account endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// CreateSuperAdmin handles POST /users/create/superadmin.
func (h *UsersHandler) CreateSuperAdmin(c *fiber.Ctx) error {
	return h.create(c, domain.RoleSuperAdmin)
}

// CreateAdmin handles POST /users/create/admin.
func (h *UsersHandler) CreateAdmin(c *fiber.Ctx) error {
	return h.create(c, domain.RoleAdmin)
}

func (h *UsersHandler) create(c *fiber.Ctx, role domain.Role) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkRequired("user",
		field("username", req.Username),
		field("password", req.Password),
		field("role", req.Role),
	); err != nil {
		return err
	}

	user, err := h.users.Create(c.UserContext(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Email:    req.Email,
	}, role)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Login handles POST /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkRequired("user", field("username", req.Username), field("password", req.Password)); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		UserResponse: dto.NewUserResponse(result.User),
		Token:        result.Token,
		ExpiresAt:    result.ExpiresAt,
	})
}

// Self handles GET /users/self.
func (h *UsersHandler) Self(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), identity.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// ListActive handles GET /users/all.
func (h *UsersHandler) ListActive(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), false)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserList(users))
}

// ListAll handles GET /users/all/inactive.
func (h *UsersHandler) ListAll(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), true)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserList(users))
}

// ChangeOwnPassword handles POST /users/reset-password.
func (h *UsersHandler) ChangeOwnPassword(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkRequired("password", field("currentPassword", req.CurrentPassword), field("newPassword", req.NewPassword)); err != nil {
		return err
	}

	user, err := h.users.ChangeOwnPassword(c.UserContext(), identity.SubjectID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserActionResponse{Message: "Password changed successfully", User: dto.NewUserResponse(user)})
}

// ResetPassword handles POST /users/reset-password/:userId.
func (h *UsersHandler) ResetPassword(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	var req dto.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkRequired("password", field("newPassword", req.NewPassword)); err != nil {
		return err
	}

	user, err := h.users.ResetPassword(c.UserContext(), identity, userID, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserActionResponse{Message: "Password reset successfully", User: dto.NewUserResponse(user)})
}

// UpdateOwnProfile handles PUT /users/profile.
func (h *UsersHandler) UpdateOwnProfile(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return h.updateProfile(c, identity.SubjectID)
}

// UpdateProfile handles PUT /users/profile/:userId.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	return h.updateProfile(c, userID)
}

func (h *UsersHandler) updateProfile(c *fiber.Ctx, userID int64) error {
	var req dto.ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkRequired("profile", field("username", req.Username)); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.UserContext(), userID, req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserActionResponse{Message: "Profile updated successfully", User: dto.NewUserResponse(user)})
}

// Delete handles DELETE /users/:userId.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.users.Deactivate(c.UserContext(), identity, userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserActionResponse{Message: "User deleted successfully", User: dto.NewUserResponse(user)})
}

// Restore handles POST /users/restore/:userId.
func (h *UsersHandler) Restore(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.users.Restore(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserActionResponse{Message: "User restored successfully", User: dto.NewUserResponse(user)})
}
