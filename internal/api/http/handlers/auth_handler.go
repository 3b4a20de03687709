package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/visitordesk/visitor-service/internal/api/dto"
	"github.com/visitordesk/visitor-service/internal/service"
)

// AuthHandler exposes token validation.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Validate handles GET /api/v1/auth/validate.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	user, _, err := h.auth.ValidateToken(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Token is valid",
		"data":    dto.NewUserResponse(user),
	})
}
