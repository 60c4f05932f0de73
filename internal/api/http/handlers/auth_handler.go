package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthHandler serves login and the directory listings.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Success: true,
		User: dto.LoginUser{
			Username: result.Username,
			Role:     string(result.Role),
			UserCode: result.UserCode,
		},
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// ListAdmins GET /api/admins.
func (h *AuthHandler) ListAdmins(c *fiber.Ctx) error {
	admins, err := h.service.ListAdministrators(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AdminResponse, 0, len(admins))
	for _, admin := range admins {
		items = append(items, dto.AdminResponse{UserCode: admin.UserCode, Username: admin.Username})
	}
	return c.JSON(items)
}

// ListUsers GET /api/users.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.UserResponse{UserCode: user.UserCode, Username: user.Username})
	}
	return c.JSON(items)
}
