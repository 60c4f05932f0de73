package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/presence"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AdminTicketsHandler serves the administrator panel endpoints.
type AdminTicketsHandler struct {
	service  *service.TicketService
	registry *presence.Registry
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService, registry *presence.Registry) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService, registry: registry}
}

// ListAll GET /api/admin/tickets.
func (h *AdminTicketsHandler) ListAll(c *fiber.Ctx) error {
	tickets, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ticketSummaries(tickets))
}

// UpdateStatus PUT /api/admin/tickets/:id.
func (h *AdminTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	actor := actorName(c)
	if err := h.service.UpdateStatus(c.UserContext(), actor, c.Params("id"), domain.TicketStatus(req.Status)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Assign POST /api/admin/tickets/:id/assign.
func (h *AdminTicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Assign(c.UserContext(), actorName(c), c.Params("id"), req.AdminUsername); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "ticket " + c.Params("id") + " asignado a " + req.AdminUsername,
	})
}

// Reassign POST /api/admin/tickets/:id/reassign.
func (h *AdminTicketsHandler) Reassign(c *fiber.Ctx) error {
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ReassignRequester(c.UserContext(), c.Params("id"), req.Username); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// Online GET /api/admin/online.
func (h *AdminTicketsHandler) Online(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"admins": h.registry.Online()})
}

func actorName(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.Username
	}
	return ""
}
