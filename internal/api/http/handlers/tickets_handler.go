package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler serves the end-user ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		Username:           req.User.Username,
		UserCode:           req.User.UserCode,
		ProblemDescription: req.Context.ProblemDescription,
		OptionsTried:       req.Context.FinalOptionsTried,
		CategoryKey:        req.Context.CategoryKey,
		SubcategoryKey:     req.Context.SubcategoryKey,
		PreferredAdmin:     req.PreferredAdmin,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreateTicketResponse{
		Success:          true,
		TicketID:         result.Ticket.PublicID,
		AssignedTo:       result.Ticket.AssignedTo,
		PreferredAdmin:   result.Ticket.PreferredAdmin,
		NotificationSent: result.NotificationSent,
	})
}

// LogSolved POST /api/tickets/log-solved.
func (h *TicketsHandler) LogSolved(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.LogSolved(c.UserContext(), service.TicketCreateInput{
		Username:       req.User.Username,
		UserCode:       req.User.UserCode,
		CategoryKey:    req.Context.CategoryKey,
		SubcategoryKey: req.Context.SubcategoryKey,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"ticket_id": ticket.PublicID,
	})
}

// ListMine GET /api/user/tickets.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.ListForRequester(c.UserContext(), principal.Username)
	if err != nil {
		return err
	}
	return c.JSON(ticketSummaries(tickets))
}

// Rate POST /api/tickets/:id/rate.
func (h *TicketsHandler) Rate(c *fiber.Ctx) error {
	var req dto.RateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.Rate(c.UserContext(), c.Params("id"), req.Rating); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "calificación guardada"})
}

// LogInteraction POST /api/log/interaction.
func (h *TicketsHandler) LogInteraction(c *fiber.Ctx) error {
	var req dto.InteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	err := h.service.LogInteraction(c.UserContext(), &domain.ChatInteraction{
		SessionID:   req.SessionID,
		Username:    req.Username,
		ActionType:  req.ActionType,
		ActionValue: req.ActionValue,
		BotResponse: req.BotResponse,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true})
}

func ticketSummaries(tickets []domain.Ticket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return items
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		TicketID:      ticket.PublicID,
		Subject:       ticket.Subject,
		Category:      string(ticket.Category),
		Description:   ticket.Description,
		Status:        ticket.Status,
		RequesterName: ticket.RequesterName,
		AssignedTo:    ticket.AssignedTo,
		Rating:        ticket.Rating,
		CreatedAt:     ticket.CreatedAt,
	}
}
