package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService sequences ticket workflows end to end.
type TicketService struct {
	tickets      repository.TicketRepository
	interactions repository.InteractionRepository
	assignments  *AssignmentService
	notifier     *NotificationService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	now          func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	InteractionRepo repository.InteractionRepository
	Assignments     *AssignmentService
	Notifier        *NotificationService
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Now             func() time.Time
}

// TicketCreateInput describes an escalated troubleshooting session.
type TicketCreateInput struct {
	Username           string
	UserCode           *int64
	ProblemDescription string
	OptionsTried       []string
	CategoryKey        string
	SubcategoryKey     string
	PreferredAdmin     string
}

// TicketCreateResult is what the caller gets back: the persisted ticket
// plus whether the assignee saw a live notification.
type TicketCreateResult struct {
	Ticket           *domain.Ticket
	NotificationSent bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		interactions: deps.InteractionRepo,
		assignments:  deps.Assignments,
		notifier:     deps.Notifier,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		now:          now,
	}
}

// Create validates the request, resolves the target administrator,
// persists the ticket and then, only after the row is committed, pushes
// the notification. Notification failures never fail the creation.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*TicketCreateResult, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}
	if strings.TrimSpace(input.ProblemDescription) == "" {
		return nil, apperrors.NewValidationError("problem description required", nil)
	}

	decision := s.assignments.Resolve(ctx, input.PreferredAdmin)

	ticket := &domain.Ticket{
		PublicID:      "TKT-" + s.now().Format("20060102-150405"),
		Subject:       subjectOrDefault(input.SubcategoryKey),
		Category:      categoryFromKey(input.CategoryKey),
		Description:   composeDescription(input.ProblemDescription, input.OptionsTried),
		Status:        domain.TicketStatusPending,
		RequesterName: strings.TrimSpace(input.Username),
		RequesterCode: input.UserCode,
		AssignedTo:    decision.AssignedTo,
	}
	if pref := strings.TrimSpace(decision.RawPreference); pref != "" {
		ticket.PreferredAdmin = &pref
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewPersistenceError("ticket creation", err)
	}

	delivered := false
	if ticket.AssignedTo != nil {
		notification := domain.NewTicketNotification(ticket, *ticket.AssignedTo)
		delivered = s.notifier.Dispatch(ctx, *ticket.AssignedTo, notification)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.PublicID,
		Actor:    ticket.RequesterName,
		Payload: events.TicketCreatedPayload{
			Subject:        ticket.Subject,
			Category:       ticket.Category,
			AssignedTo:     ticket.AssignedTo,
			PreferredAdmin: ticket.PreferredAdmin,
			Delivered:      delivered,
		},
	})

	return &TicketCreateResult{Ticket: ticket, NotificationSent: delivered}, nil
}

// LogSolved records a self-service resolution as a closed ticket so the
// knowledge-base effectiveness shows up in reporting.
func (s *TicketService) LogSolved(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}
	ticket := &domain.Ticket{
		PublicID:      "TKT-SOL-" + s.now().Format("20060102-150405"),
		Subject:       subjectOrDefault(input.SubcategoryKey),
		Category:      categoryFromKey(input.CategoryKey),
		Description:   "Resuelto por el usuario a través del Asistente Virtual.",
		Status:        domain.TicketStatusFinished,
		RequesterName: strings.TrimSpace(input.Username),
		RequesterCode: input.UserCode,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewPersistenceError("solved-ticket logging", err)
	}
	return ticket, nil
}

// ListForRequester returns the requester's own tickets, newest first.
func (s *TicketService) ListForRequester(ctx context.Context, username string) ([]domain.Ticket, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}
	tickets, err := s.tickets.ListByRequester(ctx, username)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAll returns every ticket for the admin panel.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus moves a ticket to a new lifecycle state.
func (s *TicketService) UpdateStatus(ctx context.Context, actor, publicID string, status domain.TicketStatus) error {
	switch status {
	case domain.TicketStatusPending, domain.TicketStatusInProgress, domain.TicketStatusFinished:
	default:
		return apperrors.NewValidationError("unknown ticket status", map[string]any{"status": string(status)})
	}
	ticket, err := s.getTicket(ctx, publicID)
	if err != nil {
		return err
	}
	if err := s.tickets.UpdateStatus(ctx, publicID, status); err != nil {
		return apperrors.NewPersistenceError("status update", err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: publicID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: ticket.Status,
			NewStatus: status,
		},
	})
	return nil
}

// Assign hands a ticket to a specific administrator. Manual assignment is
// an admin action and does not trigger a live notification; the admin
// panel refreshes itself.
func (s *TicketService) Assign(ctx context.Context, actor, publicID, admin string) error {
	if strings.TrimSpace(admin) == "" {
		return apperrors.NewValidationError("admin username required", nil)
	}
	if _, err := s.getTicket(ctx, publicID); err != nil {
		return err
	}
	if err := s.tickets.UpdateAssignee(ctx, publicID, admin); err != nil {
		return apperrors.NewPersistenceError("ticket assignment", err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: publicID,
		Actor:    actor,
		Payload:  events.TicketAssignedPayload{AssignedTo: admin},
	})
	return nil
}

// ReassignRequester moves a ticket to a different end-user.
func (s *TicketService) ReassignRequester(ctx context.Context, publicID, username string) error {
	if strings.TrimSpace(username) == "" {
		return apperrors.NewValidationError("username required", nil)
	}
	if _, err := s.getTicket(ctx, publicID); err != nil {
		return err
	}
	if err := s.tickets.UpdateRequester(ctx, publicID, username); err != nil {
		return apperrors.NewPersistenceError("requester reassignment", err)
	}
	return nil
}

// Rate stores the requester's 1-5 satisfaction score.
func (s *TicketService) Rate(ctx context.Context, publicID string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	if _, err := s.getTicket(ctx, publicID); err != nil {
		return err
	}
	if err := s.tickets.UpdateRating(ctx, publicID, rating); err != nil {
		return apperrors.NewPersistenceError("ticket rating", err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketRated,
		TicketID: publicID,
		Payload:  events.TicketRatedPayload{Rating: rating},
	})
	return nil
}

// LogInteraction appends one assistant step to the chat log.
func (s *TicketService) LogInteraction(ctx context.Context, interaction *domain.ChatInteraction) error {
	if interaction.SessionID == "" || interaction.Username == "" {
		return apperrors.NewValidationError("session id and username required", nil)
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return apperrors.NewPersistenceError("interaction logging", err)
	}
	return nil
}

func (s *TicketService) getTicket(ctx context.Context, publicID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": publicID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	_ = s.dispatcher.Publish(ctx, event)
}

func subjectOrDefault(subcategoryKey string) string {
	if subject := strings.TrimSpace(subcategoryKey); subject != "" {
		return subject
	}
	return "Sin asunto"
}

func categoryFromKey(categoryKey string) domain.TicketCategory {
	if strings.Contains(strings.ToLower(categoryKey), "software") {
		return domain.TicketCategorySoftware
	}
	return domain.TicketCategoryHardware
}

func composeDescription(problem string, optionsTried []string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(problem))
	if len(optionsTried) > 0 {
		sb.WriteString("\n\n--- Opciones Finales Intentadas sin Éxito ---\n")
		for _, option := range optionsTried {
			sb.WriteString("- ")
			sb.WriteString(option)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
