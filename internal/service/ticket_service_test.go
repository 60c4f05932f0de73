package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/presence"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type ticketFixture struct {
	svc      *TicketService
	tickets  *fakeTicketRepo
	registry *presence.Registry
	pending  *fakePendingRepo
}

func newTicketFixture(t *testing.T, directory *fakeDirectory) *ticketFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	registry := presence.NewRegistry()
	pending := newFakePendingRepo()
	notifier := NewNotificationService(registry, pending, config.NotificationConfig{PendingTTLMinutes: 60}, nil, nil)
	assignments := NewAssignmentService(AssignmentDependencies{
		Directory:  directory,
		TicketRepo: tickets,
		Timeout:    time.Second,
	})
	svc := NewTicketService(TicketDependencies{
		TicketRepo:      tickets,
		InteractionRepo: &fakeInteractionRepo{},
		Assignments:     assignments,
		Notifier:        notifier,
		Dispatcher:      events.NewInMemoryDispatcher(),
		Now:             func() time.Time { return time.Date(2026, 8, 28, 10, 15, 0, 0, time.UTC) },
	})
	return &ticketFixture{svc: svc, tickets: tickets, registry: registry, pending: pending}
}

func TestCreateAssignsLeastBusyAndNotifiesLiveAdmin(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{admins: rosterOf("a1", "a2", "a3")})
	fx.tickets.counts = map[string]int{"a1": 3, "a2": 1}
	session := &fakeSession{id: "sess-1"}
	fx.registry.MarkOnline("a3", session)

	result, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "La impresora no responde",
		CategoryKey:        "categoria_hardware",
		SubcategoryKey:     "Impresoras",
		OptionsTried:       []string{"Reiniciar la impresora", "Revisar el cable"},
	})
	require.NoError(t, err)

	ticket := result.Ticket
	assert.Equal(t, "TKT-20260828-101500", ticket.PublicID)
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, "a3", *ticket.AssignedTo)
	assert.Equal(t, domain.TicketStatusPending, ticket.Status)
	assert.Equal(t, domain.TicketCategoryHardware, ticket.Category)
	assert.Equal(t, "Impresoras", ticket.Subject)
	assert.Nil(t, ticket.PreferredAdmin)
	assert.Contains(t, ticket.Description, "La impresora no responde")
	assert.Contains(t, ticket.Description, "--- Opciones Finales Intentadas sin Éxito ---")
	assert.Contains(t, ticket.Description, "- Reiniciar la impresora\n")

	assert.True(t, result.NotificationSent)
	require.Len(t, session.received(), 1)
	pushed := session.received()[0]
	assert.Equal(t, "new_ticket", pushed.Type)
	assert.Equal(t, "Nuevo Ticket Asignado", pushed.Title)
	assert.Equal(t, ticket.PublicID, pushed.TicketID)
	assert.Equal(t, "epalacios", pushed.User)
}

func TestCreateOfflineAssigneeQueuesNotification(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{admins: rosterOf("a1")})

	result, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "Sin acceso a la red",
	})
	require.NoError(t, err)

	assert.False(t, result.NotificationSent)
	require.Len(t, fx.pending.queued("a1"), 1)
}

func TestCreateHonorsPreferenceAndRecordsIt(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{admins: rosterOf("a1", "a2")})

	result, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "Pantalla azul",
		PreferredAdmin:     "a2",
	})
	require.NoError(t, err)

	ticket := result.Ticket
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, "a2", *ticket.AssignedTo)
	require.NotNil(t, ticket.PreferredAdmin)
	assert.Equal(t, "a2", *ticket.PreferredAdmin)
}

func TestCreateRosterDownStillCreatesUnassigned(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{listErr: errors.New("directory down")})

	result, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "Correo rebotado",
	})
	require.NoError(t, err)

	assert.Nil(t, result.Ticket.AssignedTo)
	assert.False(t, result.NotificationSent)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{})

	_, err := fx.svc.Create(context.Background(), TicketCreateInput{ProblemDescription: "x"})
	assertDomainCode(t, err, "VALIDATION_FAILED")

	_, err = fx.svc.Create(context.Background(), TicketCreateInput{Username: "epalacios", ProblemDescription: "   "})
	assertDomainCode(t, err, "VALIDATION_FAILED")
	assert.Empty(t, fx.tickets.created)
}

func TestCreatePersistenceFailureNoNotification(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{admins: rosterOf("a1")})
	fx.tickets.createErr = errors.New("pg down")
	session := &fakeSession{id: "sess-1"}
	fx.registry.MarkOnline("a1", session)

	_, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "Disco lleno",
	})

	assertDomainCode(t, err, "PERSISTENCE_FAILED")
	assert.Empty(t, session.received())
	assert.Empty(t, fx.pending.queued("a1"))
}

func TestCreateDefaultsSubjectAndSoftwareCategory(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{admins: rosterOf("a1")})

	result, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "El ERP no abre",
		CategoryKey:        "cat_software_erp",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sin asunto", result.Ticket.Subject)
	assert.Equal(t, domain.TicketCategorySoftware, result.Ticket.Category)
}

func TestLogSolvedCreatesFinishedTicket(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{})

	ticket, err := fx.svc.LogSolved(context.Background(), TicketCreateInput{
		Username:       "epalacios",
		SubcategoryKey: "Impresoras",
		CategoryKey:    "categoria_hardware",
	})
	require.NoError(t, err)

	assert.Equal(t, "TKT-SOL-20260828-101500", ticket.PublicID)
	assert.Equal(t, domain.TicketStatusFinished, ticket.Status)
	assert.Equal(t, "Resuelto por el usuario a través del Asistente Virtual.", ticket.Description)
	assert.Nil(t, ticket.AssignedTo)
}

func TestUpdateStatusValidatesAndPersists(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{admins: rosterOf("a1")})
	result, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "VPN caída",
	})
	require.NoError(t, err)
	publicID := result.Ticket.PublicID

	err = fx.svc.UpdateStatus(context.Background(), "a1", publicID, domain.TicketStatus("XX"))
	assertDomainCode(t, err, "VALIDATION_FAILED")

	err = fx.svc.UpdateStatus(context.Background(), "a1", "TKT-missing", domain.TicketStatusInProgress)
	assertDomainCode(t, err, "NOT_FOUND")

	require.NoError(t, fx.svc.UpdateStatus(context.Background(), "a1", publicID, domain.TicketStatusInProgress))
	updated, err := fx.tickets.GetByPublicID(context.Background(), publicID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
}

func TestAssignManualDoesNotPush(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{admins: rosterOf("a1", "a2")})
	result, err := fx.svc.Create(context.Background(), TicketCreateInput{
		Username:           "epalacios",
		ProblemDescription: "Teclado roto",
	})
	require.NoError(t, err)

	session := &fakeSession{id: "sess-1"}
	fx.registry.MarkOnline("a2", session)

	require.NoError(t, fx.svc.Assign(context.Background(), "a1", result.Ticket.PublicID, "a2"))

	updated, err := fx.tickets.GetByPublicID(context.Background(), result.Ticket.PublicID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, "a2", *updated.AssignedTo)
	assert.Empty(t, session.received())

	err = fx.svc.Assign(context.Background(), "a1", result.Ticket.PublicID, "  ")
	assertDomainCode(t, err, "VALIDATION_FAILED")
}

func TestRateBounds(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{})
	ticket, err := fx.svc.LogSolved(context.Background(), TicketCreateInput{Username: "epalacios"})
	require.NoError(t, err)

	assertDomainCode(t, fx.svc.Rate(context.Background(), ticket.PublicID, 0), "VALIDATION_FAILED")
	assertDomainCode(t, fx.svc.Rate(context.Background(), ticket.PublicID, 6), "VALIDATION_FAILED")
	require.NoError(t, fx.svc.Rate(context.Background(), ticket.PublicID, 5))

	updated, err := fx.tickets.GetByPublicID(context.Background(), ticket.PublicID)
	require.NoError(t, err)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 5, *updated.Rating)
}

func TestListForRequesterRequiresUsername(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{})
	_, err := fx.svc.ListForRequester(context.Background(), " ")
	assertDomainCode(t, err, "VALIDATION_FAILED")
}

func TestLogInteractionRequiresSessionAndUser(t *testing.T) {
	t.Parallel()

	fx := newTicketFixture(t, &fakeDirectory{})

	err := fx.svc.LogInteraction(context.Background(), &domain.ChatInteraction{Username: "epalacios"})
	assertDomainCode(t, err, "VALIDATION_FAILED")

	err = fx.svc.LogInteraction(context.Background(), &domain.ChatInteraction{
		SessionID:  "sess-abc",
		Username:   "epalacios",
		ActionType: "menu_selection",
	})
	require.NoError(t, err)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
