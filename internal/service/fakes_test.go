package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// fakeDirectory is an in-memory identity.Directory.
type fakeDirectory struct {
	userCodes   map[string]int64
	credentials map[int64]domain.Credential
	admins      []domain.Administrator
	users       []domain.DirectoryUser

	lookupErr error
	listErr   error
}

func (d *fakeDirectory) LookupUserCode(ctx context.Context, username string) (int64, bool, error) {
	if d.lookupErr != nil {
		return 0, false, d.lookupErr
	}
	code, ok := d.userCodes[username]
	return code, ok, nil
}

func (d *fakeDirectory) LookupCredential(ctx context.Context, userCode int64) (domain.Credential, bool, error) {
	if d.lookupErr != nil {
		return domain.Credential{}, false, d.lookupErr
	}
	credential, ok := d.credentials[userCode]
	return credential, ok, nil
}

func (d *fakeDirectory) ListAdministrators(ctx context.Context) ([]domain.Administrator, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.admins, nil
}

func (d *fakeDirectory) ListUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.users, nil
}

// fakeTicketRepo is an in-memory repository.TicketRepository.
type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[string]*domain.Ticket
	created []*domain.Ticket

	counts    map[string]int
	createErr error
	countsErr error
	updateErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket), counts: map[string]int{}}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	ticket.ID = r.nextID
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.PublicID] = ticket
	r.created = append(r.created, ticket)
	return nil
}

func (r *fakeTicketRepo) GetByPublicID(ctx context.Context, publicID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[publicID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) ListByRequester(ctx context.Context, username string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.created {
		if ticket.RequesterName == username {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Ticket, 0, len(r.created))
	for _, ticket := range r.created {
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateStatus(ctx context.Context, publicID string, status domain.TicketStatus) error {
	return r.update(publicID, func(t *domain.Ticket) { t.Status = status })
}

func (r *fakeTicketRepo) UpdateAssignee(ctx context.Context, publicID, admin string) error {
	return r.update(publicID, func(t *domain.Ticket) { t.AssignedTo = &admin })
}

func (r *fakeTicketRepo) UpdateRequester(ctx context.Context, publicID, username string) error {
	return r.update(publicID, func(t *domain.Ticket) { t.RequesterName = username })
}

func (r *fakeTicketRepo) UpdateRating(ctx context.Context, publicID string, rating int) error {
	return r.update(publicID, func(t *domain.Ticket) { t.Rating = &rating })
}

func (r *fakeTicketRepo) update(publicID string, apply func(*domain.Ticket)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	ticket, ok := r.tickets[publicID]
	if !ok {
		return pgx.ErrNoRows
	}
	apply(ticket)
	return nil
}

func (r *fakeTicketRepo) OpenCountsByAssignee(ctx context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countsErr != nil {
		return nil, r.countsErr
	}
	out := make(map[string]int, len(r.counts))
	for admin, count := range r.counts {
		out[admin] = count
	}
	return out, nil
}

// fakeInteractionRepo records chat interactions.
type fakeInteractionRepo struct {
	created   []*domain.ChatInteraction
	createErr error
}

func (r *fakeInteractionRepo) Create(ctx context.Context, interaction *domain.ChatInteraction) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, interaction)
	return nil
}

func (r *fakeInteractionRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.ChatInteraction, error) {
	var out []domain.ChatInteraction
	for _, interaction := range r.created {
		if interaction.SessionID == sessionID {
			out = append(out, *interaction)
		}
	}
	return out, nil
}

// fakeSession is a presence.Session collecting pushed notifications.
type fakeSession struct {
	id      string
	mu      sync.Mutex
	pushed  []domain.Notification
	pushErr error
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Push(notification domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushErr != nil {
		return s.pushErr
	}
	s.pushed = append(s.pushed, notification)
	return nil
}

func (s *fakeSession) received() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.pushed))
	copy(out, s.pushed)
	return out
}

// fakePendingRepo is an in-memory offline-notification queue.
type fakePendingRepo struct {
	mu         sync.Mutex
	queues     map[string][]domain.Notification
	enqueueErr error
	drainErr   error
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{queues: make(map[string][]domain.Notification)}
}

func (r *fakePendingRepo) Enqueue(ctx context.Context, admin string, notification domain.Notification, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enqueueErr != nil {
		return r.enqueueErr
	}
	r.queues[admin] = append(r.queues[admin], notification)
	return nil
}

func (r *fakePendingRepo) Drain(ctx context.Context, admin string) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drainErr != nil {
		return nil, r.drainErr
	}
	queued := r.queues[admin]
	delete(r.queues, admin)
	return queued, nil
}

func (r *fakePendingRepo) queued(admin string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.queues[admin]))
	copy(out, r.queues[admin])
	return out
}
