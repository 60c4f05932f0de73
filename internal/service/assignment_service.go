package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// PreferenceNone is the sentinel the frontends send when the requester
// declined to pick an administrator.
const PreferenceNone = "none"

// Assignment rule labels, recorded in metrics and decision audit.
const (
	RulePreference    = "preference"
	RuleLeastBusy     = "least_busy"
	RuleFallbackFirst = "fallback_first"
	RuleUnassigned    = "unassigned"
)

// WorkloadSnapshot maps every rostered administrator to their open ticket
// count. Built fresh for each decision; never cached.
type WorkloadSnapshot struct {
	Roster []domain.Administrator
	Counts map[string]int
}

// AssignmentDecision is the resolved target for one new ticket. AssignedTo
// is nil when no administrator could be chosen. RawPreference keeps the
// requester's verbatim input for the audit column even when overridden.
type AssignmentDecision struct {
	AssignedTo    *string
	RawPreference string
	Rule          string
}

// AssignmentService picks the administrator for each new ticket.
type AssignmentService struct {
	directory identity.Directory
	tickets   repository.TicketRepository
	timeout   time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Directory  identity.Directory
	TicketRepo repository.TicketRepository
	Timeout    time.Duration
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		directory: deps.Directory,
		tickets:   deps.TicketRepo,
		timeout:   timeout,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// Snapshot builds the per-administrator open-ticket tally. Either source
// failing fails the whole snapshot; a partial or zero-filled view would
// bias assignment toward falsely idle administrators. Resolve does not
// consume it: the fallback rules react differently to a roster failure
// than to a counts failure, so the resolver queries the two sources
// separately and keeps the all-or-nothing contract here for callers that
// want the combined view.
func (s *AssignmentService) Snapshot(ctx context.Context) (*WorkloadSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	roster, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.openCounts(ctx)
	if err != nil {
		return nil, err
	}
	total := make(map[string]int, len(roster))
	for _, admin := range roster {
		total[admin.Username] = counts[admin.Username]
	}
	return &WorkloadSnapshot{Roster: roster, Counts: total}, nil
}

// Resolve picks the administrator for a new ticket. First matching rule
// wins:
//
//  1. A concrete preference is honored verbatim, with no check that it
//     names a real administrator; the caller is trusted.
//  2. Empty roster: unassigned.
//  3. Least open tickets wins; ties go to the earliest roster position.
//  4. Counts unreachable but roster readable: first roster member.
//     Roster unreachable: unassigned; the ticket is still created.
func (s *AssignmentService) Resolve(ctx context.Context, preference string) AssignmentDecision {
	decision := AssignmentDecision{RawPreference: preference}

	trimmed := strings.TrimSpace(preference)
	if trimmed != "" && trimmed != PreferenceNone {
		decision.AssignedTo = &trimmed
		decision.Rule = RulePreference
		s.record(decision)
		return decision
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	roster, err := s.roster(ctx)
	if err != nil || len(roster) == 0 {
		if err != nil {
			s.logger.Warn("roster unavailable, ticket will be unassigned", zap.Error(err))
		}
		decision.Rule = RuleUnassigned
		s.record(decision)
		return decision
	}

	counts, err := s.openCounts(ctx)
	if err != nil {
		s.logger.Warn("open-ticket counts unavailable, assigning first roster member", zap.Error(err))
		first := roster[0].Username
		decision.AssignedTo = &first
		decision.Rule = RuleFallbackFirst
		s.record(decision)
		return decision
	}

	leastBusy := roster[0].Username
	minCount := counts[leastBusy]
	for _, admin := range roster[1:] {
		if count := counts[admin.Username]; count < minCount {
			minCount = count
			leastBusy = admin.Username
		}
	}
	decision.AssignedTo = &leastBusy
	decision.Rule = RuleLeastBusy
	s.logger.Info("auto-assigned ticket",
		zap.String("assigned_to", leastBusy),
		zap.Int("open_tickets", minCount))
	s.record(decision)
	return decision
}

func (s *AssignmentService) roster(ctx context.Context) ([]domain.Administrator, error) {
	roster, err := s.directory.ListAdministrators(ctx)
	if err != nil {
		if apperrors.IsDependencyUnavailable(err) {
			return nil, err
		}
		return nil, apperrors.NewDependencyUnavailable("identity directory", err)
	}
	return roster, nil
}

func (s *AssignmentService) openCounts(ctx context.Context) (map[string]int, error) {
	counts, err := s.tickets.OpenCountsByAssignee(ctx)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailable("ticket store", err)
	}
	return counts, nil
}

func (s *AssignmentService) record(decision AssignmentDecision) {
	s.metrics.RecordAssignment(decision.Rule)
}
