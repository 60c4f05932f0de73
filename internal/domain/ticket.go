package domain

import "time"

// TicketStatus enumerates lifecycle states. The two-letter codes come from
// the legacy schema and are stored verbatim.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "PE"
	TicketStatusInProgress TicketStatus = "EP"
	TicketStatusFinished   TicketStatus = "FN"
)

// IsTerminal reports whether the status closes the ticket. Only finished
// tickets stop counting toward an administrator's workload.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusFinished
}

// TicketCategory is the coarse problem classification derived from the
// troubleshooting tree the requester walked before escalating.
type TicketCategory string

const (
	TicketCategorySoftware TicketCategory = "Software"
	TicketCategoryHardware TicketCategory = "Hardware"
)

// Ticket is the aggregate for escalated support requests.
type Ticket struct {
	ID            int64
	PublicID      string
	Subject       string
	Category      TicketCategory
	Description   string
	Status        TicketStatus
	RequesterName string
	RequesterCode *int64
	// AssignedTo is the administrator chosen by the resolver (or by a
	// manual assignment later); PreferredAdmin keeps the requester's raw
	// preference for audit even when the two diverge.
	AssignedTo     *string
	PreferredAdmin *string
	Rating         *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
