package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketContext is the troubleshooting-session summary the assistant
// collected before escalating.
type TicketContext struct {
	ProblemDescription string   `json:"problemDescription"`
	FinalOptionsTried  []string `json:"finalOptionsTried"`
	CategoryKey        string   `json:"categoryKey"`
	SubcategoryKey     string   `json:"subcategoryKey"`
}

// TicketUser identifies the requester.
type TicketUser struct {
	Username string `json:"username"`
	UserCode *int64 `json:"user_code"`
}

// CreateTicketRequest is the escalation payload from the web assistant
// and both bots.
type CreateTicketRequest struct {
	Context        TicketContext `json:"context"`
	User           TicketUser    `json:"user"`
	PreferredAdmin string        `json:"preferred_admin"`
}

// CreateTicketResponse reports the persisted ticket, the final assignment
// decision and whether the assignee got a live notification.
type CreateTicketResponse struct {
	Success          bool    `json:"success"`
	TicketID         string  `json:"ticket_id"`
	AssignedTo       *string `json:"assigned_to"`
	PreferredAdmin   *string `json:"preferred_admin"`
	NotificationSent bool    `json:"notification_sent"`
}

// TicketSummary is one row of a ticket listing.
type TicketSummary struct {
	TicketID      string              `json:"ticket_id"`
	Subject       string              `json:"subject"`
	Category      string              `json:"category"`
	Description   string              `json:"description"`
	Status        domain.TicketStatus `json:"status"`
	RequesterName string              `json:"requester_name"`
	AssignedTo    *string             `json:"assigned_to"`
	Rating        *int                `json:"rating,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// UpdateStatusRequest changes a ticket's lifecycle state.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest manually assigns a ticket.
type AssignRequest struct {
	AdminUsername string `json:"admin_username"`
}

// ReassignRequest moves a ticket to another requester.
type ReassignRequest struct {
	Username string `json:"username"`
}

// RateRequest stores the requester's satisfaction score.
type RateRequest struct {
	Rating int `json:"rating"`
}

// InteractionRequest logs one assistant step.
type InteractionRequest struct {
	SessionID   string `json:"sessionId"`
	Username    string `json:"username"`
	ActionType  string `json:"actionType"`
	ActionValue string `json:"actionValue"`
	BotResponse string `json:"botResponse"`
}

// AttachmentResponse is one attachment metadata row.
type AttachmentResponse struct {
	ID        int64     `json:"file_id"`
	FileName  string    `json:"filename"`
	Extension string    `json:"extension"`
	SizeBytes int64     `json:"size_bytes"`
	SizeHuman string    `json:"size_human"`
	Uploader  string    `json:"uploaded_by"`
	CreatedAt time.Time `json:"created_at"`
}
