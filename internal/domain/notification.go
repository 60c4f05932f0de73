package domain

import "time"

// Notification is the ephemeral payload pushed to an administrator's live
// session when a ticket lands on them. It is never persisted beyond the
// offline fallback queue.
type Notification struct {
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	TicketID   string    `json:"ticket_id"`
	AssignedTo string    `json:"assigned_to"`
	User       string    `json:"user"`
	Subject    string    `json:"subject"`
	Category   string    `json:"category"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewTicketNotification builds the payload for a freshly assigned ticket.
func NewTicketNotification(ticket *Ticket, assignedTo string) Notification {
	return Notification{
		Type:       "new_ticket",
		Title:      "Nuevo Ticket Asignado",
		Message:    "Se te ha asignado el ticket: " + ticket.PublicID,
		TicketID:   ticket.PublicID,
		AssignedTo: assignedTo,
		User:       ticket.RequesterName,
		Subject:    ticket.Subject,
		Category:   string(ticket.Category),
		Timestamp:  time.Now(),
	}
}
