// Package ui holds the side effects the form controllers ask for: dialogs,
// navigation and delivery of generated reports. Each front end supplies its
// own implementation.
package ui

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Notifier interface {
	// Alert is a blocking dialog.
	Alert(msg string)
	// Message is shown inline and does not interrupt the user.
	Message(msg string)
	// Confirm asks a yes/no question, no earlier than p.After from now.
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

type Prompt struct {
	Message string        `json:"message"`
	After   time.Duration `json:"after"`
}

type Navigator interface {
	Navigate(target string)
}

// Ticket follows one manual export from the loading placeholder to delivery.
type Ticket struct {
	ID           uuid.UUID `json:"id"`
	TemplateID   int64     `json:"template_id"`
	TemplateName string    `json:"template_name"`
	URL          string    `json:"url,omitempty"`
	RequestedAt  time.Time `json:"requested_at"`
	// Completed is set by sinks that know the report finished downloading.
	Completed bool   `json:"completed"`
	File      string `json:"file,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewTicket(templateID int64, templateName string, now time.Time) *Ticket {
	return &Ticket{
		ID:           uuid.New(),
		TemplateID:   templateID,
		TemplateName: templateName,
		RequestedAt:  now,
	}
}

// ReportSink receives generated reports. Open shows the loading state and
// fails when nothing can be shown; Deliver hands over the download address.
type ReportSink interface {
	Open(ctx context.Context, t *Ticket) error
	Deliver(ctx context.Context, t *Ticket) error
	Fail(ctx context.Context, t *Ticket, cause error)
}
