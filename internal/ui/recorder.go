package ui

import (
	"context"
	"sync"
)

// Feedback is what a controller asked the user interface to do.
type Feedback struct {
	Alerts   []string  `json:"alerts,omitempty"`
	Messages []string  `json:"messages,omitempty"`
	Prompts  []Prompt  `json:"prompts,omitempty"`
	Redirect string    `json:"redirect,omitempty"`
	Tickets  []*Ticket `json:"tickets,omitempty"`
}

// Recorder collects Feedback during one HTTP request so the browser front
// end can replay it.
type Recorder struct {
	mu sync.Mutex
	fb Feedback
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fb.Alerts = append(r.fb.Alerts, msg)
}

func (r *Recorder) Message(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fb.Messages = append(r.fb.Messages, msg)
}

// Confirm records the prompt and answers no: the browser asks the question.
func (r *Recorder) Confirm(_ context.Context, p Prompt) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fb.Prompts = append(r.fb.Prompts, p)
	return false, nil
}

func (r *Recorder) Navigate(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fb.Redirect = target
}

func (r *Recorder) Open(_ context.Context, t *Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fb.Tickets = append(r.fb.Tickets, t)
	return nil
}

// Deliver leaves the download to the browser; the ticket stays incomplete.
func (r *Recorder) Deliver(context.Context, *Ticket) error {
	return nil
}

func (r *Recorder) Fail(_ context.Context, t *Ticket, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Error = cause.Error()
}

func (r *Recorder) Feedback() Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Feedback{
		Alerts:   append([]string(nil), r.fb.Alerts...),
		Messages: append([]string(nil), r.fb.Messages...),
		Prompts:  append([]Prompt(nil), r.fb.Prompts...),
		Redirect: r.fb.Redirect,
		Tickets:  append([]*Ticket(nil), r.fb.Tickets...),
	}
}
