package export

import (
	"context"
	"fmt"
	"log/slog"

	"reports-ui/internal/domain"
	"reports-ui/internal/ui"
)

const (
	msgSelectTemplate   = "Please select a template."
	msgDateOrder        = "To Date must be after From Date."
	msgAssignApprover   = "Please assign an approver."
	msgSameApprover     = "Both approver and reviewer cannot be the same."
	msgAssignReviewer   = "Please assign the report to a reviewer for scheduling."
	msgSelectFrequency  = "Please select a schedule frequency."
	msgExportIncomplete = "Please select a valid date range and template."
	msgNoUsername       = "Your session has no username. Please sign in again."
	msgPopupBlocked     = "Popup blocked. Please allow popups for this site."
	msgExportFailed     = "Failed to generate report. Please try again later."
	msgReportReady      = "Report generated successfully. Click OK to return to the app."
)

// Submit runs the checks shared by both export types and dispatches to
// ExportReport or Schedule. Every failed check alerts and stops before any
// request is made.
func (c *Controller) Submit(ctx context.Context) error {
	const op = "export.Submit"

	if c.selected == nil {
		c.notify.Alert(msgSelectTemplate)
		return fmt.Errorf("%s: %w", op, domain.ErrTemplateNotSelected)
	}

	if !c.ValidateDateRange() {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidDateRange)
	}

	var approver string
	if c.IsApproverRequired {
		if c.AssignedApprover == "" {
			c.notify.Alert(msgAssignApprover)
			return fmt.Errorf("%s: %w", op, domain.ErrApproverRequired)
		}
		if c.AssignedTo == c.AssignedApprover {
			c.notify.Alert(msgSameApprover)
			return fmt.Errorf("%s: %w", op, domain.ErrSameApprover)
		}
		approver = c.AssignedApprover
	}

	switch c.ExportType {
	case domain.ExportManual:
		return c.ExportReport(ctx, approver)
	case domain.ExportSchedule:
		if c.AssignedTo == "" {
			c.notify.Alert(msgAssignReviewer)
			return fmt.Errorf("%s: %w", op, domain.ErrReviewerRequired)
		}
		if c.Frequency == "" {
			c.notify.Alert(msgSelectFrequency)
			return fmt.Errorf("%s: %w", op, domain.ErrUnknownFrequency)
		}
		return c.Schedule(ctx, c.Frequency)
	default:
		return fmt.Errorf("%s: %w: %q", op, domain.ErrUnknownExportType, c.ExportType)
	}
}

// ExportReport logs the export and hands the download address to the sink.
// The backend gives no completion signal, so unless the sink confirms the
// download itself the return prompt is deferred by the ready delay.
func (c *Controller) ExportReport(ctx context.Context, approver string) error {
	const op = "export.ExportReport"

	username := c.session.Username()
	log := c.log.With(slog.String("op", op), slog.String("username", username))

	if c.selected == nil || c.fromDate.IsZero() || c.toDate.IsZero() {
		c.notify.Alert(msgExportIncomplete)
		return fmt.Errorf("%s: %w", op, domain.ErrMissingDates)
	}
	if username == "" {
		c.notify.Alert(msgNoUsername)
		return fmt.Errorf("%s: %w", op, domain.ErrNoUsername)
	}

	tmpl := *c.selected
	ticket := ui.NewTicket(tmpl.ID, tmpl.Name, c.now())

	if err := c.sink.Open(ctx, ticket); err != nil {
		log.Error("Failed to open report sink", slog.String("error", err.Error()))
		c.notify.Alert(msgPopupBlocked)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrSinkUnavailable, err)
	}

	entry := domain.GenerationLog{
		Username:   username,
		ReportID:   tmpl.ID,
		ReportName: tmpl.Name,
	}
	if err := c.backend.LogGeneratedReport(ctx, entry); err != nil {
		log.Error("Error logging report generation", slog.String("error", err.Error()))
		c.sink.Fail(ctx, ticket, err)
		c.notify.Message(msgExportFailed)
		return fmt.Errorf("%s: %w", op, err)
	}

	ticket.URL = c.backend.ExportURL(domain.ExportQuery{
		TemplateID:       tmpl.ID,
		FromDate:         c.fromDate.Format(QueryLayout),
		ToDate:           c.toDate.Format(QueryLayout),
		Username:         username,
		AssignedTo:       c.AssignedTo,
		AssignedApprover: approver,
	})

	if err := c.sink.Deliver(ctx, ticket); err != nil {
		log.Error("Error delivering report", slog.String("error", err.Error()))
		c.sink.Fail(ctx, ticket, err)
		c.notify.Message(msgExportFailed)
		return fmt.Errorf("%s: %w", op, err)
	}

	c.submitted = true
	log.Info("Report export started",
		slog.Int64("template_id", tmpl.ID),
		slog.String("ticket", ticket.ID.String()),
		slog.Bool("completed", ticket.Completed),
	)

	prompt := ui.Prompt{Message: msgReportReady}
	if !ticket.Completed {
		prompt.After = c.readyDelay
	}

	ok, err := c.notify.Confirm(ctx, prompt)
	if err != nil {
		log.Warn("Return prompt not answered", slog.String("error", err.Error()))
		return nil
	}
	if ok {
		c.nav.Navigate(c.returnURL)
	}

	return nil
}
