package export

import (
	"context"
	"fmt"
	"log/slog"

	"reports-ui/internal/domain"
)

type dailyFields struct {
	Time *int `validate:"required,min=0,max=23"`
}

type weeklyFields struct {
	Time *int   `validate:"required,min=0,max=23"`
	Day  string `validate:"required,weekday"`
}

type monthlyFields struct {
	Time *int `validate:"required,min=0,max=23"`
	Day  *int `validate:"required,min=1,max=31"`
}

// requirement is what one frequency needs from the form.
type requirement struct {
	missing string
	fields  func(c *Controller) any
	fill    func(c *Controller, d *domain.ScheduleDetails)
}

var requirements = map[domain.Frequency]requirement{
	domain.Daily: {
		missing: "Please select a time for the daily report and ensure all fields are filled.",
		fields: func(c *Controller) any {
			return dailyFields{Time: c.DailyTime}
		},
		fill: func(c *Controller, d *domain.ScheduleDetails) {
			d.DailyTime = c.DailyTime
		},
	},
	domain.Weekly: {
		missing: "Please select a time and day for the weekly report and ensure all fields are filled.",
		fields: func(c *Controller) any {
			return weeklyFields{Time: c.WeeklyTime, Day: c.WeeklyDay}
		},
		fill: func(c *Controller, d *domain.ScheduleDetails) {
			d.WeeklyTime = c.WeeklyTime
			d.WeeklyDay = c.WeeklyDay
		},
	},
	domain.Monthly: {
		missing: "Please select a time and day for the monthly report and ensure all fields are filled.",
		fields: func(c *Controller) any {
			return monthlyFields{Time: c.MonthlyTime, Day: c.MonthlyDay}
		},
		fill: func(c *Controller, d *domain.ScheduleDetails) {
			d.MonthlyTime = c.MonthlyTime
			d.MonthlyDay = c.MonthlyDay
		},
	},
}

// Details composes the schedule posted for freq from the form.
func (c *Controller) Details(freq domain.Frequency) domain.ScheduleDetails {
	var d domain.ScheduleDetails
	if c.selected != nil {
		d.ID = c.selected.ID
		d.Name = c.selected.Name
	}
	d.AssignedApprover = c.AssignedApprover
	d.AssignedReview = c.AssignedTo
	d.IsApproverRequired = c.IsApproverRequired
	d.ScheduledBy = c.session.Username()

	if req, ok := requirements[freq]; ok {
		req.fill(c, &d)
	}

	return d
}

// Schedule registers the selected template for recurring generation at
// freq. A template already scheduled at freq is refused before any request.
// The audit log is written first; its failure does not stop the schedule.
func (c *Controller) Schedule(ctx context.Context, freq domain.Frequency) error {
	const op = "export.Schedule"

	req, ok := requirements[freq]
	if !ok {
		return fmt.Errorf("%s: %w: %q", op, domain.ErrUnknownFrequency, freq)
	}

	username := c.session.Username()
	log := c.log.With(
		slog.String("op", op),
		slog.String("frequency", string(freq)),
		slog.String("username", username),
	)

	if c.selected == nil {
		c.notify.Alert(req.missing)
		return fmt.Errorf("%s: %w", op, domain.ErrTemplateNotSelected)
	}

	if err := c.validate.Struct(req.fields(c)); err != nil {
		log.Debug("Schedule fields invalid", slog.String("error", err.Error()))
		c.notify.Alert(req.missing)
		return fmt.Errorf("%s: %w", op, domain.ErrScheduleFields)
	}

	tmpl := *c.selected
	if c.IsScheduled(freq, tmpl.ID) {
		c.notify.Alert(fmt.Sprintf("This report is already scheduled for %s execution.", freq))
		return fmt.Errorf("%s: %w: template %d", op, domain.ErrDuplicateSchedule, tmpl.ID)
	}

	if username == "" {
		c.notify.Alert(msgNoUsername)
		return fmt.Errorf("%s: %w", op, domain.ErrNoUsername)
	}

	entry := domain.ScheduleLog{
		Username:     username,
		ReportType:   freq,
		TemplateID:   tmpl.ID,
		TemplateName: tmpl.Name,
	}
	if err := c.backend.LogScheduledReport(ctx, freq, entry); err != nil {
		log.Error(fmt.Sprintf("Error logging %s report scheduling", freq), slog.String("error", err.Error()))
	}

	details := c.Details(freq)
	log.Debug("Data to be sent", slog.Any("details", details))

	if err := c.backend.ScheduleReport(ctx, freq, details); err != nil {
		log.Error(fmt.Sprintf("Error scheduling %s report", freq), slog.String("error", err.Error()))
		c.notify.Message(fmt.Sprintf("Failed to schedule %s report.", freq))
		return fmt.Errorf("%s: %w", op, err)
	}

	c.notify.Alert(fmt.Sprintf("%s report scheduled successfully.", freq.Title()))
	c.submitted = true

	if err := c.loadScheduled(ctx, freq); err != nil {
		log.Warn("Error refreshing scheduled reports", slog.String("error", err.Error()))
	}
	// the refreshed list may not show the new schedule yet
	c.markScheduled(freq, tmpl.ID)

	log.Info("Report scheduled", slog.Int64("template_id", tmpl.ID))
	return nil
}

func (c *Controller) ScheduleDailyReport(ctx context.Context) error {
	return c.Schedule(ctx, domain.Daily)
}

func (c *Controller) ScheduleWeeklyReport(ctx context.Context) error {
	return c.Schedule(ctx, domain.Weekly)
}

func (c *Controller) ScheduleMonthlyReport(ctx context.Context) error {
	return c.Schedule(ctx, domain.Monthly)
}
