package export

import (
	"fmt"
	"log/slog"

	"reports-ui/internal/domain"
)

// Request is the export form as submitted in one go by the HTTP API or the
// CLI.
type Request struct {
	TemplateID         int64             `json:"template_id" yaml:"template_id"`
	ExportType         domain.ExportType `json:"export_type" yaml:"export_type"`
	PredefinedRange    domain.RangeKind  `json:"predefined_report,omitempty" yaml:"predefined_report,omitempty"`
	FromDate           string            `json:"from_date,omitempty" yaml:"from_date,omitempty"`
	ToDate             string            `json:"to_date,omitempty" yaml:"to_date,omitempty"`
	Frequency          domain.Frequency  `json:"schedule_frequency,omitempty" yaml:"schedule_frequency,omitempty"`
	AssignedTo         string            `json:"assigned_to,omitempty" yaml:"assigned_to,omitempty"`
	AssignedApprover   string            `json:"assigned_approver,omitempty" yaml:"assigned_approver,omitempty"`
	IsApproverRequired bool              `json:"is_approver_required" yaml:"is_approver_required"`

	DailyTime   *int   `json:"daily_time,omitempty" yaml:"daily_time,omitempty"`
	WeeklyTime  *int   `json:"weekly_time,omitempty" yaml:"weekly_time,omitempty"`
	WeeklyDay   string `json:"weekly_day,omitempty" yaml:"weekly_day,omitempty"`
	MonthlyTime *int   `json:"monthly_time,omitempty" yaml:"monthly_time,omitempty"`
	MonthlyDay  *int   `json:"monthly_day,omitempty" yaml:"monthly_day,omitempty"`
}

// Apply fills the form from r in the order a user would: template, export
// type, dates, then assignments. An unknown template id leaves the form
// without a selection, so Submit alerts as it would for an empty choice.
func (c *Controller) Apply(r Request) error {
	const op = "export.Apply"

	if r.ExportType == "" {
		r.ExportType = domain.ExportManual
	}
	if err := c.SetExportType(r.ExportType); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.selected = nil
	if r.TemplateID != 0 {
		if err := c.SelectTemplate(r.TemplateID); err != nil {
			c.log.Warn("Unknown template", slog.String("op", op), slog.Int64("template_id", r.TemplateID))
		}
	}

	if r.PredefinedRange != "" {
		if err := c.SelectPredefinedRange(r.PredefinedRange); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	} else if err := c.SetDates(r.FromDate, r.ToDate); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if r.Frequency != "" {
		freq, err := domain.ParseFrequency(string(r.Frequency))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.Frequency = freq
	}

	c.AssignedTo = r.AssignedTo
	c.AssignedApprover = r.AssignedApprover
	c.IsApproverRequired = r.IsApproverRequired
	c.DailyTime = r.DailyTime
	c.WeeklyTime = r.WeeklyTime
	c.WeeklyDay = r.WeeklyDay
	c.MonthlyTime = r.MonthlyTime
	c.MonthlyDay = r.MonthlyDay

	return nil
}
