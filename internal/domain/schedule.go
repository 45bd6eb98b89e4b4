package domain

import (
	"fmt"
	"strings"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

var Frequencies = []Frequency{Daily, Weekly, Monthly}

func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case Daily, Weekly, Monthly:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

// Title is used in user-facing messages ("Daily report scheduled successfully.").
func (f Frequency) Title() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

type ScheduleDetails struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	AssignedApprover   string `json:"assignedApprover"`
	AssignedReview     string `json:"assignedReview"`
	IsApproverRequired bool   `json:"isApproverRequired"`
	ScheduledBy        string `json:"scheduledBy"`

	DailyTime   *int   `json:"dailyTime,omitempty"`
	WeeklyTime  *int   `json:"weeklyTime,omitempty"`
	WeeklyDay   string `json:"weeklyDay,omitempty"`
	MonthlyTime *int   `json:"monthlyTime,omitempty"`
	MonthlyDay  *int   `json:"monthlyDay,omitempty"`
}

type ScheduleLog struct {
	Username     string    `json:"username"`
	ReportType   Frequency `json:"reportType"`
	TemplateID   int64     `json:"templateId"`
	TemplateName string    `json:"templateName"`
}

type GenerationLog struct {
	Username   string `json:"username"`
	ReportID   int64  `json:"reportId"`
	ReportName string `json:"reportName"`
}

type ExportType string

const (
	ExportManual   ExportType = "manual"
	ExportSchedule ExportType = "schedule"
)

type RangeKind string

const (
	RangeYesterday RangeKind = "yesterday"
	RangeOneWeek   RangeKind = "oneWeek"
	RangeOneMonth  RangeKind = "oneMonth"
)

// ExportQuery carries the query string of the /exportReport download.
type ExportQuery struct {
	TemplateID       int64
	FromDate         string
	ToDate           string
	Username         string
	AssignedTo       string
	AssignedApprover string
}

func Int(v int) *int {
	return &v
}
