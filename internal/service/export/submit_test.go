package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reports-ui/internal/domain"
	"reports-ui/internal/logger"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

// completingSink knows when the download is done, like the CLI downloader.
type completingSink struct {
	*ui.Recorder
}

func (s completingSink) Deliver(_ context.Context, t *ui.Ticket) error {
	t.Completed = true
	t.File = "cold-room.xlsx"
	return nil
}

type blockedSink struct {
	*ui.Recorder
}

func (blockedSink) Open(context.Context, *ui.Ticket) error {
	return errors.New("no window")
}

// yesNotifier answers yes to every confirmation.
type yesNotifier struct {
	*ui.Recorder
}

func (n yesNotifier) Confirm(ctx context.Context, p ui.Prompt) (bool, error) {
	_, _ = n.Recorder.Confirm(ctx, p)
	return true, nil
}

func TestExportReport_DefersPromptWithoutCompletion(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be, WithReadyDelay(3*time.Second))

	be.On("LogGeneratedReport", mock.Anything, domain.GenerationLog{
		Username:   "operator",
		ReportID:   7,
		ReportName: "Cold room",
	}).Return(nil)
	be.On("ExportURL", domain.ExportQuery{
		TemplateID:       7,
		FromDate:         "03/14/2025 00:00",
		ToDate:           "03/14/2025 23:59",
		Username:         "operator",
		AssignedTo:       "anna",
		AssignedApprover: "",
	}).Return("http://backend/exportReport?id=7")

	require.NoError(t, c.Apply(Request{
		TemplateID:       7,
		PredefinedRange:  domain.RangeYesterday,
		AssignedTo:       "anna",
		AssignedApprover: "boris",
	}))

	require.NoError(t, c.Submit(context.Background()))
	be.AssertExpectations(t)

	fb := rec.Feedback()
	require.Len(t, fb.Tickets, 1)
	assert.Equal(t, "http://backend/exportReport?id=7", fb.Tickets[0].URL)
	assert.Equal(t, int64(7), fb.Tickets[0].TemplateID)
	assert.False(t, fb.Tickets[0].Completed)
	assert.Equal(t, []ui.Prompt{{Message: msgReportReady, After: 3 * time.Second}}, fb.Prompts)
	assert.Empty(t, fb.Redirect)
	assert.Equal(t, Submitted, c.State())
}

func TestExportReport_ConfirmedReturn(t *testing.T) {
	be := new(MockBackend)
	be.On("LogGeneratedReport", mock.Anything, mock.Anything).Return(nil)
	be.On("ExportURL", mock.MatchedBy(func(q domain.ExportQuery) bool {
		return q.AssignedApprover == "boris" && q.AssignedTo == "anna"
	})).Return("http://backend/exportReport?id=9")

	rec := ui.NewRecorder()
	c := New(be, session.Static("operator"), yesNotifier{rec}, rec, completingSink{rec}, logger.Discard(),
		WithReturnURL("http://app/reports"))
	c.templates = []domain.Template{boiler}

	require.NoError(t, c.SelectTemplate(9))
	require.NoError(t, c.SetDates("2025-03-01T00:00", "2025-03-02T00:00"))
	c.AssignedTo = "anna"
	c.AssignedApprover = "boris"
	c.IsApproverRequired = true

	require.NoError(t, c.Submit(context.Background()))

	fb := rec.Feedback()
	assert.Equal(t, []ui.Prompt{{Message: msgReportReady}}, fb.Prompts)
	assert.Equal(t, "http://app/reports", fb.Redirect)
	assert.True(t, fb.Tickets[0].Completed)
	assert.Equal(t, "cold-room.xlsx", fb.Tickets[0].File)
}

func TestExportReport_SinkUnavailable(t *testing.T) {
	be := new(MockBackend)
	rec := ui.NewRecorder()
	c := New(be, session.Static("operator"), rec, rec, blockedSink{rec}, logger.Discard())
	c.templates = []domain.Template{coldRoom}
	require.NoError(t, c.SelectTemplate(7))
	require.NoError(t, c.SetDates("2025-03-01T00:00", "2025-03-02T00:00"))

	err := c.ExportReport(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrSinkUnavailable)
	assert.Equal(t, []string{msgPopupBlocked}, rec.Feedback().Alerts)
	be.AssertNotCalled(t, "LogGeneratedReport", mock.Anything, mock.Anything)
}

func TestExportReport_LogFailureFailsTicket(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be)
	be.On("LogGeneratedReport", mock.Anything, mock.Anything).Return(errors.New("503"))

	require.NoError(t, c.SelectTemplate(7))
	require.NoError(t, c.SelectPredefinedRange(domain.RangeOneWeek))

	err := c.ExportReport(context.Background(), "")
	require.Error(t, err)

	fb := rec.Feedback()
	require.Len(t, fb.Tickets, 1)
	assert.Equal(t, "503", fb.Tickets[0].Error)
	assert.Empty(t, fb.Tickets[0].URL)
	assert.Equal(t, []string{msgExportFailed}, fb.Messages)
	assert.Empty(t, fb.Prompts)
	be.AssertNotCalled(t, "ExportURL", mock.Anything)
}

func TestExportReport_NoUsername(t *testing.T) {
	be := new(MockBackend)
	rec := ui.NewRecorder()
	c := New(be, session.Static(" "), rec, rec, rec, logger.Discard())
	c.templates = []domain.Template{coldRoom}
	require.NoError(t, c.SelectTemplate(7))
	require.NoError(t, c.SetDates("2025-03-01T00:00", "2025-03-02T00:00"))

	assert.ErrorIs(t, c.ExportReport(context.Background(), ""), domain.ErrNoUsername)
	assert.Empty(t, rec.Feedback().Tickets)
}

func TestSchedule_DuplicateRejectedBeforeRequests(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be)

	require.NoError(t, c.Apply(Request{
		TemplateID: 7,
		ExportType: domain.ExportSchedule,
		Frequency:  domain.Daily,
		AssignedTo: "anna",
		DailyTime:  domain.Int(6),
	}))

	err := c.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrDuplicateSchedule)
	assert.Equal(t, []string{"This report is already scheduled for daily execution."}, rec.Feedback().Alerts)
	be.AssertNotCalled(t, "LogScheduledReport", mock.Anything, mock.Anything, mock.Anything)
	be.AssertNotCalled(t, "ScheduleReport", mock.Anything, mock.Anything, mock.Anything)
	be.AssertNumberOfCalls(t, "ScheduledIDs", 3)
}

func TestSchedule_DailyRefetchesIDs(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be)

	be.On("LogScheduledReport", mock.Anything, domain.Daily, domain.ScheduleLog{
		Username:     "operator",
		ReportType:   domain.Daily,
		TemplateID:   9,
		TemplateName: "Boiler",
	}).Return(nil)
	be.On("ScheduleReport", mock.Anything, domain.Daily, domain.ScheduleDetails{
		ID:             9,
		Name:           "Boiler",
		AssignedReview: "anna",
		ScheduledBy:    "operator",
		DailyTime:      domain.Int(0),
	}).Return(nil)
	be.On("ScheduledIDs", mock.Anything, domain.Daily).Return([]int64{7, 9}, nil).Once()

	require.NoError(t, c.SelectTemplate(9))
	require.NoError(t, c.SetExportType(domain.ExportSchedule))
	c.Frequency = domain.Daily
	c.AssignedTo = "anna"
	c.DailyTime = domain.Int(0)

	require.NoError(t, c.Submit(context.Background()))

	be.AssertExpectations(t)
	assert.Equal(t, []string{"Daily report scheduled successfully."}, rec.Feedback().Alerts)
	assert.Equal(t, []int64{7, 9}, c.ScheduledIDs(domain.Daily))
	assert.Equal(t, Submitted, c.State())
}

func TestSchedule_StaleRefetchKeepsNewID(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be)

	be.On("LogScheduledReport", mock.Anything, domain.Daily, mock.Anything).Return(nil)
	be.On("ScheduleReport", mock.Anything, domain.Daily, mock.Anything).Return(nil).Once()
	be.On("ScheduledIDs", mock.Anything, domain.Daily).Return([]int64{7}, nil).Once()

	require.NoError(t, c.SelectTemplate(9))
	require.NoError(t, c.SetExportType(domain.ExportSchedule))
	c.Frequency = domain.Daily
	c.AssignedTo = "anna"
	c.DailyTime = domain.Int(6)

	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, []int64{7, 9}, c.ScheduledIDs(domain.Daily))

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, domain.ErrDuplicateSchedule)
	assert.Equal(t, "This report is already scheduled for daily execution.", rec.Feedback().Alerts[1])
	be.AssertNumberOfCalls(t, "ScheduleReport", 1)
}

func TestSchedule_LogFailureAndRefetchFailure(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be)

	be.On("LogScheduledReport", mock.Anything, domain.Weekly, mock.Anything).Return(errors.New("log down"))
	be.On("ScheduleReport", mock.Anything, domain.Weekly, mock.MatchedBy(func(d domain.ScheduleDetails) bool {
		return *d.WeeklyTime == 18 && d.WeeklyDay == "Friday" && d.DailyTime == nil && d.MonthlyDay == nil
	})).Return(nil)
	be.On("ScheduledIDs", mock.Anything, domain.Weekly).Return(nil, errors.New("refetch down")).Once()

	require.NoError(t, c.SelectTemplate(9))
	c.WeeklyTime = domain.Int(18)
	c.WeeklyDay = "Friday"

	require.NoError(t, c.ScheduleWeeklyReport(context.Background()))

	assert.Equal(t, []string{"Weekly report scheduled successfully."}, rec.Feedback().Alerts)
	assert.Equal(t, []int64{9}, c.ScheduledIDs(domain.Weekly))
	assert.True(t, c.IsScheduled(domain.Weekly, 9))
}

func TestSchedule_BackendFailure(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be)

	be.On("LogScheduledReport", mock.Anything, domain.Monthly, mock.Anything).Return(nil)
	be.On("ScheduleReport", mock.Anything, domain.Monthly, mock.Anything).Return(errors.New("500"))

	require.NoError(t, c.SelectTemplate(9))
	c.MonthlyDay = domain.Int(31)
	c.MonthlyTime = domain.Int(23)

	err := c.ScheduleMonthlyReport(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"Failed to schedule monthly report."}, rec.Feedback().Messages)
	assert.Empty(t, rec.Feedback().Alerts)
	assert.False(t, c.IsScheduled(domain.Monthly, 9))
	assert.Equal(t, TemplateSelected, c.State())
}

func TestSchedule_FieldRequirements(t *testing.T) {
	cases := []struct {
		name  string
		freq  domain.Frequency
		fill  func(c *Controller)
		alert string
	}{
		{
			name:  "daily without time",
			freq:  domain.Daily,
			fill:  func(c *Controller) {},
			alert: requirements[domain.Daily].missing,
		},
		{
			name: "daily hour out of range",
			freq: domain.Daily,
			fill: func(c *Controller) {
				c.DailyTime = domain.Int(24)
			},
			alert: requirements[domain.Daily].missing,
		},
		{
			name: "weekly without day",
			freq: domain.Weekly,
			fill: func(c *Controller) {
				c.WeeklyTime = domain.Int(9)
			},
			alert: requirements[domain.Weekly].missing,
		},
		{
			name: "weekly unknown day",
			freq: domain.Weekly,
			fill: func(c *Controller) {
				c.WeeklyTime = domain.Int(9)
				c.WeeklyDay = "Funday"
			},
			alert: requirements[domain.Weekly].missing,
		},
		{
			name: "monthly day 32",
			freq: domain.Monthly,
			fill: func(c *Controller) {
				c.MonthlyTime = domain.Int(9)
				c.MonthlyDay = domain.Int(32)
			},
			alert: requirements[domain.Monthly].missing,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			be := new(MockBackend)
			c, rec := loaded(t, be)
			require.NoError(t, c.SelectTemplate(9))
			tc.fill(c)

			err := c.Schedule(context.Background(), tc.freq)

			assert.ErrorIs(t, err, domain.ErrScheduleFields)
			assert.Equal(t, []string{tc.alert}, rec.Feedback().Alerts)
			be.AssertNotCalled(t, "LogScheduledReport", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSchedule_UnknownFrequency(t *testing.T) {
	c, rec := newController(new(MockBackend))
	assert.ErrorIs(t, c.Schedule(context.Background(), "hourly"), domain.ErrUnknownFrequency)
	assert.Empty(t, rec.Feedback().Alerts)
}

func TestApply_UnknownTemplate(t *testing.T) {
	be := new(MockBackend)
	c, rec := loaded(t, be)

	require.NoError(t, c.Apply(Request{TemplateID: 404, FromDate: "2025-03-01T00:00", ToDate: "2025-03-02T00:00"}))
	assert.Nil(t, c.Selected())

	assert.ErrorIs(t, c.Submit(context.Background()), domain.ErrTemplateNotSelected)
	assert.Equal(t, []string{msgSelectTemplate}, rec.Feedback().Alerts)

	assert.Error(t, c.Apply(Request{Frequency: "hourly"}))
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "05-03-2025 07:09", FormatDisplay(time.Date(2025, 3, 5, 7, 9, 0, 0, time.UTC)))
	assert.Empty(t, FormatDisplay(time.Time{}))
	assert.Len(t, Hours(), 24)
	assert.Equal(t, 31, Days()[30])
}
