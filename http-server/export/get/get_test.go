package get

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reports-ui/internal/domain"
	"reports-ui/internal/logger"
	"reports-ui/internal/service/export"
	"reports-ui/internal/session"
)

type MockExportFormProvider struct {
	mock.Mock
}

func (m *MockExportFormProvider) Templates(ctx context.Context) ([]domain.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Template), args.Error(1)
}

func (m *MockExportFormProvider) Users(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockExportFormProvider) ScheduledIDs(ctx context.Context, freq domain.Frequency) ([]int64, error) {
	args := m.Called(ctx, freq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockExportFormProvider) LogGeneratedReport(ctx context.Context, entry domain.GenerationLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockExportFormProvider) LogScheduledReport(ctx context.Context, freq domain.Frequency, entry domain.ScheduleLog) error {
	return m.Called(ctx, freq, entry).Error(0)
}

func (m *MockExportFormProvider) ScheduleReport(ctx context.Context, freq domain.Frequency, details domain.ScheduleDetails) error {
	return m.Called(ctx, freq, details).Error(0)
}

func (m *MockExportFormProvider) ExportURL(q domain.ExportQuery) string {
	return m.Called(q).String(0)
}

func TestGetExportForm(t *testing.T) {
	provider := new(MockExportFormProvider)
	provider.On("Templates", mock.Anything).Return([]domain.Template{{ID: 7, Name: "Cold room"}}, nil)
	provider.On("Users", mock.Anything).Return(nil, errors.New("users down"))
	provider.On("ScheduledIDs", mock.Anything, domain.Daily).Return([]int64{7}, nil)
	provider.On("ScheduledIDs", mock.Anything, domain.Weekly).Return(nil, errors.New("weekly down"))
	provider.On("ScheduledIDs", mock.Anything, domain.Monthly).Return([]int64{}, nil)

	handler := GetExportForm(logger.Discard(), provider, export.WithReturnURL("http://app/reports"))

	req := httptest.NewRequest(http.MethodGet, "/api/export-form", nil)
	req = req.WithContext(session.WithUsername(req.Context(), "operator"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ResponseForm
	require.NoError(t, render.DecodeJSON(rr.Body, &resp))

	assert.Equal(t, []domain.Template{{ID: 7, Name: "Cold room"}}, resp.Templates)
	assert.Empty(t, resp.Users)
	assert.Equal(t, map[domain.Frequency][]int64{
		domain.Daily:   {7},
		domain.Weekly:  {},
		domain.Monthly: {},
	}, resp.Scheduled)
	assert.Len(t, resp.Hours, 24)
	assert.Len(t, resp.Days, 31)
	assert.Equal(t, "Monday", resp.Weekdays[0])
	assert.Equal(t, "Sunday", resp.Weekdays[6])
	assert.Equal(t, "operator", resp.Username)
	assert.Equal(t, "http://app/reports", resp.ReturnURL)
	assert.Equal(t, 8*time.Second, resp.ReadyDelay)
}

func TestGetRange(t *testing.T) {
	clock := export.WithClock(func() time.Time {
		return time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	})
	handler := GetRange(logger.Discard(), new(MockExportFormProvider), clock)

	req := httptest.NewRequest(http.MethodGet, "/api/export-form/range?kind=yesterday", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ResponseRange
	require.NoError(t, render.DecodeJSON(rr.Body, &resp))
	assert.Equal(t, "2025-03-14T00:00", resp.FromDate)
	assert.Equal(t, "2025-03-14T23:59", resp.ToDate)
	assert.Equal(t, "14-03-2025 00:00", resp.FromDisplay)
	assert.Equal(t, "14-03-2025 23:59", resp.ToDisplay)
}

func TestGetRange_Unknown(t *testing.T) {
	handler := GetRange(logger.Discard(), new(MockExportFormProvider))

	req := httptest.NewRequest(http.MethodGet, "/api/export-form/range?kind=decade", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown predefined range")
}
