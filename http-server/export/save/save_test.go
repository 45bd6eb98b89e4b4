package save

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reports-ui/internal/backend"
	"reports-ui/internal/domain"
	"reports-ui/internal/logger"
	"reports-ui/internal/service/export"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

// fakeBackend serves the reference data and records generation logs.
type fakeBackend struct {
	mu       sync.Mutex
	logged   []domain.GenerationLog
	failLogs bool
}

func (f *fakeBackend) router(t *testing.T) chi.Router {
	r := chi.NewRouter()
	r.Get("/templates", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, []domain.Template{{ID: 7, Name: "Cold room"}})
	})
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, []domain.User{{ID: 1, Username: "anna"}, {ID: 2, Username: "boris"}})
	})
	r.Get("/get-all-{freq}-scheduled-reports", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, []int64{})
	})
	r.Post("/log-generated-report", func(w http.ResponseWriter, r *http.Request) {
		if f.failLogs {
			http.Error(w, "log table locked", http.StatusServiceUnavailable)
			return
		}

		var entry domain.GenerationLog
		assert.NoError(t, render.DecodeJSON(r.Body, &entry))
		f.mu.Lock()
		f.logged = append(f.logged, entry)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func exportRequest(t *testing.T, f *fakeBackend, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	srv := httptest.NewServer(f.router(t))
	t.Cleanup(srv.Close)
	client := backend.New(srv.URL, 2*time.Second)

	handler := SaveExport(logger.Discard(), client, export.WithReadyDelay(5*time.Second))

	req := httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader(body))
	req = req.WithContext(session.WithUsername(req.Context(), "operator"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp Response
	if rr.Code != http.StatusBadRequest {
		require.NoError(t, render.DecodeJSON(rr.Body, &resp))
	}
	return rr, resp
}

func TestSaveExport_Success(t *testing.T) {
	f := &fakeBackend{}

	rr, resp := exportRequest(t, f, `{
		"template_id": 7,
		"from_date": "2025-03-01T08:00",
		"to_date": "2025-03-02T17:30",
		"assigned_to": "anna",
		"assigned_approver": "boris",
		"is_approver_required": true
	}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, export.Submitted, resp.State)
	assert.Equal(t, []domain.GenerationLog{{Username: "operator", ReportID: 7, ReportName: "Cold room"}}, f.logged)

	require.NotNil(t, resp.Ticket)
	u, err := url.Parse(resp.Ticket.URL)
	require.NoError(t, err)
	assert.Equal(t, "/exportReport", u.Path)
	q := u.Query()
	assert.Equal(t, "7", q.Get("id"))
	assert.Equal(t, "03/01/2025 08:00", q.Get("fromDate"))
	assert.Equal(t, "03/02/2025 17:30", q.Get("toDate"))
	assert.Equal(t, "operator", q.Get("username"))
	assert.Equal(t, "anna", q.Get("assignedTo"))
	assert.Equal(t, "boris", q.Get("assigned_approver"))

	assert.Equal(t, []ui.Prompt{{
		Message: "Report generated successfully. Click OK to return to the app.",
		After:   5 * time.Second,
	}}, resp.Prompts)
}

func TestSaveExport_DateOrder(t *testing.T) {
	f := &fakeBackend{}

	rr, resp := exportRequest(t, f, `{
		"template_id": 7,
		"from_date": "2025-03-02T08:00",
		"to_date": "2025-03-02T08:00"
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "To Date must be after From Date.", resp.DateError)
	assert.Nil(t, resp.Ticket)
	assert.Empty(t, f.logged)
}

func TestSaveExport_MissingTemplate(t *testing.T) {
	f := &fakeBackend{}

	rr, resp := exportRequest(t, f, `{"predefined_report": "oneWeek"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, []string{"Please select a template."}, resp.Alerts)
	assert.Equal(t, export.Idle, resp.State)
}

func TestSaveExport_LogFailure(t *testing.T) {
	f := &fakeBackend{failLogs: true}

	rr, resp := exportRequest(t, f, `{"template_id": 7, "predefined_report": "yesterday"}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	require.NotNil(t, resp.Ticket)
	assert.Contains(t, resp.Ticket.Error, "503")
	assert.Equal(t, []string{"Failed to generate report. Please try again later."}, resp.Messages)
	assert.Equal(t, export.ManualReady, resp.State)
}

func TestSaveExport_BadDate(t *testing.T) {
	rr, _ := exportRequest(t, &fakeBackend{}, `{"template_id": 7, "from_date": "yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
