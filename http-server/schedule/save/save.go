package save

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"reports-ui/http-server/response"
	"reports-ui/internal/domain"
	"reports-ui/internal/service/export"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

type ScheduleProvider interface {
	export.Backend
}

type Response struct {
	response.Response
	State        export.State `json:"state"`
	ScheduledIDs []int64      `json:"scheduled_ids,omitempty"`
}

// SaveSchedule registers a recurring report. The frequency comes from the
// {frequency} path parameter when the route has one, else from the body.
func SaveSchedule(log *slog.Logger, provider ScheduleProvider, opts ...export.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.SaveSchedule"
		log := log.With(slog.String("op", op))

		var req export.Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Warn("Invalid JSON", slog.String("error", err.Error()))
			response.BadRequest(w, r, "invalid JSON")
			return
		}
		req.ExportType = domain.ExportSchedule
		if f := chi.URLParam(r, "frequency"); f != "" {
			req.Frequency = domain.Frequency(f)
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.RequestTimeout)
		defer cancel()

		rec := ui.NewRecorder()
		c := export.New(provider, session.FromContext(r.Context()), rec, rec, rec, log, opts...)

		if err := c.LoadAll(ctx); err != nil {
			log.Warn("Schedule form restored with partial data")
		}

		if err := c.Apply(req); err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		if err := c.Submit(ctx); err != nil {
			resp, status := response.Fail(rec, err)
			response.JSON(w, r, status, Response{Response: resp, State: c.State()})
			return
		}

		resp := response.OK(rec)
		resp.Status = "created"
		render.JSON(w, r, Response{
			Response:     resp,
			State:        c.State(),
			ScheduledIDs: c.ScheduledIDs(c.Frequency),
		})
	}
}
