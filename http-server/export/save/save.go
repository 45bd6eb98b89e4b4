package save

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"reports-ui/http-server/response"
	"reports-ui/internal/domain"
	"reports-ui/internal/service/export"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

type ExportProvider interface {
	export.Backend
}

type Response struct {
	response.Response
	State     export.State `json:"state"`
	DateError string       `json:"date_error,omitempty"`
	Ticket    *ui.Ticket   `json:"ticket,omitempty"`
}

// SaveExport runs a manual export. The browser opens the returned ticket URL
// and shows the deferred return prompt from the response.
func SaveExport(log *slog.Logger, provider ExportProvider, opts ...export.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.export.SaveExport"
		log := log.With(slog.String("op", op))

		var req export.Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Warn("Invalid JSON", slog.String("error", err.Error()))
			response.BadRequest(w, r, "invalid JSON")
			return
		}
		req.ExportType = domain.ExportManual

		ctx, cancel := context.WithTimeout(r.Context(), response.RequestTimeout)
		defer cancel()

		rec := ui.NewRecorder()
		c := export.New(provider, session.FromContext(r.Context()), rec, rec, rec, log, opts...)

		if err := c.LoadAll(ctx); err != nil {
			log.Warn("Export form restored with partial data")
		}

		if err := c.Apply(req); err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		err := c.Submit(ctx)

		var resp Response
		status := http.StatusOK
		if err != nil {
			resp.Response, status = response.Fail(rec, err)
		} else {
			resp.Response = response.OK(rec)
		}

		resp.State = c.State()
		resp.DateError = c.DateError
		if tickets := resp.Tickets; len(tickets) > 0 {
			resp.Ticket = tickets[len(tickets)-1]
		}

		response.JSON(w, r, status, resp)
	}
}
