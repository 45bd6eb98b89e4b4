package save

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"reports-ui/http-server/response"
	"reports-ui/internal/domain"
	"reports-ui/internal/service/builder"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

type TemplateCreateProvider interface {
	builder.Backend
}

type Response struct {
	response.Response
	Errors builder.Errors                   `json:"errors"`
	Ranges map[string]domain.ParameterRange `json:"ranges,omitempty"`
}

// SaveTemplate restores the submitted draft into a builder and submits it.
// On success the response tells the browser to go back to the list.
func SaveTemplate(log *slog.Logger, provider TemplateCreateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.SaveTemplate"

		var draft builder.Draft
		if err := render.DecodeJSON(r.Body, &draft); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("Invalid JSON")
			response.BadRequest(w, r, "invalid JSON")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), response.RequestTimeout)
		defer cancel()

		rec := ui.NewRecorder()
		b := builder.New(provider, session.FromContext(r.Context()), rec, rec, log)
		if !b.Apply(draft) {
			b.Validate()
			resp, status := response.Fail(rec, domain.ErrParameterLimit)
			response.JSON(w, r, status, Response{
				Response: resp,
				Errors:   b.Errors,
				Ranges:   b.RangeErrors(),
			})
			return
		}

		if err := b.Submit(ctx); err != nil {
			resp, status := response.Fail(rec, err)
			response.JSON(w, r, status, Response{
				Response: resp,
				Errors:   b.Errors,
				Ranges:   b.RangeErrors(),
			})
			return
		}

		resp := response.OK(rec)
		resp.Status = "created"
		render.JSON(w, r, Response{Response: resp})
	}
}
