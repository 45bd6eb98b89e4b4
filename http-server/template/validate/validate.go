package validate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"reports-ui/http-server/response"
	"reports-ui/internal/domain"
	"reports-ui/internal/service/builder"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

type TemplateValidator interface {
	builder.Backend
}

type Response struct {
	response.Response
	Valid    bool                             `json:"valid"`
	Errors   builder.Errors                   `json:"errors"`
	Ranges   map[string]domain.ParameterRange `json:"ranges,omitempty"`
	Template domain.Template                  `json:"template"`
}

// ValidateTemplate runs the builder checks on a draft without saving it.
// The browser calls it before showing the confirmation popup.
func ValidateTemplate(log *slog.Logger, provider TemplateValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.ValidateTemplate"

		var draft builder.Draft
		if err := render.DecodeJSON(r.Body, &draft); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("Invalid JSON")
			response.BadRequest(w, r, "invalid JSON")
			return
		}

		rec := ui.NewRecorder()
		b := builder.New(provider, session.FromContext(r.Context()), rec, rec, log)
		accepted := b.Apply(draft)
		valid := b.RequestSubmit()

		resp := Response{
			Response: response.OK(rec),
			Valid:    valid,
			Errors:   b.Errors,
			Ranges:   b.RangeErrors(),
			Template: b.Template(),
		}

		status := http.StatusOK
		if !valid {
			resp.Status = response.StatusInvalid
			status = http.StatusUnprocessableEntity
		}
		if !accepted {
			resp.Error = domain.ErrParameterLimit.Error()
		}

		response.JSON(w, r, status, resp)
	}
}
