package get

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

type TemplateFormProvider interface {
	builder.Backend
}

type Parameter struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type ResponseForm struct {
	response.Response
	Parameters            []Parameter            `json:"parameters"`
	Groups                []string               `json:"groups"`
	AdditionalInfoOptions []string               `json:"additional_info_options"`
	MaxParameters         int                    `json:"max_parameters"`
	MaxReportNameLength   int                    `json:"max_report_name_length"`
	DefaultRange          *domain.ParameterRange `json:"default_range"`
}

// GetTemplateForm returns what the builder form needs to render: the
// parameter catalog (optionally filtered by ?search=), the groups and the
// fixed options. A failed catalog load degrades to an empty list.
func GetTemplateForm(log *slog.Logger, provider TemplateFormProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetTemplateForm"

		ctx, cancel := context.WithTimeout(r.Context(), response.RequestTimeout)
		defer cancel()

		rec := ui.NewRecorder()
		b := builder.New(provider, session.FromContext(r.Context()), rec, rec, log)

		if err := b.LoadReferenceData(ctx); err != nil {
			log.With(slog.String("op", op)).Warn("Template form served with partial data")
		}

		b.SearchTerm = r.URL.Query().Get("search")

		params := b.FilteredParameters()
		out := make([]Parameter, 0, len(params))
		for _, p := range params {
			out = append(out, Parameter{Name: p, DisplayName: domain.DisplayName(p)})
		}

		render.JSON(w, r, ResponseForm{
			Response:              response.OK(rec),
			Parameters:            out,
			Groups:                nonNil(b.Groups()),
			AdditionalInfoOptions: domain.AdditionalInfoOptions,
			MaxParameters:         domain.MaxParameters,
			MaxReportNameLength:   domain.MaxReportNameLen,
			DefaultRange:          domain.DefaultRange(),
		})
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
