package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"reports-ui/http-server/response"
	"reports-ui/internal/domain"
	"reports-ui/internal/service/export"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

type ExportFormProvider interface {
	export.Backend
}

type ResponseForm struct {
	response.Response
	Templates  []domain.Template            `json:"templates"`
	Users      []domain.User                `json:"users"`
	Scheduled  map[domain.Frequency][]int64 `json:"scheduled"`
	Hours      []int                        `json:"hours"`
	Days       []int                        `json:"days"`
	Weekdays   []string                     `json:"weekdays"`
	Ranges     []domain.RangeKind           `json:"ranges"`
	Username   string                       `json:"username"`
	ReturnURL  string                       `json:"return_url,omitempty"`
	ReadyDelay time.Duration                `json:"ready_delay"`
}

var weekdays = func() []string {
	out := make([]string, 0, 7)
	for d := time.Monday; d <= time.Saturday; d++ {
		out = append(out, d.String())
	}
	return append(out, time.Sunday.String())
}()

// GetExportForm loads everything the export form shows. Lists whose load
// failed come back empty.
func GetExportForm(log *slog.Logger, provider ExportFormProvider, opts ...export.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.export.GetExportForm"

		ctx, cancel := context.WithTimeout(r.Context(), response.RequestTimeout)
		defer cancel()

		rec := ui.NewRecorder()
		sess := session.FromContext(r.Context())
		c := export.New(provider, sess, rec, rec, rec, log, opts...)

		if err := c.LoadAll(ctx); err != nil {
			log.With(slog.String("op", op)).Warn("Export form served with partial data")
		}

		scheduled := make(map[domain.Frequency][]int64, len(domain.Frequencies))
		for _, f := range domain.Frequencies {
			ids := c.ScheduledIDs(f)
			if ids == nil {
				ids = []int64{}
			}
			scheduled[f] = ids
		}

		templates := c.Templates()
		if templates == nil {
			templates = []domain.Template{}
		}
		users := c.Users()
		if users == nil {
			users = []domain.User{}
		}

		render.JSON(w, r, ResponseForm{
			Response:   response.OK(rec),
			Templates:  templates,
			Users:      users,
			Scheduled:  scheduled,
			Hours:      export.Hours(),
			Days:       export.Days(),
			Weekdays:   weekdays,
			Ranges:     []domain.RangeKind{domain.RangeYesterday, domain.RangeOneWeek, domain.RangeOneMonth},
			Username:   sess.Username(),
			ReturnURL:  c.ReturnURL(),
			ReadyDelay: c.ReadyDelay(),
		})
	}
}

type ResponseRange struct {
	response.Response
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
	FromDisplay string `json:"from_display"`
	ToDisplay   string `json:"to_display"`
}

// GetRange resolves ?kind= (yesterday, oneWeek, oneMonth) to concrete dates.
func GetRange(log *slog.Logger, provider ExportFormProvider, opts ...export.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.export.GetRange"

		kind := domain.RangeKind(r.URL.Query().Get("kind"))

		rec := ui.NewRecorder()
		c := export.New(provider, session.FromContext(r.Context()), rec, rec, rec, log, opts...)

		if err := c.SelectPredefinedRange(kind); err != nil {
			log.With(slog.String("op", op), slog.String("kind", string(kind))).Warn("Unknown range")
			resp, status := response.Fail(rec, err)
			response.JSON(w, r, status, ResponseRange{Response: resp})
			return
		}

		from, to := c.Dates()
		fromT, toT := c.DateRange()

		render.JSON(w, r, ResponseRange{
			Response:    response.OK(rec),
			FromDate:    from,
			ToDate:      to,
			FromDisplay: export.FormatDisplay(fromT),
			ToDisplay:   export.FormatDisplay(toT),
		})
	}
}
