// Package export is the controller behind the export form: it exports a
// report over a date range right away or registers a recurring schedule
// for it.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"reports-ui/internal/domain"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
	"reports-ui/internal/validation"
)

const (
	// InputLayout is the format of date inputs ("datetime-local").
	InputLayout = "2006-01-02T15:04"
	// QueryLayout is the date format the export endpoint expects.
	QueryLayout = "01/02/2006 15:04"
	// DisplayLayout is how dates are shown back to the user.
	DisplayLayout = "02-01-2006 15:04"

	DefaultReadyDelay = 8 * time.Second
	DefaultReturnURL  = "http://localhost:4200/reports"
)

type Backend interface {
	Templates(ctx context.Context) ([]domain.Template, error)
	Users(ctx context.Context) ([]domain.User, error)
	ScheduledIDs(ctx context.Context, freq domain.Frequency) ([]int64, error)
	LogGeneratedReport(ctx context.Context, entry domain.GenerationLog) error
	LogScheduledReport(ctx context.Context, freq domain.Frequency, entry domain.ScheduleLog) error
	ScheduleReport(ctx context.Context, freq domain.Frequency, details domain.ScheduleDetails) error
	ExportURL(q domain.ExportQuery) string
}

type State string

const (
	Idle                State = "idle"
	TemplateSelected    State = "template_selected"
	ManualReady         State = "manual_ready"
	ScheduleConfiguring State = "schedule_configuring"
	Submitted           State = "submitted"
)

// Controller holds one export form. Like the builder it serves a single
// user; only LoadAll runs concurrently.
type Controller struct {
	backend  Backend
	session  session.Session
	notify   ui.Notifier
	nav      ui.Navigator
	sink     ui.ReportSink
	log      *slog.Logger
	validate *validator.Validate

	now        func() time.Time
	readyDelay time.Duration
	returnURL  string

	mu        sync.RWMutex
	templates []domain.Template
	users     []domain.User
	scheduled map[domain.Frequency][]int64

	selected *domain.Template
	fromDate time.Time
	toDate   time.Time

	ExportType         domain.ExportType
	Frequency          domain.Frequency
	PredefinedRange    domain.RangeKind
	AssignedTo         string
	AssignedApprover   string
	IsApproverRequired bool

	DailyTime   *int
	WeeklyTime  *int
	WeeklyDay   string
	MonthlyTime *int
	MonthlyDay  *int

	DateError string

	submitted bool
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithReadyDelay sets how long the return prompt waits when the sink cannot
// tell that the report finished.
func WithReadyDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.readyDelay = d
	}
}

func WithReturnURL(u string) Option {
	return func(c *Controller) {
		c.returnURL = u
	}
}

func New(
	backend Backend,
	sess session.Session,
	notify ui.Notifier,
	nav ui.Navigator,
	sink ui.ReportSink,
	log *slog.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		backend:    backend,
		session:    sess,
		notify:     notify,
		nav:        nav,
		sink:       sink,
		log:        log,
		validate:   validation.New(),
		now:        time.Now,
		readyDelay: DefaultReadyDelay,
		returnURL:  DefaultReturnURL,
		scheduled:  make(map[domain.Frequency][]int64, len(domain.Frequencies)),
		ExportType: domain.ExportManual,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// LoadAll fetches templates, users and the scheduled ids of every frequency.
// The loads are independent: a failure leaves only its own list empty.
func (c *Controller) LoadAll(ctx context.Context) error {
	const op = "export.LoadAll"
	log := c.log.With(slog.String("op", op))

	var (
		g    errgroup.Group
		errs = make([]error, 2+len(domain.Frequencies))
	)

	g.Go(func() error {
		templates, err := c.backend.Templates(ctx)
		if err != nil {
			log.Error("Error fetching templates", slog.String("error", err.Error()))
			errs[0] = err
			return nil
		}

		c.mu.Lock()
		c.templates = templates
		c.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		users, err := c.backend.Users(ctx)
		if err != nil {
			log.Error("Error fetching users", slog.String("error", err.Error()))
			errs[1] = err
			return nil
		}

		c.mu.Lock()
		c.users = users
		c.mu.Unlock()
		return nil
	})

	for i, freq := range domain.Frequencies {
		i, freq := i, freq
		g.Go(func() error {
			if err := c.loadScheduled(ctx, freq); err != nil {
				log.Error("Error fetching scheduled reports",
					slog.String("frequency", string(freq)),
					slog.String("error", err.Error()),
				)
				errs[2+i] = err
			}
			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}

func (c *Controller) loadScheduled(ctx context.Context, freq domain.Frequency) error {
	ids, err := c.backend.ScheduledIDs(ctx, freq)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.scheduled[freq] = ids
	c.mu.Unlock()
	return nil
}

func (c *Controller) Templates() []domain.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.templates)
}

func (c *Controller) Users() []domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.users)
}

func (c *Controller) ScheduledIDs(freq domain.Frequency) []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.scheduled[freq])
}

// IsScheduled reports whether id is in the loaded schedule list of freq.
func (c *Controller) IsScheduled(freq domain.Frequency, id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.scheduled[freq], id)
}

func (c *Controller) markScheduled(freq domain.Frequency, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.scheduled[freq], id) {
		c.scheduled[freq] = append(c.scheduled[freq], id)
	}
}

// SelectTemplate picks one of the loaded templates by id.
func (c *Controller) SelectTemplate(id int64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := slices.IndexFunc(c.templates, func(t domain.Template) bool { return t.ID == id })
	if i < 0 {
		return fmt.Errorf("export.SelectTemplate: %w: id %d", domain.ErrTemplateNotSelected, id)
	}

	tmpl := c.templates[i]
	c.selected = &tmpl
	c.submitted = false
	return nil
}

// Selected returns the chosen template, nil when none is.
func (c *Controller) Selected() *domain.Template {
	return c.selected
}

func (c *Controller) State() State {
	switch {
	case c.selected == nil:
		return Idle
	case c.submitted:
		return Submitted
	case c.ExportType == domain.ExportManual && !c.fromDate.IsZero() && !c.toDate.IsZero():
		return ManualReady
	case c.ExportType == domain.ExportSchedule && c.Frequency != "":
		return ScheduleConfiguring
	default:
		return TemplateSelected
	}
}

// SetExportType switches between manual export and scheduling. Dates,
// frequency and the predefined range are cleared.
func (c *Controller) SetExportType(t domain.ExportType) error {
	switch t {
	case domain.ExportManual, domain.ExportSchedule:
	default:
		return fmt.Errorf("export.SetExportType: %w: %q", domain.ErrUnknownExportType, t)
	}

	c.ExportType = t
	c.fromDate, c.toDate = time.Time{}, time.Time{}
	c.Frequency = ""
	c.PredefinedRange = ""
	c.DateError = ""
	c.submitted = false
	return nil
}

// SelectPredefinedRange fills both dates from kind, relative to the clock.
// Ranges end today at 23:59, except yesterday which covers that whole day.
func (c *Controller) SelectPredefinedRange(kind domain.RangeKind) error {
	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := 23*time.Hour + 59*time.Minute

	var from, to time.Time
	switch kind {
	case domain.RangeYesterday:
		from = today.AddDate(0, 0, -1)
		to = from.Add(endOfDay)
	case domain.RangeOneWeek:
		from = today.AddDate(0, 0, -7)
		to = today.Add(endOfDay)
	case domain.RangeOneMonth:
		from = today.AddDate(0, -1, 0)
		to = today.Add(endOfDay)
	default:
		return fmt.Errorf("export.SelectPredefinedRange: %w: %q", domain.ErrUnknownRange, kind)
	}

	c.PredefinedRange = kind
	c.fromDate, c.toDate = from, to
	c.submitted = false
	return nil
}

// SetDates sets the range from datetime-local inputs. An empty input
// clears its side.
func (c *Controller) SetDates(from, to string) error {
	const op = "export.SetDates"

	f, err := c.parseInput(from)
	if err != nil {
		return fmt.Errorf("%s: from date: %w", op, err)
	}
	t, err := c.parseInput(to)
	if err != nil {
		return fmt.Errorf("%s: to date: %w", op, err)
	}

	c.fromDate, c.toDate = f, t
	c.submitted = false
	return nil
}

func (c *Controller) parseInput(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(InputLayout, s, c.now().Location())
}

// Dates returns the range in input format; unset sides are empty.
func (c *Controller) Dates() (from, to string) {
	return formatInput(c.fromDate), formatInput(c.toDate)
}

func formatInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(InputLayout)
}

// ValidateDateRange checks that a manual range ends after it starts. It
// only judges complete ranges.
func (c *Controller) ValidateDateRange() bool {
	c.DateError = ""

	if c.ExportType == domain.ExportManual && !c.fromDate.IsZero() && !c.toDate.IsZero() {
		if !c.toDate.After(c.fromDate) {
			c.DateError = msgDateOrder
			return false
		}
	}

	return true
}

// FormatDisplay renders t the way dates are shown in the form.
func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayLayout)
}

// Hours lists the hours a schedule can run at.
func Hours() []int {
	out := make([]int, 24)
	for i := range out {
		out[i] = i
	}
	return out
}

// Days lists the days of the month a monthly schedule can run on.
func Days() []int {
	out := make([]int, 31)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// DateRange returns the selected range; unset sides are zero.
func (c *Controller) DateRange() (from, to time.Time) {
	return c.fromDate, c.toDate
}

func (c *Controller) ReturnURL() string {
	return c.returnURL
}

func (c *Controller) ReadyDelay() time.Duration {
	return c.readyDelay
}
