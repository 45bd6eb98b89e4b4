package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"reports-ui/internal/domain"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
	"reports-ui/internal/validation"
)

// ListView is where the builder goes after a template is saved.
const ListView = "list"

const (
	msgParameterLimit = "You can select a maximum of 12 parameters."
	msgRangeAlert     = `Please enter a valid range for selected parameters with "Add Range & Units" checked.`
	msgRangeError     = "Start range must be less than end range"
	msgUnitError      = "Unit cannot contain '_'"
	msgCreated        = "Template added successfully"
	msgCreateFailed   = "Failed to create template."
	msgGroupEmpty     = "Group name cannot be empty."
	msgGroupAdded     = "Group added!"
	msgGroupFailed    = "Failed to add group."
)

type Backend interface {
	Parameters(ctx context.Context) ([]string, error)
	Groups(ctx context.Context) ([]domain.Group, error)
	AddGroup(ctx context.Context, group domain.Group) error
	CreateTemplate(ctx context.Context, t domain.Template) error
}

type Errors struct {
	ReportName     string `json:"report_name,omitempty"`
	GroupName      string `json:"group_name,omitempty"`
	Parameters     string `json:"parameters,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
	RoomID         string `json:"room_id,omitempty"`
	RoomName       string `json:"room_name,omitempty"`
}

func (e Errors) Empty() bool {
	return e == Errors{}
}

// Builder is the template creation form. One Builder serves one form
// session and is not meant for concurrent use, except LoadReferenceData
// which fills the catalogs in the background.
type Builder struct {
	backend  Backend
	session  session.Session
	notify   ui.Notifier
	nav      ui.Navigator
	log      *slog.Logger
	validate *validator.Validate

	mu         sync.RWMutex
	parameters []string
	groups     []string

	ReportName string
	GroupName  string
	RoomID     string
	RoomName   string
	SearchTerm string

	selected       []string
	ranges         map[string]*domain.ParameterRange
	additionalInfo []string
	// dropped holds parameters a replayed draft asked for beyond the cap.
	dropped []string

	Errors Errors

	PopupVisible    bool
	ShowGroupPopup  bool
	NewGroupName    string
	AddGroupMessage string
}

func New(backend Backend, sess session.Session, notify ui.Notifier, nav ui.Navigator, log *slog.Logger) *Builder {
	return &Builder{
		backend:  backend,
		session:  sess,
		notify:   notify,
		nav:      nav,
		log:      log,
		validate: validation.New(),
		ranges:   make(map[string]*domain.ParameterRange),
	}
}

// LoadReferenceData fetches the parameter catalog and the group names.
// A failed load leaves its list empty; the other one still fills in.
func (b *Builder) LoadReferenceData(ctx context.Context) error {
	const op = "builder.LoadReferenceData"
	log := b.log.With(slog.String("op", op))

	var (
		g                  errgroup.Group
		paramErr, groupErr error
	)

	g.Go(func() error {
		params, err := b.backend.Parameters(ctx)
		if err != nil {
			log.Error("Error fetching parameters", slog.String("error", err.Error()))
			paramErr = err
			return nil
		}

		b.mu.Lock()
		b.parameters = params
		b.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		groupErr = b.fetchGroups(ctx)
		if groupErr != nil {
			log.Error("Error fetching group names", slog.String("error", groupErr.Error()))
		}
		return nil
	})

	_ = g.Wait()

	return errors.Join(paramErr, groupErr)
}

func (b *Builder) fetchGroups(ctx context.Context) error {
	groups, err := b.backend.Groups(ctx)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}

	b.mu.Lock()
	b.groups = names
	b.mu.Unlock()
	return nil
}

func (b *Builder) Parameters() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.parameters)
}

func (b *Builder) Groups() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.groups)
}

// FilteredParameters applies SearchTerm to the catalog, ignoring case.
func (b *Builder) FilteredParameters() []string {
	params := b.Parameters()
	if b.SearchTerm == "" {
		return params
	}

	term := strings.ToLower(b.SearchTerm)
	out := params[:0]
	for _, p := range params {
		if strings.Contains(strings.ToLower(p), term) {
			out = append(out, p)
		}
	}
	return out
}

func (b *Builder) Selected() []string {
	return slices.Clone(b.selected)
}

func (b *Builder) IsSelected(param string) bool {
	return slices.Contains(b.selected, param)
}

// Range returns the live range of a selected parameter, nil otherwise.
func (b *Builder) Range(param string) *domain.ParameterRange {
	return b.ranges[param]
}

// ToggleParameter adds or removes param. It returns false when an addition
// is refused because the selection is full; the caller unchecks the box.
func (b *Builder) ToggleParameter(param string, checked bool) bool {
	if !checked {
		if i := slices.Index(b.selected, param); i >= 0 {
			b.selected = slices.Delete(b.selected, i, i+1)
			delete(b.ranges, param)
		}
		return true
	}

	if b.IsSelected(param) {
		return true
	}

	if len(b.selected) >= domain.MaxParameters {
		b.notify.Alert(msgParameterLimit)
		return false
	}

	b.selected = append(b.selected, param)
	b.ranges[param] = domain.DefaultRange()
	return true
}

// SetRange replaces the range inputs of a selected parameter and re-checks them.
func (b *Builder) SetRange(param string, min, max *float64, addRange bool, unit string) {
	r, ok := b.ranges[param]
	if !ok {
		return
	}

	r.Min, r.Max, r.AddRange, r.Unit = min, max, addRange, unit
	b.UpdateRange(param)
}

// UpdateRange annotates the range of param with its errors. It never blocks.
func (b *Builder) UpdateRange(param string) {
	if r, ok := b.ranges[param]; ok {
		checkRange(r)
	}
}

func checkRange(r *domain.ParameterRange) bool {
	r.RangeError, r.UnitError = "", ""
	if !r.AddRange {
		return true
	}

	if !r.Valid() {
		r.RangeError = msgRangeError
	}
	if strings.Contains(r.Unit, "_") {
		r.UnitError = msgUnitError
	}

	return r.RangeError == "" && r.UnitError == ""
}

func (b *Builder) AdditionalInfo() []string {
	return slices.Clone(b.additionalInfo)
}

func (b *Builder) ToggleAdditionalInfo(tag string, checked bool) {
	i := slices.Index(b.additionalInfo, tag)
	switch {
	case checked && i < 0:
		b.additionalInfo = append(b.additionalInfo, tag)
	case !checked && i >= 0:
		b.additionalInfo = slices.Delete(b.additionalInfo, i, i+1)
	}
}

type fields struct {
	ReportName     string   `validate:"required,max=20"`
	GroupName      string   `validate:"required"`
	Parameters     []string `validate:"min=1,max=12"`
	AdditionalInfo []string `validate:"min=1"`
	RoomID         string   `validate:"required,nonblank"`
	RoomName       string   `validate:"required,nonblank"`
}

var fieldMessages = map[string]map[string]string{
	"ReportName": {
		"required": "Report Name is required",
		"max":      "Report Name cannot exceed 20 characters",
	},
	"GroupName":      {"required": "Group Name is required"},
	"Parameters":     {"min": "At least one parameter must be selected", "max": msgParameterLimit},
	"AdditionalInfo": {"min": "At least one Additional Info must be selected"},
	"RoomID":         {"required": "Room ID is required", "nonblank": "Room ID is required"},
	"RoomName":       {"required": "Room Name is required", "nonblank": "Room Name is required"},
}

// Validate runs every field check and the range check from scratch. All
// range problems are reported in one alert.
func (b *Builder) Validate() bool {
	b.Errors = Errors{}

	err := b.validate.Struct(fields{
		ReportName:     b.ReportName,
		GroupName:      b.GroupName,
		Parameters:     b.selected,
		AdditionalInfo: b.additionalInfo,
		RoomID:         b.RoomID,
		RoomName:       b.RoomName,
	})
	for _, fe := range validation.Errors(err) {
		b.setError(fe.Field(), fieldMessages[fe.Field()][fe.Tag()])
	}
	if len(b.dropped) > 0 {
		b.setError("Parameters", msgParameterLimit)
	}

	rangesOK := true
	for _, p := range b.selected {
		if r := b.ranges[p]; r != nil && !checkRange(r) {
			rangesOK = false
		}
	}

	if !rangesOK {
		b.notify.Alert(msgRangeAlert)
	}

	return b.Errors.Empty() && rangesOK
}

func (b *Builder) setError(field, msg string) {
	switch field {
	case "ReportName":
		b.Errors.ReportName = msg
	case "GroupName":
		b.Errors.GroupName = msg
	case "Parameters":
		b.Errors.Parameters = msg
	case "AdditionalInfo":
		b.Errors.AdditionalInfo = msg
	case "RoomID":
		b.Errors.RoomID = msg
	case "RoomName":
		b.Errors.RoomName = msg
	}
}

// Template composes the object posted to the backend. Parameters keep
// their selection order.
func (b *Builder) Template() domain.Template {
	params := make([]string, 0, len(b.selected))
	for _, p := range b.selected {
		params = append(params, b.ranges[p].Annotate(p))
	}

	return domain.Template{
		Name:           b.ReportName,
		ReportGroup:    b.GroupName,
		Parameters:     params,
		AdditionalInfo: domain.JoinAdditionalInfo(b.additionalInfo),
		RoomID:         b.RoomID,
		RoomName:       b.RoomName,
	}
}

func (b *Builder) clean() {
	b.ReportName = validation.Clean(b.ReportName)
	b.GroupName = validation.Clean(b.GroupName)
	b.RoomID = validation.Clean(b.RoomID)
	b.RoomName = validation.Clean(b.RoomName)
	for _, r := range b.ranges {
		r.Unit = validation.Clean(r.Unit)
	}
}

// check validates the form as entered, then again once free text is
// cleaned. Lengths are never measured on the cleaned text.
func (b *Builder) check() bool {
	if !b.Validate() {
		return false
	}
	b.clean()
	return b.Validate()
}

// RequestSubmit opens the confirmation popup when the form is valid.
func (b *Builder) RequestSubmit() bool {
	if !b.check() {
		b.log.Debug("Validation failed", slog.String("op", "builder.RequestSubmit"), slog.Any("errors", b.Errors))
		return false
	}

	b.PopupVisible = true
	return true
}

func (b *Builder) ConfirmSubmission(ctx context.Context) error {
	b.PopupVisible = false
	return b.Submit(ctx)
}

func (b *Builder) CancelSubmission() {
	b.PopupVisible = false
}

// Submit validates the form and posts the template. On success the form is
// cleared and the user goes back to the list; on failure the form is kept.
func (b *Builder) Submit(ctx context.Context) error {
	const op = "builder.Submit"
	log := b.log.With(slog.String("op", op), slog.String("username", b.session.Username()))

	if !b.check() {
		log.Debug("Validation failed", slog.Any("errors", b.Errors))
		return fmt.Errorf("%s: %w", op, domain.ErrValidation)
	}

	tmpl := b.Template()
	log.Debug("Data to be sent", slog.Any("template", tmpl))

	if err := b.backend.CreateTemplate(ctx, tmpl); err != nil {
		log.Error("Error posting template", slog.String("error", err.Error()))
		b.notify.Message(msgCreateFailed)
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("Template created", slog.String("name", tmpl.Name), slog.Int("parameters", len(tmpl.Parameters)))

	b.notify.Alert(msgCreated)
	b.Reset()
	b.nav.Navigate(ListView)
	return nil
}

// Reset clears every input and error. Catalogs stay loaded.
func (b *Builder) Reset() {
	b.ReportName = ""
	b.GroupName = ""
	b.RoomID = ""
	b.RoomName = ""
	b.SearchTerm = ""
	b.selected = nil
	b.ranges = make(map[string]*domain.ParameterRange)
	b.additionalInfo = nil
	b.dropped = nil
	b.Errors = Errors{}
	b.PopupVisible = false
}

// AddGroup creates a group and reloads the group list from the backend.
func (b *Builder) AddGroup(ctx context.Context, name string) error {
	const op = "builder.AddGroup"

	trimmed, err := b.postGroup(ctx, op, name)
	if err != nil {
		return err
	}

	if err := b.fetchGroups(ctx); err != nil {
		b.log.Error("Error fetching group names", slog.String("op", op), slog.String("error", err.Error()))
		b.appendGroup(trimmed)
	}

	return nil
}

// ConfirmAddGroup creates a group, adds it to the local list, selects it
// and closes the popup.
func (b *Builder) ConfirmAddGroup(ctx context.Context, name string) error {
	const op = "builder.ConfirmAddGroup"

	trimmed, err := b.postGroup(ctx, op, name)
	if err != nil {
		return err
	}

	b.appendGroup(trimmed)
	b.GroupName = trimmed
	b.ShowGroupPopup = false
	return nil
}

func (b *Builder) CancelAddGroup() {
	b.NewGroupName = ""
	b.AddGroupMessage = ""
	b.ShowGroupPopup = false
}

func (b *Builder) postGroup(ctx context.Context, op, name string) (string, error) {
	trimmed := validation.Clean(name)
	if trimmed == "" {
		b.AddGroupMessage = msgGroupEmpty
		return "", fmt.Errorf("%s: %w", op, domain.ErrEmptyGroupName)
	}

	if err := b.backend.AddGroup(ctx, domain.Group{Name: trimmed}); err != nil {
		b.log.Error("Error adding group", slog.String("op", op), slog.String("error", err.Error()))
		b.AddGroupMessage = msgGroupFailed
		b.notify.Message(msgGroupFailed)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	b.AddGroupMessage = msgGroupAdded
	b.NewGroupName = ""
	return trimmed, nil
}

func (b *Builder) appendGroup(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.groups, name) {
		b.groups = append(b.groups, name)
	}
}

func (b *Builder) GoBack() {
	b.nav.Navigate(ListView)
}
