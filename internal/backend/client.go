package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"reports-ui/internal/domain"
)

type endpoint string

const (
	ParametersEndpoint     endpoint = "%s/parameters"
	GroupsEndpoint         endpoint = "%s/groups"
	AddGroupEndpoint       endpoint = "%s/add_group"
	CreateTemplateEndpoint endpoint = "%s/createTemplate"
	TemplatesEndpoint      endpoint = "%s/templates"
	UsersEndpoint          endpoint = "%s/users"
	ScheduledIDsEndpoint   endpoint = "%s/get-all-%s-scheduled-reports"
	LogGeneratedEndpoint   endpoint = "%s/log-generated-report"
	LogScheduledEndpoint   endpoint = "%s/log-scheduled-%s-report"
	ScheduleEndpoint       endpoint = "%s/schedule-report-%s"
	ExportReportEndpoint   endpoint = "%s/exportReport"

	maxErrorBody = 512
)

// StatusError is returned for any non-2xx answer from the backend.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client talks to the report backend. Failed calls are never retried; the
// user re-triggers the action.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Parameters(ctx context.Context) ([]string, error) {
	const op = "backend.Parameters"

	var params []string
	if err := c.get(ctx, c.url(ParametersEndpoint), &params); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return params, nil
}

func (c *Client) Groups(ctx context.Context) ([]domain.Group, error) {
	const op = "backend.Groups"

	var groups []domain.Group
	if err := c.get(ctx, c.url(GroupsEndpoint), &groups); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return groups, nil
}

func (c *Client) AddGroup(ctx context.Context, group domain.Group) error {
	const op = "backend.AddGroup"

	if err := c.post(ctx, c.url(AddGroupEndpoint), group); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type createTemplateRequest struct {
	Name           string   `json:"name"`
	ReportGroup    string   `json:"report_group"`
	Parameters     []string `json:"parameters"`
	AdditionalInfo string   `json:"additionalInfo"`
	RoomID         string   `json:"roomId"`
	RoomName       string   `json:"roomName"`
}

func (c *Client) CreateTemplate(ctx context.Context, t domain.Template) error {
	const op = "backend.CreateTemplate"

	req := createTemplateRequest{
		Name:           t.Name,
		ReportGroup:    t.ReportGroup,
		Parameters:     t.Parameters,
		AdditionalInfo: t.AdditionalInfo,
		RoomID:         t.RoomID,
		RoomName:       t.RoomName,
	}

	if err := c.post(ctx, c.url(CreateTemplateEndpoint), req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) Templates(ctx context.Context) ([]domain.Template, error) {
	const op = "backend.Templates"

	var templates []domain.Template
	if err := c.get(ctx, c.url(TemplatesEndpoint), &templates); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return templates, nil
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	const op = "backend.Users"

	var users []domain.User
	if err := c.get(ctx, c.url(UsersEndpoint), &users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// ScheduledIDs returns the template ids already scheduled at freq.
func (c *Client) ScheduledIDs(ctx context.Context, freq domain.Frequency) ([]int64, error) {
	const op = "backend.ScheduledIDs"

	var ids []int64
	if err := c.get(ctx, c.url(ScheduledIDsEndpoint, string(freq)), &ids); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, freq, err)
	}

	return ids, nil
}

func (c *Client) LogGeneratedReport(ctx context.Context, entry domain.GenerationLog) error {
	const op = "backend.LogGeneratedReport"

	if err := c.post(ctx, c.url(LogGeneratedEndpoint), entry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) LogScheduledReport(ctx context.Context, freq domain.Frequency, entry domain.ScheduleLog) error {
	const op = "backend.LogScheduledReport"

	if err := c.post(ctx, c.url(LogScheduledEndpoint, string(freq)), entry); err != nil {
		return fmt.Errorf("%s: %s: %w", op, freq, err)
	}

	return nil
}

func (c *Client) ScheduleReport(ctx context.Context, freq domain.Frequency, details domain.ScheduleDetails) error {
	const op = "backend.ScheduleReport"

	if err := c.post(ctx, c.url(ScheduleEndpoint, string(freq)), details); err != nil {
		return fmt.Errorf("%s: %s: %w", op, freq, err)
	}

	return nil
}

// ExportURL builds the download address of a generated report. The backend
// renders the file when the address is fetched.
func (c *Client) ExportURL(q domain.ExportQuery) string {
	v := url.Values{}
	v.Set("id", strconv.FormatInt(q.TemplateID, 10))
	v.Set("fromDate", q.FromDate)
	v.Set("toDate", q.ToDate)
	v.Set("username", q.Username)
	v.Set("assignedTo", q.AssignedTo)
	v.Set("assigned_approver", q.AssignedApprover)

	return c.url(ExportReportEndpoint) + "?" + v.Encode()
}

func (c *Client) url(e endpoint, args ...any) string {
	return fmt.Sprintf(string(e), append([]any{c.baseURL}, args...)...)
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := render.DecodeJSON(res.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// post sends body as JSON. The response body is drained and ignored: some
// endpoints answer with plain text.
func (c *Client) post(ctx context.Context, u string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	_, _ = io.Copy(io.Discard, res.Body)

	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL.Redacted(),
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return res, nil
}
