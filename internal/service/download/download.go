// Package download delivers exported reports to a local directory. It is
// the report sink of the command line client: unlike a browser it can tell
// when the file has fully arrived.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"reports-ui/internal/ui"
)

const spreadsheetType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook summarises a downloaded spreadsheet.
type Workbook struct {
	Sheets []string `json:"sheets" yaml:"sheets"`
	Rows   int      `json:"rows" yaml:"rows"`
}

// Sink downloads each ticket's URL into dir.
type Sink struct {
	dir    string
	client *http.Client
	log    *slog.Logger

	// Workbooks holds the summary of every verified spreadsheet by ticket file.
	Workbooks map[string]Workbook
}

func New(dir string, timeout time.Duration, log *slog.Logger) *Sink {
	return &Sink{
		dir:       dir,
		client:    &http.Client{Timeout: timeout},
		log:       log,
		Workbooks: make(map[string]Workbook),
	}
}

// Open makes sure the target directory is writable before the export is
// logged.
func (s *Sink) Open(_ context.Context, t *ui.Ticket) error {
	const op = "download.Open"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Generating your report...",
		slog.String("op", op),
		slog.String("ticket", t.ID.String()),
		slog.String("template", t.TemplateName),
	)
	return nil
}

// Deliver fetches the report and stores it. Spreadsheets are opened once to
// make sure the file is complete; the ticket is only marked completed then.
func (s *Sink) Deliver(ctx context.Context, t *ui.Ticket) error {
	const op = "download.Deliver"
	log := s.log.With(slog.String("op", op), slog.String("ticket", t.ID.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %d", op, res.StatusCode)
	}

	path := filepath.Join(s.dir, fileName(res.Header, t))
	if err := writeFile(path, res.Body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	t.File = path

	if isSpreadsheet(res.Header.Get("Content-Type"), path) {
		wb, err := Inspect(path)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.Workbooks[path] = wb
		log.Debug("Workbook verified", slog.Any("sheets", wb.Sheets), slog.Int("rows", wb.Rows))
	}

	t.Completed = true
	log.Info("Report downloaded", slog.String("file", path))
	return nil
}

// Fail records the cause on the ticket and drops a partial file.
func (s *Sink) Fail(_ context.Context, t *ui.Ticket, cause error) {
	s.log.Error("Failed to generate report",
		slog.String("op", "download.Fail"),
		slog.String("ticket", t.ID.String()),
		slog.String("error", cause.Error()),
	)

	t.Error = cause.Error()
	if t.File != "" && !t.Completed {
		_ = os.Remove(t.File)
		t.File = ""
	}
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	return f.Close()
}

// fileName prefers the name the backend suggests and falls back to one
// built from the template and the request time.
func fileName(h http.Header, t *ui.Ticket) string {
	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil {
		switch name := filepath.Base(params["filename"]); name {
		case "", ".", "..", string(filepath.Separator):
		default:
			return name
		}
	}

	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, t.TemplateName)
	if name == "" {
		name = fmt.Sprintf("template_%d", t.TemplateID)
	}

	return fmt.Sprintf("%s_%s.xlsx", name, t.RequestedAt.Format("2006-01-02_150405"))
}

func isSpreadsheet(contentType, path string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == spreadsheetType {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// Inspect opens the workbook at path and counts the rows of every sheet.
func Inspect(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Workbook{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := Workbook{Sheets: f.GetSheetList()}
	if len(wb.Sheets) == 0 {
		return wb, errors.New("workbook has no sheets")
	}

	for _, sheet := range wb.Sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return wb, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		wb.Rows += len(rows)
	}

	return wb, nil
}
