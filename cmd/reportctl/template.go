package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"reports-ui/internal/domain"
	"reports-ui/internal/service/builder"
	"reports-ui/internal/ui"
)

func newTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "List and create report templates",
	}

	cmd.AddCommand(newTemplateListCmd(a), newTemplateCreateCmd(a))
	return cmd
}

func newTemplateListCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List existing templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := a.client.Templates(cmd.Context())
			if err != nil {
				return err
			}
			return writeTemplates(a.out, format, templates)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format: table, yaml or json")
	return cmd
}

func newTemplateCreateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a template from a YAML or JSON draft",
		Long: `Create a template from a draft file ("-" reads standard input):

  report_name: Cold room daily
  group_name: HVAC
  room_id: R-12
  room_name: Cold room 12
  additional_info: [MAX, AVG]
  parameters:
    - name: TEMP
      add_range: true
      min: 18
      max: 25
      unit: C
    - name: RH`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := readDraft(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b := a.builder()
			_ = b.LoadReferenceData(ctx)

			warnUnknownParameters(a.console, b.Parameters(), draft)
			accepted := b.Apply(draft)

			if !b.RequestSubmit() {
				printFieldErrors(a.out, b)
				if !accepted {
					return domain.ErrParameterLimit
				}
				return domain.ErrValidation
			}

			ok, err := a.console.Confirm(ctx, ui.Prompt{
				Message: fmt.Sprintf("Create template %q with %d parameters?", b.ReportName, len(b.Selected())),
			})
			if err != nil {
				return err
			}
			if !ok {
				b.CancelSubmission()
				return nil
			}

			return b.ConfirmSubmission(ctx)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "draft file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readDraft(stdin io.Reader, file string) (builder.Draft, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return builder.Draft{}, fmt.Errorf("read draft: %w", err)
	}

	var d builder.Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return builder.Draft{}, fmt.Errorf("parse draft: %w", err)
	}
	return d, nil
}

// warnUnknownParameters flags draft parameters missing from the catalog.
// The backend has the final word, so they are not dropped.
func warnUnknownParameters(n ui.Notifier, catalog []string, d builder.Draft) {
	if len(catalog) == 0 {
		return
	}

	known := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		known[p] = struct{}{}
	}

	for _, p := range d.Parameters {
		if _, ok := known[p.Name]; !ok {
			n.Message(fmt.Sprintf("Parameter %s is not in the catalog.", p.Name))
		}
	}
}

func printFieldErrors(out io.Writer, b *builder.Builder) {
	e := b.Errors
	for _, msg := range []string{e.ReportName, e.GroupName, e.Parameters, e.AdditionalInfo, e.RoomID, e.RoomName} {
		if msg != "" {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}

	for name, r := range b.RangeErrors() {
		for _, msg := range []string{r.RangeError, r.UnitError} {
			if msg != "" {
				fmt.Fprintf(out, "  - %s: %s\n", name, msg)
			}
		}
	}
}
