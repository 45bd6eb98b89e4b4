package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"reports-ui/internal/domain"
	"reports-ui/internal/service/export"
)

// exportFlags are shared by the export and schedule commands.
type exportFlags struct {
	templateID       int64
	reviewer         string
	approver         string
	approverRequired bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&f.templateID, "template", "t", 0, "template id (prompted when omitted)")
	cmd.Flags().StringVar(&f.reviewer, "reviewer", "", "user the report is assigned to")
	cmd.Flags().StringVar(&f.approver, "approver", "", "approving user")
	cmd.Flags().BoolVar(&f.approverRequired, "approver-required", false, "require an approver")
}

func newExportCmd(a *app) *cobra.Command {
	var (
		flags    exportFlags
		rng      string
		from, to string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate a report for a date range and download it",
		Example: `  reportctl export -t 7 --range yesterday
  reportctl export -t 7 --from 2026-10-01T00:00 --to 2026-10-07T23:59`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sink := a.downloader()
			c := a.exporter(sink)

			id, err := a.resolveTemplate(ctx, c, flags.templateID)
			if err != nil {
				return err
			}

			req := export.Request{
				TemplateID:         id,
				ExportType:         domain.ExportManual,
				PredefinedRange:    domain.RangeKind(rng),
				FromDate:           from,
				ToDate:             to,
				AssignedTo:         flags.reviewer,
				AssignedApprover:   flags.approver,
				IsApproverRequired: flags.approverRequired,
			}
			if err := c.Apply(req); err != nil {
				return err
			}

			if err := c.Submit(ctx); err != nil {
				return err
			}

			if len(sink.Workbooks) == 0 {
				return nil
			}
			return write(a.out, format, sink.Workbooks)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&rng, "range", "", "predefined range: yesterday, oneWeek or oneMonth")
	cmd.Flags().StringVar(&from, "from", "", "start, as "+export.InputLayout)
	cmd.Flags().StringVar(&to, "to", "", "end, as "+export.InputLayout)
	cmd.Flags().StringVarP(&format, "output", "o", formatYAML, "summary format: yaml or json")
	cmd.MarkFlagsMutuallyExclusive("range", "from")
	cmd.MarkFlagsMutuallyExclusive("range", "to")

	return cmd
}

// resolveTemplate loads the export form and asks for a template when id is 0.
func (a *app) resolveTemplate(ctx context.Context, c *export.Controller, id int64) (int64, error) {
	if err := c.LoadAll(ctx); err != nil {
		a.log.Warn("Export form partially loaded", slog.String("error", err.Error()))
	}

	if id != 0 {
		return id, nil
	}

	templates := c.Templates()
	names := make([]string, 0, len(templates))
	ids := make([]int64, 0, len(templates))
	for _, t := range templates {
		names = append(names, fmt.Sprintf("%s (%s)", t.Name, t.ReportGroup))
		ids = append(ids, t.ID)
	}

	return a.chooseTemplate(names, ids)
}

// chooseUser asks for a user name from the loaded user list.
func (a *app) chooseUser(c *export.Controller, message string) (string, error) {
	users := c.Users()
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}

	i, err := a.console.Choose(message, names)
	if err != nil {
		return "", err
	}
	return names[i], nil
}
