package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reports-ui/internal/domain"
	"reports-ui/internal/service/export"
)

func newScheduleCmd(a *app) *cobra.Command {
	var (
		flags exportFlags
		hour  int
		day   string
	)

	cmd := &cobra.Command{
		Use:       "schedule daily|weekly|monthly",
		Short:     "Schedule recurring generation of a report",
		Example:   "  reportctl schedule weekly -t 7 --reviewer alice --time 6 --day Monday",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(domain.Daily), string(domain.Weekly), string(domain.Monthly)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			freq, err := domain.ParseFrequency(args[0])
			if err != nil {
				return err
			}

			c := a.exporter(a.downloader())

			id, err := a.resolveTemplate(ctx, c, flags.templateID)
			if err != nil {
				return err
			}

			if flags.reviewer == "" {
				if flags.reviewer, err = a.chooseUser(c, "Assign to"); err != nil {
					return err
				}
			}

			req := export.Request{
				TemplateID:         id,
				ExportType:         domain.ExportSchedule,
				Frequency:          freq,
				AssignedTo:         flags.reviewer,
				AssignedApprover:   flags.approver,
				IsApproverRequired: flags.approverRequired,
			}
			if err := fillSchedule(&req, freq, hour, day); err != nil {
				return err
			}

			if err := c.Apply(req); err != nil {
				return err
			}
			if err := c.Submit(ctx); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s schedules: %v\n", freq, c.ScheduledIDs(freq))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&hour, "time", -1, "hour of day, 0-23")
	cmd.Flags().StringVar(&day, "day", "", "weekday (weekly) or day of month (monthly)")

	return cmd
}

// fillSchedule puts the time and day flags on the fields freq uses. Unset
// flags stay nil so the controller reports what is missing.
func fillSchedule(req *export.Request, freq domain.Frequency, hour int, day string) error {
	var h *int
	if hour >= 0 {
		h = &hour
	}

	switch freq {
	case domain.Daily:
		req.DailyTime = h
	case domain.Weekly:
		req.WeeklyTime, req.WeeklyDay = h, day
	case domain.Monthly:
		req.MonthlyTime = h
		if day != "" {
			d, err := strconv.Atoi(day)
			if err != nil {
				return fmt.Errorf("day of month %q: %w", day, err)
			}
			req.MonthlyDay = &d
		}
	}

	return nil
}
