package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage report groups",
	}

	cmd.AddCommand(newGroupAddCmd(a))
	return cmd
}

func newGroupAddCmd(a *app) *cobra.Command {
	var selectIt bool

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a report group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := a.builder()
			name := strings.TrimSpace(args[0])

			if selectIt {
				if err := b.ConfirmAddGroup(ctx, name); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Selected group: %s\n", b.GroupName)
				return nil
			}

			if err := b.AddGroup(ctx, name); err != nil {
				return err
			}

			for _, g := range b.Groups() {
				fmt.Fprintln(a.out, g)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&selectIt, "select", false, "select the new group instead of listing all groups")
	return cmd
}
