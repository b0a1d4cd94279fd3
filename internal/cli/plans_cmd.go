package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/studydesk/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Browse saved plans",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Plans == nil {
				return errors.New("plan history is not configured")
			}
			return nil
		},
	}
	cmd.AddCommand(newPlansListCmd(app), newPlansShowCmd(app), newPlansDeleteCmd(app))
	return cmd
}

func newPlansListCmd(app *App) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved plans, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.ListPlans(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), plans)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanList(plans, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of plans")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newPlansShowCmd(app *App) *cobra.Command {
	var asJSON bool
	var raw bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Plans.GetPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case raw:
				fmt.Fprintln(out, p.RawResponse)
			case asJSON:
				return writeJSON(out, p)
			default:
				fmt.Fprint(out, formatter.FormatStoredPlan(p, time.Now()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the model text the plan was normalized from")
	cmd.MarkFlagsMutuallyExclusive("json", "raw")
	return cmd
}

func newPlansDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a saved plan",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Plans.DeletePlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", args[0])
			return nil
		},
	}
}
