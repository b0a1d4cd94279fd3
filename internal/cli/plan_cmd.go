package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studydesk/internal/cli/formatter"
	"github.com/alexanderramin/studydesk/internal/planner"
	"github.com/alexanderramin/studydesk/internal/schedule"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// weekdayList is a comma-separated weekday flag.
type weekdayList []string

var _ pflag.Value = (*weekdayList)(nil)

func (w *weekdayList) String() string { return strings.Join(*w, ",") }

func (w *weekdayList) Type() string { return "weekdays" }

func (w *weekdayList) Set(v string) error {
	var days []string
	for _, d := range splitCSV(v) {
		d = strings.ToLower(d)
		if !isWeekday(d) {
			return fmt.Errorf("unknown weekday %q", d)
		}
		days = append(days, d)
	}
	*w = days
	return nil
}

func isWeekday(s string) bool {
	for _, d := range weekdays {
		if d == s {
			return true
		}
	}
	return false
}

func newPlanCmd(app *App) *cobra.Command {
	var requestPath string
	var interactive bool
	var asJSON bool
	var days weekdayList

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a calendar-accurate study plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req planner.Request
			switch {
			case requestPath != "":
				raw, err := readInput(cmd.InOrStdin(), requestPath)
				if err != nil {
					return err
				}
				if err := json.Unmarshal([]byte(raw), &req); err != nil {
					return fmt.Errorf("parsing planner request: %w", err)
				}
			case interactive || app.interactive():
				answers := plannerAnswers{Start: time.Now().Format(schedule.DateLayout)}
				run := app.RunForm
				if run == nil {
					run = runForm
				}
				if err := run(plannerWizard(&answers)); err != nil {
					return err
				}
				r, err := answers.toRequest()
				if err != nil {
					return err
				}
				req = r
			default:
				return errors.New("pass --request FILE, or --interactive in a terminal")
			}

			if len(days) > 0 {
				req.DaysPerWeek = days
			}

			res, err := app.Planner.Generate(cmd.Context(), req)
			if err != nil {
				return explainOutputError(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			fmt.Fprint(out, formatter.FormatPlan(res.Plan, res.Dropped))
			if res.ID != "" {
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("saved as %s (%s, %d tokens)", res.ID, res.Model, res.TokensUsed)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&requestPath, "request", "", "Planner request JSON file, or - for stdin")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the request with a form")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().Var(&days, "days", "Override study days, e.g. monday,wednesday,saturday")
	cmd.MarkFlagsMutuallyExclusive("request", "interactive")
	return cmd
}
