package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/studydesk/internal/cli/formatter"
	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/spf13/cobra"
)

func newNormalizeCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Regroup a model-produced plan into calendar weeks",
		Long: "Reads raw model output from a file or stdin, extracts the plan object and\n" +
			"regroups its days into Monday to Sunday weeks numbered from 0.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			raw, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			if strings.TrimSpace(raw) == "" {
				return errors.New("no input")
			}

			res, err := app.Planner.Normalize(cmd.Context(), raw)
			if err != nil {
				return explainOutputError(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			fmt.Fprint(out, formatter.FormatPlan(res.Plan, res.Dropped))
			if res.ID != "" {
				fmt.Fprintln(out, formatter.Dim("saved as "+res.ID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the normalized result as JSON")
	return cmd
}

// explainOutputError appends the start of the offending model text.
func explainOutputError(err error) error {
	raw, ok := llm.RawOutput(err)
	if !ok {
		return err
	}
	const limit = 200
	snippet := strings.TrimSpace(raw)
	if len(snippet) > limit {
		snippet = snippet[:limit] + "…"
	}
	return fmt.Errorf("%w\nmodel output: %s", err, snippet)
}
