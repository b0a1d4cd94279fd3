package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newQuestionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Print the question paper from the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Questions == nil {
				return errors.New("question bank is not configured")
			}
			raw, err := app.Questions.Questions(cmd.Context())
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, raw, "", "  "); err != nil {
				return fmt.Errorf("question paper is not valid JSON: %w", err)
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}
