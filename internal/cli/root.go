package cli

import (
	"context"
	"encoding/json"

	"github.com/alexanderramin/studydesk/internal/planner"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/spf13/cobra"
)

// PlanHistory reads and deletes stored plans.
type PlanHistory interface {
	ListPlans(ctx context.Context, limit int) ([]*repository.PlanSummary, error)
	GetPlan(ctx context.Context, id string) (*repository.StoredPlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// QuestionSource serves the question paper.
type QuestionSource interface {
	Questions(ctx context.Context) (json.RawMessage, error)
}

// App holds the services CLI commands run against. Serve starts the HTTP
// server and blocks until ctx is done.
type App struct {
	Planner   planner.Service
	Plans     PlanHistory
	Questions QuestionSource
	Serve     func(ctx context.Context, addr string) error
	Addr      string

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// RunForm runs an interactive form; tests replace it.
	RunForm func(f formRunner) error
}

// NewRootCmd creates the top-level "studydesk" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "studydesk",
		Short:         "Study planner, doubt solver and answer grader backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newNormalizeCmd(app),
		newPlanCmd(app),
		newPlansCmd(app),
		newQuestionsCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
