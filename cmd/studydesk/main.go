package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/studydesk/internal/cli"
	"github.com/alexanderramin/studydesk/internal/config"
	"github.com/alexanderramin/studydesk/internal/db"
	"github.com/alexanderramin/studydesk/internal/doubt"
	"github.com/alexanderramin/studydesk/internal/grading"
	"github.com/alexanderramin/studydesk/internal/httpapi"
	"github.com/alexanderramin/studydesk/internal/llm"
	"github.com/alexanderramin/studydesk/internal/logger"
	"github.com/alexanderramin/studydesk/internal/planner"
	"github.com/alexanderramin/studydesk/internal/questionbank"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	store := repository.NewStore(database, db.DialectFor(cfg.DBPath))

	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LLM.LogCalls {
		observer = llm.NewLogObserver(log)
	}
	client, err := llm.NewClient(cfg.LLM, observer)
	if err != nil {
		return err
	}
	if !cfg.LLM.Configured() {
		log.Warn("llm provider has no API key; generation requests will fail", "provider", string(cfg.LLM.Provider))
	}

	bank := questionbank.New(cfg.QuestionBank, log)
	plannerSvc := planner.NewService(client, store, log)

	app := &cli.App{
		Planner:   plannerSvc,
		Plans:     store,
		Questions: bank,
		Addr:      cfg.Addr,
	}
	app.Serve = func(ctx context.Context, addr string) error {
		if cfg.LogMode == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := httpapi.NewServer(httpapi.RouterConfig{
			Planner:     plannerSvc,
			Doubts:      doubt.NewService(client, cfg.LLM.ImportantModel, log),
			Grader:      grading.NewService(client, bank, store, log),
			Questions:   bank,
			Plans:       store,
			Ping:        store.Ping,
			Log:         log,
			CORSOrigins: cfg.CORSOrigins,
		})
		return srv.Run(ctx, addr)
	}

	// Detect interactive terminal for the planner form.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
