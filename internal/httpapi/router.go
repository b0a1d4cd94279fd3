package httpapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alexanderramin/studydesk/internal/doubt"
	"github.com/alexanderramin/studydesk/internal/grading"
	"github.com/alexanderramin/studydesk/internal/logger"
	"github.com/alexanderramin/studydesk/internal/planner"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/gin-gonic/gin"
)

// QuestionSource serves the question paper. *questionbank.Bank implements it.
type QuestionSource interface {
	Questions(ctx context.Context) (json.RawMessage, error)
}

// PlanHistory reads and deletes stored plans. *repository.Store implements it.
type PlanHistory interface {
	ListPlans(ctx context.Context, limit int) ([]*repository.PlanSummary, error)
	GetPlan(ctx context.Context, id string) (*repository.StoredPlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// RouterConfig wires services into routes. Nil services leave their routes
// unregistered.
type RouterConfig struct {
	Planner   planner.Service
	Doubts    doubt.Service
	Grader    grading.Service
	Questions QuestionSource
	Plans     PlanHistory
	Ping      func(ctx context.Context) error

	Log            *logger.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Log))
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(RequestTimeout(cfg.RequestTimeout))

	h := &handlers{cfg: cfg}

	r.GET("/healthz", h.health)

	if cfg.Questions != nil {
		r.GET("/questions", h.questions)
	}
	if cfg.Grader != nil {
		r.POST("/grade/unit", h.gradeUnit)
		r.POST("/grade_batch", h.gradeBatch)
	}
	if cfg.Doubts != nil {
		r.POST("/solve_doubt", h.solveDoubt)
	}
	if cfg.Planner != nil {
		r.POST("/generate_planner", h.generatePlanner)
		r.POST("/normalize", h.normalize)
	}
	if cfg.Plans != nil {
		r.GET("/plans", h.listPlans)
		r.GET("/plans/:id", h.getPlan)
		r.DELETE("/plans/:id", h.deletePlan)
	}
	return r
}
