package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexanderramin/studydesk/internal/doubt"
	"github.com/alexanderramin/studydesk/internal/grading"
	"github.com/alexanderramin/studydesk/internal/planner"
	"github.com/alexanderramin/studydesk/internal/repository"
	"github.com/gin-gonic/gin"
)

// PlanIDHeader carries the stored plan ID on /generate_planner responses.
const PlanIDHeader = "X-Plan-Id"

// DroppedHeader carries the number of undatable entries that were dropped.
const DroppedHeader = "X-Dropped-Entries"

const maxNormalizeBody = 1 << 20

type handlers struct {
	cfg RouterConfig
}

func (h *handlers) health(c *gin.Context) {
	if h.cfg.Ping != nil {
		if err := h.cfg.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
	}
	RespondOK(c, gin.H{"status": "ok"})
}

func (h *handlers) questions(c *gin.Context) {
	raw, err := h.cfg.Questions.Questions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (h *handlers) gradeUnit(c *gin.Context) {
	var item grading.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	res, err := h.cfg.Grader.EvaluateUnit(c.Request.Context(), item)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"evaluation": res.Evaluation})
}

type gradeBatchRequest struct {
	Questions []grading.Item `json:"questions"`
}

func (h *handlers) gradeBatch(c *gin.Context) {
	var req gradeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	res, err := h.cfg.Grader.EvaluateBatch(c.Request.Context(), req.Questions)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (h *handlers) solveDoubt(c *gin.Context) {
	var req doubt.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	ans, err := h.cfg.Doubts.Solve(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"response": ans})
}

// generatePlanner responds with the normalized plan document itself.
func (h *handlers) generatePlanner(c *gin.Context) {
	var req planner.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	res, err := h.cfg.Planner.Generate(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.ID != "" {
		c.Header(PlanIDHeader, res.ID)
	}
	c.Header(DroppedHeader, strconv.Itoa(len(res.Dropped)))
	RespondOK(c, res.Plan)
}

// normalize accepts raw model text, or a JSON string holding it, and
// returns the full result.
func (h *handlers) normalize(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNormalizeBody+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	if len(body) > maxNormalizeBody {
		RespondError(c, http.StatusRequestEntityTooLarge, CodeInvalidRequest, fmt.Errorf("body exceeds %d bytes", maxNormalizeBody))
		return
	}
	raw := string(body)
	var quoted string
	if err := json.Unmarshal(body, &quoted); err == nil {
		raw = quoted
	}
	if strings.TrimSpace(raw) == "" {
		RespondError(c, http.StatusBadRequest, CodeInvalidRequest, fmt.Errorf("empty body"))
		return
	}
	res, err := h.cfg.Planner.Normalize(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (h *handlers) listPlans(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			RespondError(c, http.StatusBadRequest, CodeInvalidRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	plans, err := h.cfg.Plans.ListPlans(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if plans == nil {
		plans = []*repository.PlanSummary{}
	}
	RespondOK(c, gin.H{"plans": plans})
}

func (h *handlers) getPlan(c *gin.Context) {
	plan, err := h.cfg.Plans.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, plan)
}

func (h *handlers) deletePlan(c *gin.Context) {
	if err := h.cfg.Plans.DeletePlan(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
