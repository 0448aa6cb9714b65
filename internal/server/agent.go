package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/webpilot-ai/webpilot/internal/agent/core"
	agenttele "github.com/webpilot-ai/webpilot/internal/agent/telemetry"
	"github.com/webpilot-ai/webpilot/internal/store"
)

// Runner is the orchestration surface the handlers depend on.
type Runner interface {
	Process(ctx context.Context, req core.Request) (core.Response, error)
	Processing() bool
}

// AgentHandler exposes the orchestrator and task store over HTTP.
type AgentHandler struct {
	Orchestrator Runner
	Tracker      *core.Tracker
	Store        *store.Store
	Telemetry    *agenttele.Telemetry
}

func (h *AgentHandler) Register(g *echo.Group) {
	g.POST("/process", h.process)
	g.GET("/status", h.status)
	g.GET("/tasks", h.tasks)
	g.GET("/tasks/search", h.search)
	g.GET("/tasks/:id", h.task)
	g.GET("/metrics/summary", h.metricsSummary)
}

type ProcessRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

func (h *AgentHandler) process(c echo.Context) error {
	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	resp, err := h.Orchestrator.Process(c.Request().Context(), core.Request{
		Message: req.Message,
		Model:   req.Model,
	})
	if err != nil {
		if errors.Is(err, core.ErrAgentBusy) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AgentHandler) status(c echo.Context) error {
	snap := h.Tracker.Snapshot()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"processing":   h.Orchestrator.Processing(),
		"phase":        snap.Phase,
		"current_step": snap.CurrentStep,
		"step_log":     snap.StepLog,
		"results":      snap.Results,
		"updated_at":   snap.UpdatedAt,
	})
}

func (h *AgentHandler) tasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.List())
}

func (h *AgentHandler) task(c echo.Context) error {
	task, ok := h.Store.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	return c.JSON(http.StatusOK, task)
}

func (h *AgentHandler) search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	tasks, err := h.Store.Search(q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *AgentHandler) metricsSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Telemetry.GetMetrics())
}
