package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webpilot-ai/webpilot/config"
	"github.com/webpilot-ai/webpilot/internal/agent/core"
	agenttele "github.com/webpilot-ai/webpilot/internal/agent/telemetry"
	agenttools "github.com/webpilot-ai/webpilot/internal/agent/tools"
	"github.com/webpilot-ai/webpilot/internal/store"
	"github.com/webpilot-ai/webpilot/provider"
)

// Run builds the full agent stack and serves the HTTP API.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	llm, err := provider.NewProvider(provider.OpenAI, cfg.LLM)
	if err != nil {
		return err
	}

	var archive *store.RedisArchive
	if cfg.Storage.Redis.Host != "" {
		client, err := store.Conn(ctx, cfg.Storage.Redis)
		if err != nil {
			baseLogger.Printf("warn: redis unavailable, running without task archive: %v", err)
		} else {
			archive = store.NewRedisArchive(client)
		}
	}
	index, err := store.NewSearchIndex()
	if err != nil {
		return fmt.Errorf("building task index: %w", err)
	}
	tasks := store.New(nil, archive, index)
	if err := tasks.Preload(ctx); err != nil {
		baseLogger.Printf("warn: preloading task archive failed: %v", err)
	}

	tele := agenttele.NewTelemetry(cfg.Telemetry)
	registry := core.NewRegistry()
	agenttools.New(cfg.Tools, nil).Register(registry)

	tracker := core.NewTracker()
	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch := core.NewOrchestrator(cfg, orchLogger, tele, registry, llm, tracker, tasks)

	hub := NewHub(baseLogger)
	tracker.Subscribe(func(snap core.ProgressSnapshot) {
		if b, err := json.Marshal(snap); err == nil {
			hub.Broadcast(b)
		}
	})

	h := &AgentHandler{Orchestrator: orch, Tracker: tracker, Store: tasks, Telemetry: tele}

	api := e.Group("/api")
	if cfg.Server.JWTSecret != "" {
		api.Use(EchoAuthMiddleware([]byte(cfg.Server.JWTSecret)))
	}
	h.Register(api.Group("/agent"))
	api.GET("/agent/progress", hub.Handler)

	return e.Start(cfg.Server.Address)
}
