package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/webpilot-ai/webpilot/config"
	"github.com/webpilot-ai/webpilot/internal/agent/telemetry"
	"github.com/webpilot-ai/webpilot/provider"
)

// ErrAgentBusy is returned when a run is already active. Concurrent
// requests are rejected, not queued.
var ErrAgentBusy = errors.New("agent busy: a request is already being processed")

// TaskStore persists task records. The orchestrator only appends and
// updates; listing and search live with the store implementation.
type TaskStore interface {
	Append(ctx context.Context, task Task) error
	Update(ctx context.Context, task Task) error
}

// Orchestrator drives the four-phase pipeline for one request at a
// time and keeps the observable progress state current.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry
	registry  *Registry
	llm       provider.Provider
	tracker   *Tracker
	tasks     TaskStore

	mu         sync.Mutex
	processing bool
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry, registry *Registry, llm provider.Provider, tracker *Tracker, tasks TaskStore) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Orchestrator{
		config:    cfg,
		logger:    logger,
		telemetry: tele,
		registry:  registry,
		llm:       llm,
		tracker:   tracker,
		tasks:     tasks,
	}
}

// Tracker exposes the orchestrator's progress state for UI consumers.
func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// Processing reports whether a run is currently active.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// Process runs one user request through the phase pipeline. On any
// phase failure it attempts exactly one recovery completion call; if
// that also fails the returned text is a fixed apology embedding both
// error strings. The only error Process itself returns is ErrAgentBusy.
func (o *Orchestrator) Process(ctx context.Context, req Request) (Response, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return Response{}, ErrAgentBusy
	}
	o.processing = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.processing = false
		o.mu.Unlock()
	}()

	startTime := time.Now()
	task := Task{
		ID:          uuid.New().String(),
		Description: req.Message,
		Status:      TaskPending,
		CreatedAt:   time.Now(),
		Results:     make(map[string]interface{}),
	}
	if o.tasks != nil {
		if err := o.tasks.Append(ctx, task); err != nil {
			o.logger.Printf("warn: appending task failed: %v", err)
		}
	}

	o.logger.Printf("Starting processing for task: %s", task.ID)
	o.tracker.Begin(req.Message)

	resp, err := o.runPhases(ctx, &task, req)
	if err != nil {
		o.logger.Printf("Processing failed for task %s: %v", task.ID, err)
		resp = o.recover(ctx, req, err)
		resp.TaskID = task.ID
		task.Advance(TaskFailed)
		task.Error = err.Error()
		o.tracker.End("failed")
		o.finishTask(ctx, &task)
		if o.telemetry != nil {
			status := "failed"
			if resp.Recovered {
				status = "recovered"
			}
			o.telemetry.RecordRequest(status, time.Since(startTime))
		}
		return resp, nil
	}

	resp.TaskID = task.ID
	task.Advance(TaskCompleted)
	o.tracker.End("completed")
	o.finishTask(ctx, &task)
	if o.telemetry != nil {
		o.telemetry.RecordRequest("completed", time.Since(startTime))
	}
	o.logger.Printf("Completed processing for task: %s in %v", task.ID, time.Since(startTime))
	return resp, nil
}

func (o *Orchestrator) runPhases(ctx context.Context, task *Task, req Request) (Response, error) {
	catalog := o.registry.Catalog()

	// Phase 1: Thinking
	task.Advance(TaskThinking)
	o.tracker.SetPhase("thinking")
	o.tracker.Step("Analyzing the request")
	thinking, err := o.complete(ctx, "thinking", buildThinkPrompt(req.Message, catalog), req.Model)
	if err != nil {
		return Response{}, fmt.Errorf("thinking failed: %w", err)
	}
	task.Results["thinking"] = thinking
	o.tracker.SetResult("thinking", thinking)

	// Phase 2: Planning
	task.Advance(TaskPlanning)
	o.tracker.SetPhase("planning")
	o.tracker.Step("Creating execution plan")
	planText, err := o.complete(ctx, "planning", buildPlanPrompt(req.Message, thinking, catalog), req.Model)
	if err != nil {
		return Response{}, fmt.Errorf("planning failed: %w", err)
	}
	plan, parsed := ParsePlan(planText)
	if !parsed {
		o.logger.Printf("plan response unparseable, using default single-step plan")
		o.tracker.Step("Plan unparseable, using default plan")
	}
	task.Results["plan"] = plan
	o.tracker.SetResult("plan", plan)

	// Phase 3: Executing
	task.Advance(TaskExecuting)
	o.tracker.SetPhase("executing")
	execution := o.executePlan(ctx, plan)
	task.Results["execution"] = execution
	o.tracker.SetResult("execution", execution)

	// Phase 4: Responding
	o.tracker.SetPhase("responding")
	o.tracker.Step("Composing final answer")
	planJSON, _ := json.Marshal(plan)
	execJSON, _ := json.Marshal(execution)
	final, err := o.complete(ctx, "responding", buildRespondPrompt(req.Message, thinking, string(planJSON), string(execJSON)), req.Model)
	if err != nil {
		return Response{}, fmt.Errorf("responding failed: %w", err)
	}
	task.Results["response"] = final
	o.tracker.SetResult("response", final)

	return Response{Text: final, Trace: o.tracker.Trace()}, nil
}

// executePlan runs plan steps strictly in order. A failing or
// unknown tool never aborts the phase; each step gets its own record.
func (o *Orchestrator) executePlan(ctx context.Context, plan Plan) []StepResult {
	results := make([]StepResult, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		o.tracker.Step(fmt.Sprintf("Step %d: %s", i+1, step.Description))

		record := StepResult{
			Step:       i + 1,
			Tool:       step.Tool,
			Parameters: step.Parameters,
		}

		tool, ok := o.registry.Lookup(step.Tool)
		if step.Tool == "" || step.Tool == "none" || !ok {
			record.Status = StepSkipped
			record.Reason = "No tool required or tool not available"
			if o.telemetry != nil {
				o.telemetry.RecordToolExecution(step.Tool, "skipped")
			}
			results = append(results, record)
			continue
		}

		started := time.Now()
		out, err := tool.Execute(ctx, step.Parameters)
		if err != nil {
			record.Status = StepError
			record.Error = err.Error()
			o.logger.Printf("step %d (%s) failed: %v", i+1, step.Tool, err)
		} else {
			record.Status = StepSuccess
			record.Result = out
		}
		if o.telemetry != nil {
			o.telemetry.RecordToolExecution(step.Tool, string(record.Status))
			o.telemetry.RecordPhase("tool_"+step.Tool, time.Since(started))
		}
		results = append(results, record)
	}
	return results
}

// recover makes the single recovery completion attempt. It is never
// called recursively; a second failure produces the fixed apology.
func (o *Orchestrator) recover(ctx context.Context, req Request, cause error) Response {
	if o.telemetry != nil {
		o.telemetry.RecordFallback()
	}
	o.tracker.SetPhase("recovering")
	o.tracker.Step("Attempting recovery answer")

	recovered, err := o.complete(ctx, "recovery", buildRecoveryPrompt(req.Message, cause.Error()), req.Model)
	if err != nil {
		text := fmt.Sprintf(
			"I'm sorry, I couldn't process your request. The run failed with: %s. The recovery attempt also failed with: %s.",
			cause.Error(), err.Error())
		return Response{Text: text, Trace: o.tracker.Trace()}
	}

	text := fmt.Sprintf("I ran into a problem completing the full workflow, but here is what I can offer:\n\n%s", recovered)
	return Response{Text: text, Recovered: true, Trace: o.tracker.Trace()}
}

func (o *Orchestrator) complete(ctx context.Context, phase, prompt, model string) (string, error) {
	started := time.Now()
	out, err := o.llm.Complete(ctx, prompt, model)
	if o.telemetry != nil {
		o.telemetry.RecordCompletion(err == nil)
		o.telemetry.RecordPhase(phase, time.Since(started))
	}
	return out, err
}

func (o *Orchestrator) finishTask(ctx context.Context, task *Task) {
	snap := o.tracker.Snapshot()
	task.StepLog = snap.StepLog
	if o.tasks != nil {
		if err := o.tasks.Update(ctx, *task); err != nil {
			o.logger.Printf("warn: updating task failed: %v", err)
		}
	}
}
