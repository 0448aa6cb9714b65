package core

import (
	"time"
)

// TaskStatus tracks a task through the phase pipeline. Transitions
// only move forward, or divert to failed at any point.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskThinking  TaskStatus = "thinking"
	TaskPlanning  TaskStatus = "planning"
	TaskExecuting TaskStatus = "executing"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

var statusRank = map[TaskStatus]int{
	TaskPending:   0,
	TaskThinking:  1,
	TaskPlanning:  2,
	TaskExecuting: 3,
	TaskCompleted: 4,
	TaskFailed:    5,
}

// Task is the record of one orchestration run. It is created at
// request start and retained for the process lifetime.
type Task struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Status      TaskStatus             `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	Results     map[string]interface{} `json:"results"`
	StepLog     []string               `json:"step_log"`
	Error       string                 `json:"error,omitempty"`
}

// Advance moves the task to a later status. Backward transitions are
// ignored; failed is always reachable.
func (t *Task) Advance(next TaskStatus) {
	if next == TaskFailed {
		t.Status = TaskFailed
		return
	}
	if statusRank[next] > statusRank[t.Status] && t.Status != TaskFailed {
		t.Status = next
	}
}

// PlanStep is a single step of an execution plan.
type PlanStep struct {
	Step            int                    `json:"step"`
	Description     string                 `json:"description"`
	Tool            string                 `json:"tool"`
	Parameters      map[string]interface{} `json:"parameters"`
	ExpectedOutcome string                 `json:"expected_outcome"`
}

// Plan is the structured output of the Planning phase.
type Plan struct {
	Steps           []PlanStep `json:"steps"`
	FallbackPlan    string     `json:"fallback_plan"`
	SuccessCriteria string     `json:"success_criteria"`
}

// StepStatus is the outcome of a single executed plan step.
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepError   StepStatus = "error"
	StepSkipped StepStatus = "skipped"
)

// StepResult records the outcome of one plan step, in plan order.
type StepResult struct {
	Step       int                    `json:"step"`
	Status     StepStatus             `json:"status"`
	Tool       string                 `json:"tool"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Result     map[string]interface{} `json:"result,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Request is one user request handed to the orchestrator.
type Request struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// Trace carries the structured record of a completed run alongside
// the final text.
type Trace struct {
	StepLog         []string               `json:"step_log"`
	Results         map[string]interface{} `json:"results"`
	CompletedPhases []string               `json:"completed_phases"`
}

// Response is the orchestrator's final answer for one request.
type Response struct {
	TaskID    string `json:"task_id"`
	Text      string `json:"text"`
	Recovered bool   `json:"recovered,omitempty"`
	Trace     Trace  `json:"trace"`
}
