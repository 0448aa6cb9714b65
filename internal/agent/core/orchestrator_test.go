package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/webpilot-ai/webpilot/config"
)

type scriptedLLM struct {
	mu        sync.Mutex
	responses []func(prompt string) (string, error)
	prompts   []string
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt, model string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.responses) == 0 {
		return "", errors.New("unexpected completion call")
	}
	fn := s.responses[0]
	s.responses = s.responses[1:]
	return fn(prompt)
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func text(out string) func(string) (string, error) {
	return func(string) (string, error) { return out, nil }
}

func fail(msg string) func(string) (string, error) {
	return func(string) (string, error) { return "", errors.New(msg) }
}

func newTestOrchestrator(llm *scriptedLLM, reg *Registry) *Orchestrator {
	if reg == nil {
		reg = NewRegistry()
	}
	logger := log.New(io.Discard, "", 0)
	return NewOrchestrator(&config.Config{}, logger, nil, reg, llm, NewTracker(), nil)
}

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its parameters",
		Execute: func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"echo": params}, nil
		},
	}
}

func failingTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "always fails",
		Execute: func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
			return nil, errors.New("tool exploded")
		},
	}
}

func planJSON(steps ...string) string {
	return fmt.Sprintf(`{"steps":[%s],"fallback_plan":"answer directly","success_criteria":"done"}`, strings.Join(steps, ","))
}

func stepJSON(n int, tool string) string {
	return fmt.Sprintf(`{"step":%d,"description":"step %d","tool":"%s","parameters":{},"expected_outcome":"out"}`, n, n, tool)
}

func TestProcessHappyPath(t *testing.T) {
	llm := &scriptedLLM{responses: []func(string) (string, error){
		text("the user wants an echo"),
		text(planJSON(stepJSON(1, "echo"), stepJSON(2, "none"))),
		text("final answer"),
	}}
	reg := NewRegistry()
	reg.Register(echoTool("echo"))
	orch := newTestOrchestrator(llm, reg)

	resp, err := orch.Process(context.Background(), Request{Message: "do the thing"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Text != "final answer" {
		t.Fatalf("expected final answer, got %q", resp.Text)
	}
	if resp.Recovered {
		t.Fatalf("did not expect recovered response")
	}
	if llm.callCount() != 3 {
		t.Fatalf("expected 3 completion calls, got %d", llm.callCount())
	}

	execution, ok := resp.Trace.Results["execution"].([]StepResult)
	if !ok {
		t.Fatalf("expected execution results in trace, got %T", resp.Trace.Results["execution"])
	}
	if len(execution) != 2 {
		t.Fatalf("expected 2 step records, got %d", len(execution))
	}
	if execution[0].Status != StepSuccess {
		t.Fatalf("expected step 1 success, got %s", execution[0].Status)
	}
	if execution[1].Status != StepSkipped {
		t.Fatalf("expected step 2 skipped, got %s", execution[1].Status)
	}

	want := []string{"thinking", "plan", "execution", "response"}
	if len(resp.Trace.CompletedPhases) != len(want) {
		t.Fatalf("expected completed phases %v, got %v", want, resp.Trace.CompletedPhases)
	}
}

func TestProcessUnknownToolIsSkippedNotErrored(t *testing.T) {
	llm := &scriptedLLM{responses: []func(string) (string, error){
		text("thinking"),
		text(planJSON(stepJSON(1, "does_not_exist"))),
		text("final"),
	}}
	orch := newTestOrchestrator(llm, nil)

	resp, err := orch.Process(context.Background(), Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	execution := resp.Trace.Results["execution"].([]StepResult)
	if execution[0].Status != StepSkipped {
		t.Fatalf("expected skipped, got %s", execution[0].Status)
	}
	if execution[0].Reason != "No tool required or tool not available" {
		t.Fatalf("unexpected skip reason: %q", execution[0].Reason)
	}
	if execution[0].Error != "" {
		t.Fatalf("skipped step must not carry an error, got %q", execution[0].Error)
	}
}

func TestProcessFailingStepDoesNotBlockSubsequentSteps(t *testing.T) {
	llm := &scriptedLLM{responses: []func(string) (string, error){
		text("thinking"),
		text(planJSON(stepJSON(1, "echo"), stepJSON(2, "boom"), stepJSON(3, "echo"))),
		text("final"),
	}}
	reg := NewRegistry()
	reg.Register(echoTool("echo"))
	reg.Register(failingTool("boom"))
	orch := newTestOrchestrator(llm, reg)

	resp, err := orch.Process(context.Background(), Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	execution := resp.Trace.Results["execution"].([]StepResult)
	if len(execution) != 3 {
		t.Fatalf("expected exactly 3 step records, got %d", len(execution))
	}
	wantStatuses := []StepStatus{StepSuccess, StepError, StepSuccess}
	for i, want := range wantStatuses {
		if execution[i].Status != want {
			t.Fatalf("step %d: expected %s, got %s", i+1, want, execution[i].Status)
		}
	}
	if !strings.Contains(execution[1].Error, "tool exploded") {
		t.Fatalf("expected error record to carry the cause, got %q", execution[1].Error)
	}
}

func TestProcessUnparseablePlanFallsBackToDefault(t *testing.T) {
	llm := &scriptedLLM{responses: []func(string) (string, error){
		text("thinking"),
		text("sorry, no JSON today"),
		text("final"),
	}}
	orch := newTestOrchestrator(llm, nil)

	resp, err := orch.Process(context.Background(), Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	plan, ok := resp.Trace.Results["plan"].(Plan)
	if !ok {
		t.Fatalf("expected plan in trace, got %T", resp.Trace.Results["plan"])
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Tool != "none" {
		t.Fatalf("expected default single-step no-tool plan, got %+v", plan)
	}
	execution := resp.Trace.Results["execution"].([]StepResult)
	if execution[0].Status != StepSkipped {
		t.Fatalf("expected default plan step to be skipped, got %s", execution[0].Status)
	}
}

func TestProcessThinkFailureTriggersSingleFallback(t *testing.T) {
	llm := &scriptedLLM{responses: []func(string) (string, error){
		fail("endpoint down"),
		text("recovered answer"),
	}}
	orch := newTestOrchestrator(llm, nil)

	resp, err := orch.Process(context.Background(), Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !resp.Recovered {
		t.Fatalf("expected recovered response")
	}
	if !strings.Contains(resp.Text, "recovered answer") {
		t.Fatalf("expected recovered content in text, got %q", resp.Text)
	}
	if llm.callCount() != 2 {
		t.Fatalf("expected exactly one fallback call (2 total), got %d", llm.callCount())
	}
}

func TestProcessDoubleFailureEmbedsBothErrors(t *testing.T) {
	llm := &scriptedLLM{responses: []func(string) (string, error){
		fail("primary boom"),
		fail("fallback bang"),
	}}
	orch := newTestOrchestrator(llm, nil)

	resp, err := orch.Process(context.Background(), Request{Message: "hi"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Recovered {
		t.Fatalf("double failure must not claim recovery")
	}
	if !strings.Contains(resp.Text, "primary boom") || !strings.Contains(resp.Text, "fallback bang") {
		t.Fatalf("apology must embed both error strings, got %q", resp.Text)
	}
	if llm.callCount() != 2 {
		t.Fatalf("recovery must be attempted exactly once, got %d calls", llm.callCount())
	}
}

func TestProcessRejectsConcurrentRuns(t *testing.T) {
	release := make(chan struct{})
	llm := &scriptedLLM{responses: []func(string) (string, error){
		func(string) (string, error) {
			<-release
			return "", errors.New("first run aborted")
		},
		fail("recovery also aborted"),
	}}
	orch := newTestOrchestrator(llm, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = orch.Process(context.Background(), Request{Message: "first"})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !orch.Processing() {
		if time.Now().After(deadline) {
			t.Fatalf("first run never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := orch.Process(context.Background(), Request{Message: "second"}); !errors.Is(err, ErrAgentBusy) {
		t.Fatalf("expected ErrAgentBusy, got %v", err)
	}

	close(release)
	<-done
	if orch.Processing() {
		t.Fatalf("processing flag must clear after the run finishes")
	}
}

func TestTaskAdvanceIsForwardOnly(t *testing.T) {
	task := Task{Status: TaskPending}
	task.Advance(TaskExecuting)
	task.Advance(TaskThinking)
	if task.Status != TaskExecuting {
		t.Fatalf("expected backward transition to be ignored, got %s", task.Status)
	}
	task.Advance(TaskFailed)
	if task.Status != TaskFailed {
		t.Fatalf("expected failed to be reachable, got %s", task.Status)
	}
	task.Advance(TaskCompleted)
	if task.Status != TaskFailed {
		t.Fatalf("failed is terminal, got %s", task.Status)
	}
}
