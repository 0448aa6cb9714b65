package core

import (
	"sync"
	"time"
)

// ProgressSnapshot is a read-only view of the tracker for UI
// consumers.
type ProgressSnapshot struct {
	Phase       string                 `json:"phase"`
	CurrentStep string                 `json:"current_step"`
	StepLog     []string               `json:"step_log"`
	Results     map[string]interface{} `json:"results"`
	Processing  bool                   `json:"processing"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Observer receives a snapshot after every tracker mutation.
type Observer func(ProgressSnapshot)

// Tracker holds the observable progress state for the single active
// run. The step log is append-only within a run and cleared when a
// new run begins.
type Tracker struct {
	mu          sync.RWMutex
	phase       string
	currentStep string
	stepLog     []string
	results     map[string]interface{}
	processing  bool
	observers   map[int]Observer
	nextID      int
}

func NewTracker() *Tracker {
	return &Tracker{
		results:   make(map[string]interface{}),
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer and returns its handle.
func (t *Tracker) Subscribe(obs Observer) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.observers[t.nextID] = obs
	return t.nextID
}

// Unsubscribe removes a previously registered observer.
func (t *Tracker) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.observers, id)
}

// Begin resets the tracker for a new run.
func (t *Tracker) Begin(description string) {
	t.mu.Lock()
	t.phase = "pending"
	t.currentStep = description
	t.stepLog = nil
	t.results = make(map[string]interface{})
	t.processing = true
	t.mu.Unlock()
	t.notify()
}

// SetPhase records the current phase.
func (t *Tracker) SetPhase(phase string) {
	t.mu.Lock()
	t.phase = phase
	t.mu.Unlock()
	t.notify()
}

// Step appends a log entry and makes it the current step.
func (t *Tracker) Step(message string) {
	t.mu.Lock()
	t.currentStep = message
	t.stepLog = append(t.stepLog, message)
	t.mu.Unlock()
	t.notify()
}

// SetResult stores a phase output.
func (t *Tracker) SetResult(phase string, value interface{}) {
	t.mu.Lock()
	t.results[phase] = value
	t.mu.Unlock()
	t.notify()
}

// End marks the run finished.
func (t *Tracker) End(phase string) {
	t.mu.Lock()
	t.phase = phase
	t.processing = false
	t.mu.Unlock()
	t.notify()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() ProgressSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// Trace builds the trace view of the finished (or failing) run.
func (t *Tracker) Trace() Trace {
	snap := t.Snapshot()
	completed := make([]string, 0, len(snap.Results))
	for _, phase := range []string{"thinking", "plan", "execution", "response"} {
		if _, ok := snap.Results[phase]; ok {
			completed = append(completed, phase)
		}
	}
	return Trace{
		StepLog:         snap.StepLog,
		Results:         snap.Results,
		CompletedPhases: completed,
	}
}

func (t *Tracker) snapshotLocked() ProgressSnapshot {
	log := make([]string, len(t.stepLog))
	copy(log, t.stepLog)
	results := make(map[string]interface{}, len(t.results))
	for k, v := range t.results {
		results[k] = v
	}
	return ProgressSnapshot{
		Phase:       t.phase,
		CurrentStep: t.currentStep,
		StepLog:     log,
		Results:     results,
		Processing:  t.processing,
		UpdatedAt:   time.Now(),
	}
}

func (t *Tracker) notify() {
	t.mu.RLock()
	snap := t.snapshotLocked()
	observers := make([]Observer, 0, len(t.observers))
	for _, obs := range t.observers {
		observers = append(observers, obs)
	}
	t.mu.RUnlock()
	for _, obs := range observers {
		obs(snap)
	}
}
