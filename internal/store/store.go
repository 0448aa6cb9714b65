package store

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/webpilot-ai/webpilot/internal/agent/core"
)

// Store keeps every task for the process lifetime. The list is
// append-only with no eviction; unbounded growth is an accepted
// limitation of the system. An optional Redis archive and full-text
// index are kept in step best-effort.
type Store struct {
	mu      sync.RWMutex
	tasks   []core.Task
	byID    map[string]int
	logger  *log.Logger
	archive *RedisArchive
	index   *SearchIndex
}

func New(logger *log.Logger, archive *RedisArchive, index *SearchIndex) *Store {
	if logger == nil {
		logger = log.New(log.Writer(), "[STORE] ", log.LstdFlags)
	}
	return &Store{
		byID:    make(map[string]int),
		logger:  logger,
		archive: archive,
		index:   index,
	}
}

// Append adds a new task record.
func (s *Store) Append(ctx context.Context, task core.Task) error {
	s.mu.Lock()
	if _, exists := s.byID[task.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("task already exists: %s", task.ID)
	}
	s.byID[task.ID] = len(s.tasks)
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	s.mirror(ctx, task)
	return nil
}

// Update replaces the record for the task's ID.
func (s *Store) Update(ctx context.Context, task core.Task) error {
	s.mu.Lock()
	idx, exists := s.byID[task.ID]
	if !exists {
		s.byID[task.ID] = len(s.tasks)
		s.tasks = append(s.tasks, task)
	} else {
		s.tasks[idx] = task
	}
	s.mu.Unlock()

	s.mirror(ctx, task)
	return nil
}

// Get returns the task with the given ID.
func (s *Store) Get(id string) (core.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return core.Task{}, false
	}
	return s.tasks[idx], true
}

// List returns all tasks, newest first.
func (s *Store) List() []core.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[len(s.tasks)-1-i] = t
	}
	return out
}

// Search queries the full-text index and resolves hits to tasks.
func (s *Store) Search(q string, k int) ([]core.Task, error) {
	if s.index == nil {
		return nil, fmt.Errorf("search index not configured")
	}
	ids, err := s.index.Search(q, k)
	if err != nil {
		return nil, err
	}
	out := make([]core.Task, 0, len(ids))
	for _, id := range ids {
		if task, ok := s.Get(id); ok {
			out = append(out, task)
		}
	}
	return out, nil
}

// Preload seeds the in-memory list from the Redis archive, typically
// once at startup.
func (s *Store) Preload(ctx context.Context) error {
	if s.archive == nil {
		return nil
	}
	tasks, err := s.archive.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for _, task := range tasks {
		if _, exists := s.byID[task.ID]; exists {
			continue
		}
		s.byID[task.ID] = len(s.tasks)
		s.tasks = append(s.tasks, task)
	}
	s.mu.Unlock()

	if s.index != nil {
		for _, task := range tasks {
			if err := s.index.Index(task); err != nil {
				s.logger.Printf("warn: indexing archived task %s failed: %v", task.ID, err)
			}
		}
	}
	return nil
}

func (s *Store) mirror(ctx context.Context, task core.Task) {
	if s.archive != nil {
		if err := s.archive.Save(ctx, task); err != nil {
			s.logger.Printf("warn: archiving task %s failed: %v", task.ID, err)
		}
	}
	if s.index != nil {
		if err := s.index.Index(task); err != nil {
			s.logger.Printf("warn: indexing task %s failed: %v", task.ID, err)
		}
	}
}
