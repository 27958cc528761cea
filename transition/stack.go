// Package transition holds the exit/entry task stacks run around a
// navigation commit. Components register animation work onto a stack;
// execution runs every task in parallel and resolves when all complete or
// a timeout ceiling elapses, whichever is first.
package transition

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one unit of exit or entry animation work.
type Task func(ctx context.Context) error

// Duration wraps a fixed animation duration as a task.
func Duration(d time.Duration) Task {
	return func(ctx context.Context) error {
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type entry struct {
	token string
	task  Task
}

// Stack is one ordered task list. Safe for concurrent Add/Remove against
// Execute, since components mount and unmount while transitions run.
type Stack struct {
	mu      sync.Mutex
	name    string
	entries []entry
	log     *zap.Logger
}

// NewStack creates a named stack ("exit", "entry").
func NewStack(name string, log *zap.Logger) *Stack {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stack{name: name, log: log}
}

// Add appends a task and returns its removal function. The registering
// component owns the token and must remove it on teardown; removing twice
// or after execution is a no-op.
func (s *Stack) Add(task Task) (remove func()) {
	if task == nil {
		return func() {}
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.entries = append(s.entries, entry{token: token, task: task})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.entries {
			if e.token == token {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

// Len returns the pending task count.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Execute snapshots and clears the current task list, runs every task in
// parallel, and returns when all complete or timeout elapses. Timeout is a
// soft failure: the wait is abandoned, the tasks are not cancelled, and
// navigation proceeds as though they completed. Task errors are logged and
// swallowed for the same reason: a broken animation must not stall
// navigation.
func (s *Stack) Execute(ctx context.Context, timeout time.Duration) {
	s.mu.Lock()
	batch := s.entries
	s.entries = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	g := new(errgroup.Group)
	for _, e := range batch {
		task := e.task
		g.Go(func() error { return task(ctx) })
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case err := <-done:
		if err != nil {
			s.log.Warn("transition: task failed",
				zap.String("stack", s.name),
				zap.Error(err))
		}
	case <-timer:
		s.log.Warn("transition: timed out waiting for tasks",
			zap.String("stack", s.name),
			zap.Int("tasks", len(batch)),
			zap.Duration("timeout", timeout))
	case <-ctx.Done():
	}
}
