// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package queue serializes conversion tasks: tasks run one at a time in the
// order they were enqueued, and each task's completion handler runs before
// the next task starts.
package queue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pdiddy/docbridge/internal/launcher"
)

// Task is one pending conversion.
type Task struct {
	// ID identifies the task in logs and the journal.
	ID string

	Request launcher.Request

	// Done receives nil on success or the conversion error. It runs on the
	// queue's goroutine; a panic is recovered and logged.
	Done func(error)
}

// RunFunc performs one conversion.
type RunFunc func(launcher.Request) error

// Observer is notified of task lifecycle events. Calls are made from the
// queue's goroutine and hold up the next dispatch, so they should be quick.
type Observer interface {
	TaskStarted(t Task, pending int)
	TaskFinished(t Task, err error)
	HandlerFailed(err *HandlerError)
}

// HandlerError reports a completion handler that panicked.
type HandlerError struct {
	TaskID string
	Value  any
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("completion handler for task %s panicked: %v", e.TaskID, e.Value)
}

// Queue runs tasks with concurrency 1.
type Queue struct {
	run       RunFunc
	logger    *slog.Logger
	observers []Observer

	mu      sync.Mutex
	pending []Task
	running bool
	idle    chan struct{}
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the queue's logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithObserver registers o for lifecycle events. Observers are called in
// registration order.
func WithObserver(o Observer) Option {
	return func(q *Queue) {
		if o != nil {
			q.observers = append(q.observers, o)
		}
	}
}

// New returns an idle queue that dispatches tasks to run.
func New(run RunFunc, opts ...Option) *Queue {
	q := &Queue{
		run:    run,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		idle:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.With("component", "queue")
	close(q.idle)
	return q
}

// Enqueue appends t and starts the drain goroutine if the queue is idle.
func (q *Queue) Enqueue(t Task) {
	q.mu.Lock()
	q.pending = append(q.pending, t)
	start := !q.running
	if start {
		q.running = true
		q.idle = make(chan struct{})
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
}

// Len returns the number of tasks waiting to be dispatched.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wait blocks until the queue has no pending or running task, or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			close(q.idle)
			q.mu.Unlock()
			return
		}
		t := q.pending[0]
		q.pending[0] = Task{}
		q.pending = q.pending[1:]
		remaining := len(q.pending)
		q.mu.Unlock()

		q.dispatch(t, remaining)
	}
}

func (q *Queue) dispatch(t Task, remaining int) {
	log := q.logger.With("task", t.ID)
	log.Debug("dispatching", "source", t.Request.Source, "destination", t.Request.Destination,
		"format", t.Request.Format, "pending", remaining)
	for _, o := range q.observers {
		o.TaskStarted(t, remaining)
	}

	err := q.run(t.Request)
	if err != nil {
		log.Debug("conversion failed", "error", err)
	}
	for _, o := range q.observers {
		o.TaskFinished(t, err)
	}

	if herr := q.complete(t, err); herr != nil {
		log.Error("file failed to convert", "source", t.Request.Source, "error", herr)
		for _, o := range q.observers {
			o.HandlerFailed(herr)
		}
	}
}

// complete runs the task's handler, converting a panic into a HandlerError.
func (q *Queue) complete(t Task, err error) (herr *HandlerError) {
	if t.Done == nil {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			herr = &HandlerError{TaskID: t.ID, Value: v}
		}
	}()
	t.Done(err)
	return nil
}
