// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert is the public entry point for document conversion. Every
// request goes through one serial queue, so at most one converter process
// is working at a time no matter how many callers convert concurrently.
package convert

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pdiddy/docbridge/internal/launcher"
	"github.com/pdiddy/docbridge/internal/queue"
	"github.com/pdiddy/docbridge/pkg/types"
)

// Service accepts conversion requests and runs them one at a time.
type Service struct {
	queue *queue.Queue
	mode  types.ConverterMode
	newID func() string
}

type serviceOptions struct {
	logger    *slog.Logger
	observers []queue.Observer
}

// Option configures a Service.
type Option func(*serviceOptions)

// WithLogger sets the logger passed to the queue.
func WithLogger(l *slog.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithObserver registers a queue observer (metrics, journal).
func WithObserver(obs queue.Observer) Option {
	return func(o *serviceOptions) { o.observers = append(o.observers, obs) }
}

// NewService returns a service that dispatches to l.
func NewService(l launcher.Launcher, opts ...Option) *Service {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	qopts := []queue.Option{queue.WithLogger(o.logger)}
	for _, obs := range o.observers {
		qopts = append(qopts, queue.WithObserver(obs))
	}

	return &Service{
		queue: queue.New(l.Launch, qopts...),
		mode:  l.Mode(),
		newID: uuid.NewString,
	}
}

// Mode returns the converter mode of the underlying launcher.
func (s *Service) Mode() types.ConverterMode { return s.mode }

// ConvertFile queues a conversion of source into destination as format.
// callback receives nil on success or the conversion error; it runs on the
// queue's goroutine after the converter finishes.
func (s *Service) ConvertFile(source, destination, format string, callback func(error)) {
	s.queue.Enqueue(queue.Task{
		ID: s.newID(),
		Request: launcher.Request{
			Source:      source,
			Destination: destination,
			Format:      format,
		},
		Done: callback,
	})
}

// Convert queues a conversion and waits for its outcome. Cancelling ctx
// stops the wait only; a dispatched conversion still runs to completion.
func (s *Service) Convert(ctx context.Context, source, destination, format string) error {
	done := make(chan error, 1)
	s.ConvertFile(source, destination, format, func(err error) { done <- err })

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued conversions not yet dispatched.
func (s *Service) Pending() int { return s.queue.Len() }

// Wait blocks until every queued conversion has finished, or ctx is done.
func (s *Service) Wait(ctx context.Context) error { return s.queue.Wait(ctx) }
