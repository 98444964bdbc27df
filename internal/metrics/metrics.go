// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes conversion queue activity as Prometheus metrics.
// The CLI is short-lived, so metrics are written in the text exposition
// format to a file for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/docbridge/internal/queue"
	"github.com/pdiddy/docbridge/pkg/types"
)

const namespace = "docbridge"

// Collector implements queue.Observer and records its events.
type Collector struct {
	registry *prometheus.Registry
	mode     string

	conversions   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	pending       prometheus.Gauge
	handlerPanics prometheus.Counter

	mu      sync.Mutex
	started time.Time
	now     func() time.Time
}

// New creates a collector on its own registry, labelling samples with mode.
func New(mode types.ConverterMode) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		mode:     string(mode),
		now:      time.Now,
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions finished, by converter mode and status.",
		}, []string{"mode", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time from dispatch to converter completion.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"mode"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_pending_tasks",
			Help:      "Tasks waiting behind the one in flight.",
		}),
		handlerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_panics_total",
			Help:      "Completion handlers that panicked.",
		}),
	}
	c.registry.MustRegister(c.conversions, c.duration, c.pending, c.handlerPanics)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) TaskStarted(_ queue.Task, pending int) {
	c.mu.Lock()
	c.started = c.now()
	c.mu.Unlock()
	c.pending.Set(float64(pending))
}

func (c *Collector) TaskFinished(_ queue.Task, err error) {
	c.mu.Lock()
	elapsed := c.now().Sub(c.started)
	c.mu.Unlock()

	status := types.ConversionDone
	if err != nil {
		status = types.ConversionFailed
	}
	c.conversions.WithLabelValues(c.mode, string(status)).Inc()
	c.duration.WithLabelValues(c.mode).Observe(elapsed.Seconds())
}

func (c *Collector) HandlerFailed(*queue.HandlerError) {
	c.handlerPanics.Inc()
}

// WriteTextfile writes all metrics to path, creating its directory.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
