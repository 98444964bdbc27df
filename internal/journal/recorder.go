// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pdiddy/docbridge/internal/queue"
	"github.com/pdiddy/docbridge/pkg/types"
)

// Recorder writes a journal row for every task the queue finishes.
// Write failures are logged; they never affect the conversion outcome.
type Recorder struct {
	store  *Store
	mode   types.ConverterMode
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	started time.Time
}

// NewRecorder returns a queue.Observer backed by store.
func NewRecorder(store *Store, mode types.ConverterMode, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{
		store:  store,
		mode:   mode,
		logger: logger.With("component", "journal"),
		now:    time.Now,
	}
}

func (r *Recorder) TaskStarted(queue.Task, int) {
	r.mu.Lock()
	r.started = r.now()
	r.mu.Unlock()
}

func (r *Recorder) TaskFinished(t queue.Task, err error) {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()

	rec := types.ConversionRecord{
		ID:          t.ID,
		Source:      t.Request.Source,
		Destination: t.Request.Destination,
		Format:      t.Request.Format,
		Mode:        r.mode,
		Status:      types.ConversionDone,
		StartedAt:   started,
		FinishedAt:  r.now(),
	}
	if err != nil {
		rec.Status = types.ConversionFailed
		rec.Error = err.Error()
	}
	if werr := r.store.Record(context.Background(), rec); werr != nil {
		r.logger.Warn("writing journal entry", "task", t.ID, "error", werr)
	}
}

func (r *Recorder) HandlerFailed(*queue.HandlerError) {}
