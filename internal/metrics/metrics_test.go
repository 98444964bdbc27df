// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docbridge/internal/queue"
	"github.com/pdiddy/docbridge/pkg/types"
)

func TestCollector_RecordsOutcomes(t *testing.T) {
	c := New(types.ModeSession)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.TaskStarted(queue.Task{ID: "a"}, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.pending))
	clock = clock.Add(300 * time.Millisecond)
	c.TaskFinished(queue.Task{ID: "a"}, nil)

	c.TaskStarted(queue.Task{ID: "b"}, 1)
	c.TaskFinished(queue.Task{ID: "b"}, errors.New("conversion rejected: ErrorXYZ"))

	c.TaskStarted(queue.Task{ID: "c"}, 0)
	c.TaskFinished(queue.Task{ID: "c"}, nil)
	c.HandlerFailed(&queue.HandlerError{TaskID: "c", Value: "boom"})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.conversions.WithLabelValues("session", "converted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.conversions.WithLabelValues("session", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.handlerPanics))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.pending))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New(types.ModeBatch)
	c.TaskStarted(queue.Task{ID: "a"}, 0)
	c.TaskFinished(queue.Task{ID: "a"}, nil)

	path := filepath.Join(t.TempDir(), "textfile", "docbridge.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `docbridge_conversions_total{mode="batch",status="converted"} 1`)
	assert.Contains(t, text, "docbridge_conversion_duration_seconds_count")
	assert.Contains(t, text, "docbridge_handler_panics_total 0")
}
