// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docbridge/internal/launcher"
	"github.com/pdiddy/docbridge/internal/queue"
	"github.com/pdiddy/docbridge/internal/testutil"
	"github.com/pdiddy/docbridge/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "var", "docbridge.db")
	store, err := Open(types.JournalConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleRecord(id string, offset time.Duration, status types.ConversionStatus) types.ConversionRecord {
	r := types.ConversionRecord{
		ID:          id,
		Source:      id + ".odt",
		Destination: id + ".pdf",
		Format:      "pdf",
		Mode:        types.ModeSession,
		Status:      status,
		StartedAt:   base.Add(offset),
		FinishedAt:  base.Add(offset + 250*time.Millisecond),
	}
	if status == types.ConversionFailed {
		r.Error = "conversion rejected: ErrorXYZ"
	}
	return r
}

func TestOpenCreatesDatabaseFile(t *testing.T) {
	_, path := testStore(t)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(types.JournalConfig{})
	assert.ErrorContains(t, err, "journal path")
}

func TestOpenIsIdempotent(t *testing.T) {
	store, path := testStore(t)
	require.NoError(t, store.Record(context.Background(), sampleRecord("a", 0, types.ConversionDone)))

	again, err := Open(types.JournalConfig{Path: path})
	require.NoError(t, err)
	defer again.Close()

	got, err := again.List(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordAndList(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, sampleRecord("a", 0, types.ConversionDone)))
	require.NoError(t, store.Record(ctx, sampleRecord("b", time.Second, types.ConversionFailed)))
	require.NoError(t, store.Record(ctx, sampleRecord("c", 1500*time.Millisecond, types.ConversionDone)))

	got, err := store.List(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})

	b := got[1]
	assert.Equal(t, "b.odt", b.Source)
	assert.Equal(t, "b.pdf", b.Destination)
	assert.Equal(t, "pdf", b.Format)
	assert.Equal(t, types.ModeSession, b.Mode)
	assert.Equal(t, types.ConversionFailed, b.Status)
	assert.Equal(t, "conversion rejected: ErrorXYZ", b.Error)
	assert.True(t, b.StartedAt.Equal(base.Add(time.Second)))
	assert.Equal(t, 250*time.Millisecond, b.Duration())
	assert.Empty(t, got[0].Error)
}

func TestListFilters(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c", "d"} {
		status := types.ConversionDone
		if i%2 == 1 {
			status = types.ConversionFailed
		}
		require.NoError(t, store.Record(ctx, sampleRecord(id, time.Duration(i)*time.Second, status)))
	}

	failed, err := store.List(ctx, QueryOptions{Status: types.ConversionFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 2)
	for _, r := range failed {
		assert.Equal(t, types.ConversionFailed, r.Status)
	}

	bySource, err := store.List(ctx, QueryOptions{Source: "c.odt"})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "c", bySource[0].ID)

	limited, err := store.List(ctx, QueryOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "d", limited[0].ID)
}

func TestRecordReplacesSameID(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, sampleRecord("a", 0, types.ConversionFailed)))
	require.NoError(t, store.Record(ctx, sampleRecord("a", time.Second, types.ConversionDone)))

	got, err := store.List(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.ConversionDone, got[0].Status)
}

func TestRecorder_WritesQueueOutcomes(t *testing.T) {
	store, _ := testStore(t)
	rec := NewRecorder(store, types.ModeBatch, testutil.NewTestLogger(t))
	clock := base
	rec.now = func() time.Time { return clock }

	run := func(r launcher.Request) error {
		clock = clock.Add(time.Second)
		if r.Source == "bad.doc" {
			return &launcher.CrashedError{ExitCode: 1}
		}
		return nil
	}
	q := queue.New(run, queue.WithObserver(rec))
	q.Enqueue(queue.Task{ID: "t1", Request: launcher.Request{Source: "good.doc", Destination: "good.pdf", Format: "pdf"}})
	q.Enqueue(queue.Task{ID: "t2", Request: launcher.Request{Source: "bad.doc", Destination: "bad.pdf", Format: "pdf"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Wait(ctx))

	got, err := store.List(context.Background(), QueryOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[string]types.ConversionRecord{}
	for _, r := range got {
		byID[r.ID] = r
	}
	assert.Equal(t, types.ConversionDone, byID["t1"].Status)
	assert.Equal(t, types.ModeBatch, byID["t1"].Mode)
	assert.Equal(t, time.Second, byID["t1"].Duration())
	assert.Equal(t, types.ConversionFailed, byID["t2"].Status)
	assert.Equal(t, "converter died with exit code 1", byID["t2"].Error)
}

func TestRecorder_LogsWriteFailure(t *testing.T) {
	store, _ := testStore(t)
	require.NoError(t, store.Close())

	logger, logs := testutil.NewBufferLogger()
	rec := NewRecorder(store, types.ModeSession, logger)
	rec.TaskStarted(queue.Task{ID: "x"}, 0)
	rec.TaskFinished(queue.Task{ID: "x"}, errors.New("boom"))

	assert.Contains(t, logs.String(), "writing journal entry")
}

func TestWriteYAML(t *testing.T) {
	records := []types.ConversionRecord{
		sampleRecord("a", 0, types.ConversionDone),
		sampleRecord("b", time.Second, types.ConversionFailed),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, records))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "a", decoded[0]["id"])
	assert.Equal(t, "session", decoded[0]["mode"])
	assert.NotContains(t, decoded[0], "error")
	assert.Equal(t, "conversion rejected: ErrorXYZ", decoded[1]["error"])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []types.ConversionRecord{sampleRecord("a", 0, types.ConversionDone)}))

	var decoded []types.ConversionRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "a.odt", decoded[0].Source)
	assert.Equal(t, types.ConversionDone, decoded[0].Status)
}

func TestWriteEmpty(t *testing.T) {
	var y, j bytes.Buffer
	require.NoError(t, WriteYAML(&y, nil))
	require.NoError(t, WriteJSON(&j, nil))
	assert.Equal(t, "[]\n", y.String())
	assert.Equal(t, "[]\n", j.String())
}
