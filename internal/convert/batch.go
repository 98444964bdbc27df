// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// Job is one planned conversion.
type Job struct {
	Source      string
	Destination string
	Format      string
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// PlanJobs builds one Job per source path. Each destination keeps the
// source's base name with format as its extension, placed in outDir or, when
// outDir is empty, next to the source.
func PlanJobs(paths []string, outDir, format string) ([]Job, error) {
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if format == "" {
		return nil, fmt.Errorf("target format is required")
	}

	jobs := make([]Job, 0, len(paths))
	for _, p := range paths {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(p)
		}
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		dest := filepath.Join(dir, base+"."+format)
		if filepath.Clean(dest) == filepath.Clean(p) {
			return nil, fmt.Errorf("%s is already in %s format", p, format)
		}
		jobs = append(jobs, Job{Source: p, Destination: dest, Format: format})
	}
	return jobs, nil
}

// ConvertBatch queues every job in order, printing per-file status to w as
// each finishes and a summary at the end. If ctx is done first it returns
// the counts so far with ctx.Err(); queued jobs keep running but are no
// longer reported to w.
func ConvertBatch(ctx context.Context, svc *Service, jobs []Job, w io.Writer) (BatchResult, error) {
	var (
		mu      sync.Mutex
		result  BatchResult
		stopped bool
		wg      sync.WaitGroup
	)

	for _, j := range jobs {
		j := j
		wg.Add(1)
		svc.ConvertFile(j.Source, j.Destination, j.Format, func(err error) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return
			}
			if err != nil {
				result.Failed++
				fmt.Fprintf(w, "failed:    %s (%v)\n", j.Source, err)
				return
			}
			result.Converted++
			fmt.Fprintf(w, "converted: %s -> %s\n", j.Source, j.Destination)
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		return result, ctx.Err()
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		result.Converted, result.Failed, result.Total())
	return result, nil
}
