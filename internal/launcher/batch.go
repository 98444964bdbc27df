// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package launcher

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docbridge/internal/procexec"
	"github.com/pdiddy/docbridge/pkg/types"
)

// Batch spawns `<executable> --to=<destination> <source>` per conversion.
// The target format is implied by the destination's extension.
type Batch struct {
	executable string
	spawner    procexec.Spawner
	logger     *slog.Logger
}

// NewBatch creates a batch-mode launcher.
func NewBatch(executable string, sp procexec.Spawner, logger *slog.Logger) *Batch {
	return &Batch{
		executable: executable,
		spawner:    sp,
		logger:     componentLogger(logger, types.ModeBatch),
	}
}

func (b *Batch) Mode() types.ConverterMode { return types.ModeBatch }

// Launch runs the converter to completion. A non-zero exit status yields a
// *CrashedError; output from a successful run is logged as a diagnostic.
func (b *Batch) Launch(req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	proc, err := b.spawner.Spawn(b.executable, "--to="+req.Destination, req.Source)
	if err != nil {
		return fmt.Errorf("starting converter %s: %w", b.executable, err)
	}
	_ = proc.Stdin().Close()

	var out outputBuffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&out, proc.Stdout())
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&out, proc.Stderr())
		return err
	})
	if err := g.Wait(); err != nil {
		b.logger.Warn("reading converter output", "pid", proc.PID(), "error", err)
	}

	code, err := proc.Wait()
	if err != nil {
		return fmt.Errorf("waiting for converter: %w", err)
	}

	output := out.String()
	if code != 0 {
		if output != "" {
			b.logger.Warn("converter failed", "pid", proc.PID(), "exit_code", code, "output", output)
		}
		return &CrashedError{ExitCode: code, Output: output}
	}
	if output != "" {
		b.logger.Info("converter output", "pid", proc.PID(), "source", req.Source, "output", output)
	}
	return nil
}
