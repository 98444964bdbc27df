// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package launcher drives the external converter process for one conversion
// at a time. Batch launches a process per file and reads its exit status;
// Session talks to the converter's interactive command plugin.
package launcher

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/pdiddy/docbridge/internal/procexec"
	"github.com/pdiddy/docbridge/pkg/types"
)

// Request names one conversion.
type Request struct {
	Source      string
	Destination string
	Format      string
}

// Validate rejects requests with empty fields.
func (r Request) Validate() error {
	if r.Source == "" || r.Destination == "" || r.Format == "" {
		return fmt.Errorf("%w: source, destination and format are required", ErrInvalidRequest)
	}
	return nil
}

// Launcher runs one conversion and reports its outcome. Implementations are
// not safe for overlapping calls; the queue guarantees there are none.
type Launcher interface {
	Launch(req Request) error
	Mode() types.ConverterMode
}

// New returns the launcher for cfg's effective mode on the running platform.
func New(cfg types.ConverterConfig, sp procexec.Spawner, logger *slog.Logger) (Launcher, error) {
	return newForOS(cfg, sp, logger, runtime.GOOS)
}

func newForOS(cfg types.ConverterConfig, sp procexec.Spawner, logger *slog.Logger, goos string) (Launcher, error) {
	if err := cfg.Mode.Validate(); err != nil {
		return nil, err
	}
	exe := cfg.Executable
	if exe == "" {
		exe = types.DefaultExecutable
	}

	switch cfg.Mode.Resolve(goos) {
	case types.ModeBatch:
		return NewBatch(exe, sp, logger), nil
	default:
		plugin := cfg.Plugin
		if plugin == "" {
			plugin = types.DefaultPlugin
		}
		return NewSession(exe, plugin, sp, logger), nil
	}
}

func componentLogger(l *slog.Logger, mode types.ConverterMode) *slog.Logger {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.With("component", "launcher", "mode", string(mode))
}

// outputBuffer collects stdout and stderr from two pumps.
type outputBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *outputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
