// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package procexec spawns converter processes and exposes their standard
// streams. Launchers depend on the Spawner interface so tests can swap in a
// fake process double.
package procexec

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Process is a running child process with piped standard streams.
type Process interface {
	// PID returns the OS process ID, or 0 for doubles without one.
	PID() int

	// Stdin returns the write end of the child's standard input.
	Stdin() io.WriteCloser

	// Stdout returns the read end of the child's standard output.
	Stdout() io.Reader

	// Stderr returns the read end of the child's standard error.
	Stderr() io.Reader

	// Wait blocks until the process exits and returns its exit status.
	// Callers must finish reading Stdout and Stderr before calling Wait.
	// A process that exits with a non-zero status is not an error; err is
	// reserved for failures to wait at all.
	Wait() (exitCode int, err error)
}

// Spawner starts processes.
type Spawner interface {
	Spawn(name string, args ...string) (Process, error)
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Lookup resolves name against PATH. Absolute and relative paths are checked
// for existence and executability.
func Lookup(name string) (string, error) {
	p, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("converter executable %s not found: %w", name, err)
	}
	return p, nil
}

// osSpawner is the production spawner backed by os/exec.
type osSpawner struct{}

// OS returns a Spawner that starts real processes.
func OS() Spawner { return osSpawner{} }

func (osSpawner) Spawn(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}

	return &osProcess{cmd: cmd, stdin: stdin, stdout: stdout, stderr: stderr}, nil
}

// osProcess wraps an exec.Cmd started by osSpawner.
type osProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
	stderr io.Reader
}

func (p *osProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *osProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *osProcess) Stdout() io.Reader     { return p.stdout }
func (p *osProcess) Stderr() io.Reader     { return p.stderr }

func (p *osProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("waiting for %s: %w", p.cmd.Path, err)
}
