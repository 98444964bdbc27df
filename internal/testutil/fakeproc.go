// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package testutil

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/pdiddy/docbridge/internal/procexec"
)

// SpawnCall records one Spawn invocation.
type SpawnCall struct {
	Name string
	Args []string
}

// FakeSpawner implements procexec.Spawner. Each Spawn creates a FakeProcess
// and runs Script against it in a new goroutine; the script plays the
// converter side of the pipes and must eventually call Exit.
type FakeSpawner struct {
	Script func(p *FakeProcess)
	Err    error

	mu    sync.Mutex
	calls []SpawnCall
	procs []*FakeProcess
}

func (s *FakeSpawner) Spawn(name string, args ...string) (procexec.Process, error) {
	s.mu.Lock()
	s.calls = append(s.calls, SpawnCall{Name: name, Args: append([]string(nil), args...)})
	if s.Err != nil {
		s.mu.Unlock()
		return nil, s.Err
	}
	p := newFakeProcess(len(s.procs)+1, name, args)
	s.procs = append(s.procs, p)
	s.mu.Unlock()

	if s.Script != nil {
		go s.Script(p)
	}
	return p, nil
}

// Calls returns a copy of the recorded Spawn invocations in order.
func (s *FakeSpawner) Calls() []SpawnCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SpawnCall(nil), s.calls...)
}

// Processes returns the processes spawned so far in order.
func (s *FakeSpawner) Processes() []*FakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FakeProcess(nil), s.procs...)
}

// FakeProcess implements procexec.Process over in-memory pipes.
type FakeProcess struct {
	Name string
	Args []string

	pid int

	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	stderrR *io.PipeReader
	stderrW *io.PipeWriter
	lines   *bufio.Reader

	exitOnce sync.Once
	exit     chan int

	mu    sync.Mutex
	input []string
}

func newFakeProcess(pid int, name string, args []string) *FakeProcess {
	p := &FakeProcess{Name: name, Args: args, pid: pid, exit: make(chan int, 1)}
	p.stdinR, p.stdinW = io.Pipe()
	p.stdoutR, p.stdoutW = io.Pipe()
	p.stderrR, p.stderrW = io.Pipe()
	p.lines = bufio.NewReader(p.stdinR)
	return p
}

func (p *FakeProcess) PID() int              { return p.pid }
func (p *FakeProcess) Stdin() io.WriteCloser { return p.stdinW }
func (p *FakeProcess) Stdout() io.Reader     { return p.stdoutR }
func (p *FakeProcess) Stderr() io.Reader     { return p.stderrR }

func (p *FakeProcess) Wait() (int, error) {
	code := <-p.exit
	p.exit <- code
	return code, nil
}

// ReadLine reads one line written by the launcher to stdin, without the
// trailing newline. It returns io.EOF once stdin is closed.
func (p *FakeProcess) ReadLine() (string, error) {
	line, err := p.lines.ReadString('\n')
	if line != "" {
		line = strings.TrimSuffix(line, "\n")
		p.mu.Lock()
		p.input = append(p.input, line)
		p.mu.Unlock()
		return line, nil
	}
	return "", err
}

// Input returns the stdin lines consumed through ReadLine.
func (p *FakeProcess) Input() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.input...)
}

// WriteStdout emits s on the process's standard output.
func (p *FakeProcess) WriteStdout(s string) {
	_, _ = io.WriteString(p.stdoutW, s)
}

// WriteStderr emits s on the process's standard error.
func (p *FakeProcess) WriteStderr(s string) {
	_, _ = io.WriteString(p.stderrW, s)
}

// Exit closes the output streams and makes Wait return code.
func (p *FakeProcess) Exit(code int) {
	p.exitOnce.Do(func() {
		_ = p.stdoutW.Close()
		_ = p.stderrW.Close()
		_ = p.stdinR.Close()
		p.exit <- code
	})
}

// AbiCommandScript returns a script that behaves like `abiword --plugin
// AbiCommand`: it prints a banner and prompt, answers each `convert` line
// with reply(line) followed by a prompt, and exits 0 when stdin closes.
func AbiCommandScript(reply func(line string) string) func(p *FakeProcess) {
	return func(p *FakeProcess) {
		p.WriteStdout("AbiWord 3.0.5\nAbiWord:>")
		for {
			line, err := p.ReadLine()
			if err != nil {
				p.Exit(0)
				return
			}
			p.WriteStdout(reply(line) + "\nAbiWord:>")
		}
	}
}
