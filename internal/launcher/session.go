// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package launcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docbridge/internal/procexec"
	"github.com/pdiddy/docbridge/internal/reply"
	"github.com/pdiddy/docbridge/pkg/types"
)

// Session spawns `<executable> --plugin <plugin>` per conversion, writes a
// single `convert` command and waits for the reply. Each conversion gets its
// own process.
type Session struct {
	executable string
	plugin     string
	spawner    procexec.Spawner
	logger     *slog.Logger
}

// NewSession creates a session-mode launcher.
func NewSession(executable, plugin string, sp procexec.Spawner, logger *slog.Logger) *Session {
	return &Session{
		executable: executable,
		plugin:     plugin,
		spawner:    sp,
		logger:     componentLogger(logger, types.ModeSession),
	}
}

func (s *Session) Mode() types.ConverterMode { return types.ModeSession }

// session is the state of one converter process: the child and the parser
// that owns its output buffer.
type session struct {
	proc    procexec.Process
	parser  *reply.Parser
	replies chan outcome
	closed  chan struct{}
}

type outcome struct {
	ok   bool
	text string
}

// Command encodes req as a session protocol line.
func Command(req Request) string {
	return fmt.Sprintf("convert %s %s %s\n", req.Source, req.Destination, req.Format)
}

func validateSessionRequest(req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	for _, f := range []string{req.Source, req.Destination, req.Format} {
		if strings.ContainsAny(f, " \t\r\n") {
			return fmt.Errorf("%w: %q contains whitespace, which the session protocol cannot encode", ErrInvalidRequest, f)
		}
	}
	return nil
}

// Launch runs one conversion in a fresh converter session. It blocks until the
// converter replies; a converter that neither replies nor exits blocks
// forever.
func (s *Session) Launch(req Request) error {
	if err := validateSessionRequest(req); err != nil {
		return err
	}

	sess, err := s.start()
	if err != nil {
		return err
	}
	log := s.logger.With("pid", sess.proc.PID())

	sess.parser.Expect(func(ok bool, text string) {
		sess.replies <- outcome{ok: ok, text: text}
	})

	line := Command(req)
	log.Debug("sending command", "command", strings.TrimSpace(line))
	if _, err := io.WriteString(sess.proc.Stdin(), line); err != nil {
		_ = sess.proc.Stdin().Close()
		<-sess.closed
		code, _ := sess.proc.Wait()
		return &SessionClosedError{ExitCode: code, Err: err}
	}

	select {
	case r := <-sess.replies:
		return s.finish(sess, log, r)
	case <-sess.closed:
		// Output ended; the final chunk may still have carried the reply.
		select {
		case r := <-sess.replies:
			return s.finish(sess, log, r)
		default:
		}
		_ = sess.proc.Stdin().Close()
		code, _ := sess.proc.Wait()
		log.Warn("converter exited without replying", "exit_code", code)
		return &SessionClosedError{ExitCode: code}
	}
}

func (s *Session) start() (*session, error) {
	proc, err := s.spawner.Spawn(s.executable, "--plugin", s.plugin)
	if err != nil {
		return nil, fmt.Errorf("starting converter %s: %w", s.executable, err)
	}

	sess := &session{
		proc:    proc,
		parser:  reply.NewParser(reply.WithLogger(s.logger)),
		replies: make(chan outcome, 1),
		closed:  make(chan struct{}),
	}

	go func() {
		defer close(sess.closed)
		var g errgroup.Group
		g.Go(func() error { return pump(proc.Stdout(), sess.parser) })
		g.Go(func() error { return pump(proc.Stderr(), sess.parser) })
		if err := g.Wait(); err != nil {
			s.logger.Warn("reading converter output", "pid", proc.PID(), "error", err)
		}
	}()

	return sess, nil
}

// finish ends the session after a reply and classifies it.
func (s *Session) finish(sess *session, log *slog.Logger, r outcome) error {
	_ = sess.proc.Stdin().Close()
	go func() {
		<-sess.closed
		code, err := sess.proc.Wait()
		if err != nil {
			log.Warn("waiting for converter", "error", err)
			return
		}
		log.Debug("converter exited", "exit_code", code)
	}()

	if r.ok {
		return nil
	}
	return &RejectedError{Reply: r.text}
}

// pump feeds everything read from r into p until EOF.
func pump(r io.Reader, p *reply.Parser) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
