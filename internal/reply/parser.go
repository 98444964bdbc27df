// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reply splits the continuous output stream of an interactive
// converter session into one reply per issued command. Replies are framed by
// the converter's prompt marker; the first marker only ends the startup
// banner.
package reply

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
)

const (
	// Marker is the prompt AbiWord's AbiCommand plugin prints when it is
	// ready for the next command.
	Marker = "AbiWord:>"

	// SuccessToken appears in a reply when the command succeeded.
	SuccessToken = "OK"
)

// Handler receives the outcome of one reply: ok reports whether the success
// token was present, text is the reply with the marker removed.
type Handler func(ok bool, text string)

// state is the parser's position in the session protocol.
type state int

const (
	awaitingFirstPrompt state = iota
	ready
)

func (s state) String() string {
	switch s {
	case awaitingFirstPrompt:
		return "awaiting-first-prompt"
	case ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Parser accumulates session output and extracts marker-delimited replies.
// Feed may be called from several goroutines; handlers run outside the lock.
type Parser struct {
	marker  []byte
	success []byte
	logger  *slog.Logger

	mu      sync.Mutex
	state   state
	buf     []byte
	pending Handler
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarker overrides the prompt marker.
func WithMarker(m string) Option {
	return func(p *Parser) { p.marker = []byte(m) }
}

// WithSuccessToken overrides the success token.
func WithSuccessToken(tok string) Option {
	return func(p *Parser) { p.success = []byte(tok) }
}

// WithLogger sets the logger used for dropped replies.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser returns a parser waiting for the converter's first prompt.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		marker:  []byte(Marker),
		success: []byte(SuccessToken),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:   awaitingFirstPrompt,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Expect registers h to receive the next reply. A handler registered while
// another is pending replaces it.
func (p *Parser) Expect(h Handler) {
	p.mu.Lock()
	p.pending = h
	p.mu.Unlock()
}

// Pending reports whether a handler is waiting for a reply.
func (p *Parser) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Feed appends chunk to the buffer and delivers every reply it completes.
func (p *Parser) Feed(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	type delivery struct {
		h    Handler
		ok   bool
		text string
	}
	var out []delivery

	p.mu.Lock()
	p.buf = append(p.buf, chunk...)
	for {
		var (
			advanced bool
			d        delivery
			got      bool
		)
		switch p.state {
		case awaitingFirstPrompt:
			advanced = p.stepAwaitingFirstPrompt()
		case ready:
			d.h, d.ok, d.text, got = p.stepReady()
			advanced = got
		}
		if got {
			if d.h != nil {
				out = append(out, d)
			} else {
				p.logger.Debug("dropping reply with no pending command", "reply", d.text)
			}
		}
		if !advanced {
			break
		}
	}
	p.mu.Unlock()

	for _, d := range out {
		d.h(d.ok, d.text)
	}
}

// stepAwaitingFirstPrompt discards the startup banner through the first
// marker. It reports whether the state changed.
func (p *Parser) stepAwaitingFirstPrompt() bool {
	i := bytes.Index(p.buf, p.marker)
	if i < 0 {
		return false
	}
	p.buf = append(p.buf[:0], p.buf[i+len(p.marker):]...)
	p.state = ready
	return true
}

// stepReady extracts one reply if a marker is buffered. The buffer is reset
// to empty afterwards, including anything after the marker.
func (p *Parser) stepReady() (h Handler, ok bool, text string, got bool) {
	i := bytes.Index(p.buf, p.marker)
	if i < 0 {
		return nil, false, "", false
	}
	replyText := p.buf[:i]
	ok = bytes.Contains(replyText, p.success)
	text = string(replyText)

	p.buf = p.buf[:0]
	h, p.pending = p.pending, nil
	return h, ok, text, true
}
