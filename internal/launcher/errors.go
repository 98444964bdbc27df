// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package launcher

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConverterCrashed matches a *CrashedError.
	ErrConverterCrashed = errors.New("converter crashed")

	// ErrConversionRejected matches a *RejectedError.
	ErrConversionRejected = errors.New("conversion rejected")

	// ErrSessionClosed matches a *SessionClosedError.
	ErrSessionClosed = errors.New("converter session closed")

	// ErrInvalidRequest is returned for requests that cannot be encoded for
	// the converter.
	ErrInvalidRequest = errors.New("invalid conversion request")
)

// CrashedError reports a batch-mode converter that exited non-zero.
type CrashedError struct {
	ExitCode int

	// Output is everything the process wrote to stdout and stderr.
	Output string
}

func (e *CrashedError) Error() string {
	return fmt.Sprintf("converter died with exit code %d", e.ExitCode)
}

func (e *CrashedError) Is(target error) bool { return target == ErrConverterCrashed }

// RejectedError reports a session reply without the success token.
type RejectedError struct {
	// Reply is the raw reply text with the prompt marker removed.
	Reply string
}

func (e *RejectedError) Error() string {
	msg := strings.TrimSpace(e.Reply)
	if msg == "" {
		return "conversion rejected: empty reply"
	}
	return "conversion rejected: " + msg
}

func (e *RejectedError) Is(target error) bool { return target == ErrConversionRejected }

// SessionClosedError reports a session whose output ended before the
// converter replied to the command.
type SessionClosedError struct {
	ExitCode int

	// Err is the stdin write failure, if that is how the closure surfaced.
	Err error
}

func (e *SessionClosedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("converter exited with code %d before replying: %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("converter exited with code %d before replying", e.ExitCode)
}

func (e *SessionClosedError) Is(target error) bool { return target == ErrSessionClosed }

func (e *SessionClosedError) Unwrap() error { return e.Err }
