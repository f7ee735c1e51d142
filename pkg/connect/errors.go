package connect

import (
	"context"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/mt-inside/print-fallback/pkg/endpoint"
)

// Kind is the class of a failed attempt.
type Kind int

const (
	KindOther Kind = iota
	KindTimeout
	KindRefused
	KindUnreachable
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindRefused:
		return "refused"
	case KindUnreachable:
		return "unreachable"
	case KindCanceled:
		return "canceled"
	default:
		return "failed"
	}
}

// Sentinels for errors.Is; an *AttemptError matches the one for its Kind.
var (
	ErrAttemptTimeout     = errors.New("connection attempt timed out")
	ErrAttemptRefused     = errors.New("connection refused")
	ErrAttemptUnreachable = errors.New("destination unreachable")
	ErrAttemptCanceled    = errors.New("connection attempt canceled")
)

// AttemptError is why a single endpoint couldn't be connected to.
type AttemptError struct {
	Endpoint endpoint.Endpoint
	Kind     Kind
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Endpoint.Family(), e.Endpoint, e.Kind, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

func (e *AttemptError) Is(target error) bool {
	switch target {
	case ErrAttemptTimeout:
		return e.Kind == KindTimeout
	case ErrAttemptRefused:
		return e.Kind == KindRefused
	case ErrAttemptUnreachable:
		return e.Kind == KindUnreachable
	case ErrAttemptCanceled:
		return e.Kind == KindCanceled
	}
	return false
}

func classify(ep endpoint.Endpoint, err error) *AttemptError {
	return &AttemptError{Endpoint: ep, Kind: kindOf(err), Err: err}
}

func kindOf(err error) Kind {
	var ne net.Error

	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &ne) && ne.Timeout():
		return KindTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return KindRefused
	case errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETDOWN),
		errors.Is(err, syscall.EHOSTDOWN),
		errors.Is(err, syscall.EADDRNOTAVAIL),
		errors.Is(err, syscall.EAFNOSUPPORT):
		return KindUnreachable
	default:
		return KindOther
	}
}

// ExhaustedError is the terminal failure state: every endpoint was tried and none connected.
// Only the last cause is surfaced, through Error and Unwrap, as that answers "why didn't the
// last address work". The rest are kept in Attempts for anyone wanting the full story.
type ExhaustedError struct {
	Last     error
	Attempts []AttemptResult
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d endpoint(s) failed, last: %v", len(e.Attempts), e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// History combines every attempt's cause, in attempt order.
func (e *ExhaustedError) History() error {
	var err error
	for _, a := range e.Attempts {
		err = multierr.Append(err, a.Err)
	}
	return err
}

// HistoryString renders History one cause per line.
func (e *ExhaustedError) HistoryString() string {
	var lines []string
	for _, err := range multierr.Errors(e.History()) {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}
