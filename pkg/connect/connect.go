// Package connect attempts connections to an ordered list of endpoints until one works.
//
// Two strategies are offered. Sequential tries one endpoint at a time, in order, each bounded by
// a timeout, so every step of an IPv6->IPv4 fallback can be watched; it's the default. Race
// staggers overlapping attempts, happy-eyeballs style, for when latency matters more than
// legibility.
package connect

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/mt-inside/print-fallback/pkg/endpoint"
)

const (
	DefaultTimeout = 2 * time.Second
	DefaultStagger = 250 * time.Millisecond
)

var ErrNoEndpoints = errors.New("no endpoints to try")

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

var _ Dialer = (*net.Dialer)(nil)

// Strategy is a policy for walking an ordered endpoint list.
// On success the returned Conn belongs to the caller. On failure the error is an
// *ExhaustedError, or ErrNoEndpoints.
type Strategy interface {
	Connect(ctx context.Context, endpoints []endpoint.Endpoint) (*Connected, error)
}

// AttemptResult is the outcome of one connection attempt: exactly one of Conn and Err is set.
type AttemptResult struct {
	Endpoint endpoint.Endpoint
	Start    time.Time
	Elapsed  time.Duration

	Conn net.Conn
	Err  error
}

func (r AttemptResult) Success() bool { return r.Err == nil }

// Connected is the terminal success state.
type Connected struct {
	Endpoint endpoint.Endpoint
	Conn     net.Conn
	Elapsed  time.Duration

	// Every attempt made, in the order they finished, the winning one included
	Attempts []AttemptResult
}

// Trace hooks are called as each attempt starts and finishes. Either may be nil.
// Sequential calls them on the goroutine that called Connect; Race calls them from its
// attempt goroutines, so they must be safe for concurrent use there.
type Trace struct {
	AttemptStart func(ep endpoint.Endpoint)
	AttemptDone  func(res AttemptResult)
}

func (t *Trace) start(ep endpoint.Endpoint) {
	if t != nil && t.AttemptStart != nil {
		t.AttemptStart(ep)
	}
}

func (t *Trace) done(res AttemptResult) {
	if t != nil && t.AttemptDone != nil {
		t.AttemptDone(res)
	}
}

type Options struct {
	// Bound on each individual attempt, covering the whole connection handshake. Zero means DefaultTimeout.
	Timeout time.Duration
	// Race only: how long to let an attempt run before starting the next one alongside it. Zero means DefaultStagger.
	Stagger time.Duration

	Trace *Trace
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) stagger() time.Duration {
	if o.Stagger <= 0 {
		return DefaultStagger
	}
	return o.Stagger
}

// StrategyName selects a Strategy on the command line.
type StrategyName string

const (
	StrategySequential StrategyName = "sequential"
	StrategyRace       StrategyName = "race"
)

func ParseStrategyName(s string) (StrategyName, error) {
	switch n := StrategyName(strings.ToLower(strings.TrimSpace(s))); n {
	case StrategySequential, StrategyRace:
		return n, nil
	default:
		return "", errors.Errorf("unknown connection strategy %q (want %s or %s)", s, StrategySequential, StrategyRace)
	}
}

func New(name StrategyName, d Dialer, clk clock.Clock, log logr.Logger, opts Options) (Strategy, error) {
	switch name {
	case StrategySequential, "":
		return NewSequential(d, clk, log, opts), nil
	case StrategyRace:
		return NewRace(d, clk, log, opts), nil
	default:
		return nil, errors.Errorf("unknown connection strategy %q", name)
	}
}

// attempter makes single attempts; the strategies decide which and when.
type attempter struct {
	dialer  Dialer
	clock   clock.Clock
	log     logr.Logger
	timeout time.Duration
	trace   *Trace
}

func newAttempter(d Dialer, clk clock.Clock, log logr.Logger, opts Options) attempter {
	return attempter{
		dialer:  d,
		clock:   clk,
		log:     log,
		timeout: opts.timeout(),
		trace:   opts.Trace,
	}
}

// attempt dials ep once. Whatever happens, no socket outlives a failed attempt.
func (a attempter) attempt(ctx context.Context, ep endpoint.Endpoint) (res AttemptResult) {
	a.trace.start(ep)
	defer func() { a.trace.done(res) }()

	ctx, cancel := a.clock.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.log.V(1).Info("Dialing", "family", ep.Family(), "addr", ep, "timeout", a.timeout)

	res.Endpoint = ep
	res.Start = a.clock.Now()
	conn, err := a.dialer.DialContext(ctx, ep.Network(), ep.String())
	res.Elapsed = a.clock.Since(res.Start)

	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		res.Err = classify(ep, err)
		a.log.V(1).Info("Dial failed", "addr", ep, "elapsed", res.Elapsed, "error", res.Err)
		return res
	}

	a.log.V(1).Info("Connected", "to", conn.RemoteAddr(), "from", conn.LocalAddr(), "elapsed", res.Elapsed)
	res.Conn = conn
	return res
}
