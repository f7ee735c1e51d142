package connect

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/mt-inside/print-fallback/pkg/endpoint"
)

// Race overlaps attempts: the next endpoint is started as soon as the current one fails, or
// once it's been running for the stagger delay, whichever comes first. The first connection
// made wins and the others are cancelled. Endpoints are still started in list order.
type Race struct {
	attempter
	stagger time.Duration
}

var _ Strategy = (*Race)(nil)

func NewRace(d Dialer, clk clock.Clock, log logr.Logger, opts Options) *Race {
	return &Race{
		attempter: newAttempter(d, clk, log, opts),
		stagger:   opts.stagger(),
	}
}

func (r *Race) Connect(ctx context.Context, endpoints []endpoint.Endpoint) (*Connected, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	if err := ctx.Err(); err != nil {
		return nil, classify(endpoints[0], err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered for every endpoint so no attempt goroutine ever blocks on send
	results := make(chan AttemptResult, len(endpoints))
	var g errgroup.Group

	next := 0
	inflight := 0
	var staggerTimer *clock.Timer
	var staggerC <-chan time.Time

	launch := func() {
		ep := endpoints[next]
		next++
		inflight++
		r.log.V(1).Info("Starting attempt", "n", next, "of", len(endpoints), "addr", ep, "inflight", inflight)

		g.Go(func() error {
			results <- r.attempt(ctx, ep)
			return nil
		})

		if staggerTimer != nil {
			staggerTimer.Stop()
			staggerTimer, staggerC = nil, nil
		}
		if next < len(endpoints) {
			staggerTimer = r.clock.Timer(r.stagger)
			staggerC = staggerTimer.C
		}
	}

	winner := -1
	attempts := make([]AttemptResult, 0, len(endpoints))
	var last error

	launch()
	for inflight > 0 {
		select {
		case res := <-results:
			inflight--
			attempts = append(attempts, res)

			switch {
			case res.Success() && winner < 0:
				winner = len(attempts) - 1
				cancel()
				if staggerTimer != nil {
					staggerTimer.Stop()
					staggerTimer, staggerC = nil, nil
				}
			case res.Success():
				// Lost the race; nobody's going to use it
				_ = res.Conn.Close()
			default:
				if winner < 0 {
					last = res.Err
					if next < len(endpoints) && ctx.Err() == nil {
						launch()
					}
				}
			}

		case <-staggerC:
			staggerTimer, staggerC = nil, nil
			if winner < 0 && next < len(endpoints) && ctx.Err() == nil {
				launch()
			}
		}
	}

	if staggerTimer != nil {
		staggerTimer.Stop()
	}
	_ = g.Wait()

	if winner >= 0 {
		w := attempts[winner]
		return &Connected{
			Endpoint: w.Endpoint,
			Conn:     w.Conn,
			Elapsed:  w.Elapsed,
			Attempts: attempts,
		}, nil
	}

	return nil, &ExhaustedError{Last: last, Attempts: attempts}
}
