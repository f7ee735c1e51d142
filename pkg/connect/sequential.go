package connect

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/go-logr/logr"

	"github.com/mt-inside/print-fallback/pkg/endpoint"
)

// Sequential walks the endpoints once, front to back, with never more than one attempt in flight.
type Sequential struct {
	attempter
}

var _ Strategy = (*Sequential)(nil)

func NewSequential(d Dialer, clk clock.Clock, log logr.Logger, opts Options) *Sequential {
	return &Sequential{attempter: newAttempter(d, clk, log, opts)}
}

func (s *Sequential) Connect(ctx context.Context, endpoints []endpoint.Endpoint) (*Connected, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	attempts := make([]AttemptResult, 0, len(endpoints))
	var last error

	for i, ep := range endpoints {
		if err := ctx.Err(); err != nil {
			// Caller gave up; don't start anything new
			if len(attempts) == 0 {
				return nil, classify(ep, err)
			}
			last = classify(ep, err)
			break
		}

		s.log.V(1).Info("Trying endpoint", "n", i+1, "of", len(endpoints), "addr", ep)

		res := s.attempt(ctx, ep)
		attempts = append(attempts, res)

		if res.Success() {
			return &Connected{
				Endpoint: ep,
				Conn:     res.Conn,
				Elapsed:  res.Elapsed,
				Attempts: attempts,
			}, nil
		}

		last = res.Err
	}

	return nil, &ExhaustedError{Last: last, Attempts: attempts}
}
