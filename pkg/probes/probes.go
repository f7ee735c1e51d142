package probes

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/mt-inside/http-log/pkg/output"
	"github.com/pkg/errors"

	"github.com/mt-inside/print-fallback/pkg/connect"
	"github.com/mt-inside/print-fallback/pkg/endpoint"
	"github.com/mt-inside/print-fallback/pkg/exchange"
	"github.com/mt-inside/print-fallback/pkg/narration"
	"github.com/mt-inside/print-fallback/pkg/resolve"
	"github.com/mt-inside/print-fallback/pkg/state"
)

// Probe resolves the target, connects to the first endpoint that'll have it, and does one
// exchange over that connection, narrating each step as it happens. Everything learnt goes into
// responseData; the returned error is responseData.Err().
func Probe(
	ctx context.Context,
	s output.TtyStyler,
	b narration.Narrator,
	requestData *state.RequestData,
	responseData *state.ResponseData,
	printOpts state.PrintOpts,
	lookuper resolve.Lookuper,
	dialer connect.Dialer,
	clk clock.Clock,
) error {
	if printOpts.DnsFull {
		DnsFull(ctx, s, b, requestData, responseData)
	}

	/* Resolve */

	eps, err := resolve.ResolveAndOrder(ctx, lookuper, requestData.Target, requestData.Port)
	if err != nil {
		responseData.ResolveError = err
		b.PrintErr(err.Error())
		return responseData.Err()
	}
	responseData.Endpoints = eps

	b.Printf("resolved: %s\n", s.Addr(net.JoinHostPort(requestData.Target, strconv.FormatUint(uint64(requestData.Port), 10))))
	for _, ep := range eps {
		b.Printf("  - %-4s %s\n", s.Noun(ep.Family()), s.Addr(ep))
	}

	/* Connect */

	strategy, err := connect.New(
		requestData.Strategy,
		dialer,
		clk,
		b.Logger().WithName("connect"),
		connect.Options{
			Timeout: requestData.Timeout,
			Stagger: requestData.Stagger,
			Trace:   narrate(s, b),
		},
	)
	if err != nil {
		responseData.ConnectError = err
		b.PrintErr(err.Error())
		return responseData.Err()
	}

	c, err := strategy.Connect(ctx, eps)
	if err != nil {
		responseData.ConnectError = err
		var ex *connect.ExhaustedError
		if errors.As(err, &ex) {
			responseData.Attempts = ex.Attempts
			b.Printf("%s %s\n", s.Fail("all failed:"), ex.Last)
		} else {
			b.PrintErr(err.Error())
		}
		return responseData.Err()
	}
	defer c.Conn.Close()

	responseData.Attempts = c.Attempts
	responseData.Connected = &c.Endpoint
	responseData.ConnectTime = c.Elapsed

	/* Exchange */

	xCtx, cancel := context.WithTimeout(ctx, requestData.Timeout)
	defer cancel()

	b.Trace("Sending request", "host", requestData.HttpHost, "to", c.Conn.RemoteAddr())
	sl, err := exchange.Do(xCtx, c.Conn, requestData.HttpHost, requestData.Port, requestData.ReadLimit)
	responseData.StatusLine = sl
	if err != nil {
		responseData.ExchangeError = err
		b.PrintErr(err.Error())
		return responseData.Err()
	}
	b.Printf("recv: %s\n", narration.Status(s, sl.Code, sl.Raw))

	return responseData.Err()
}

// narrate streams each attempt to the user as it starts and finishes. Racing attempts report
// from their own goroutines, hence the lock.
func narrate(s output.TtyStyler, b narration.Narrator) *connect.Trace {
	var mu sync.Mutex

	return &connect.Trace{
		AttemptStart: func(ep endpoint.Endpoint) {
			mu.Lock()
			defer mu.Unlock()
			b.Printf("try %s: %s ...\n", s.Noun(ep.Family()), s.Addr(ep))
		},
		AttemptDone: func(res connect.AttemptResult) {
			mu.Lock()
			defer mu.Unlock()
			if res.Success() {
				b.Printf("connected via %s in %s\n", s.Noun(res.Endpoint.Family()), narration.Duration(s, res.Elapsed))
			} else {
				b.Printf("failed via %s: %s\n", s.Noun(res.Endpoint.Family()), s.Fail(res.Err))
			}
		},
	}
}
