package connect

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestKindOf(t *testing.T) {
	sys := func(errno syscall.Errno) error {
		return &net.OpError{Op: "dial", Net: "tcp6", Err: os.NewSyscallError("connect", errno)}
	}

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"canceled", &net.OpError{Op: "dial", Err: context.Canceled}, KindCanceled},
		{"deadline", &net.OpError{Op: "dial", Err: context.DeadlineExceeded}, KindTimeout},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutError{}}, KindTimeout},
		{"refused", sys(syscall.ECONNREFUSED), KindRefused},
		{"net unreachable", sys(syscall.ENETUNREACH), KindUnreachable},
		{"host unreachable", sys(syscall.EHOSTUNREACH), KindUnreachable},
		{"no v6 address", sys(syscall.EADDRNOTAVAIL), KindUnreachable},
		{"reset", sys(syscall.ECONNRESET), KindOther},
		{"opaque", errors.New("boom"), KindOther},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, kindOf(c.err))
		})
	}
}

func TestAttemptErrorIs(t *testing.T) {
	ep := eps(v6a)[0]
	cause := &net.OpError{Op: "dial", Net: "tcp6", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	err := classify(ep, cause)

	assert.Equal(t, "IPv6 [2001:db8::1]:80: refused: dial tcp6: connect: connection refused", err.Error())
	assert.True(t, errors.Is(err, ErrAttemptRefused))
	assert.False(t, errors.Is(err, ErrAttemptTimeout))
	assert.True(t, errors.Is(err, syscall.ECONNREFUSED), "underlying cause is reachable")

	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
}

func TestExhaustedHistory(t *testing.T) {
	all := eps(v6a, v4a)
	first := classify(all[0], context.DeadlineExceeded)
	second := classify(all[1], os.NewSyscallError("connect", syscall.ECONNREFUSED))

	ex := &ExhaustedError{
		Last: second,
		Attempts: []AttemptResult{
			{Endpoint: all[0], Err: first},
			{Endpoint: all[1], Err: second},
		},
	}

	assert.Equal(t, "all 2 endpoint(s) failed, last: "+second.Error(), ex.Error())
	assert.Equal(t, second, errors.Unwrap(ex))
	assert.Equal(t, first.Error()+"\n"+second.Error(), ex.HistoryString())
	assert.ErrorIs(t, ex.History(), ErrAttemptTimeout)
}

func TestParseStrategyName(t *testing.T) {
	n, err := ParseStrategyName(" Race ")
	require.NoError(t, err)
	assert.Equal(t, StrategyRace, n)

	n, err = ParseStrategyName("sequential")
	require.NoError(t, err)
	assert.Equal(t, StrategySequential, n)

	_, err = ParseStrategyName("parallel")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	d := newFakeDialer(nil)

	st, err := New("", d, clock.New(), logr.Discard(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &Sequential{}, st)

	st, err = New(StrategyRace, d, clock.New(), logr.Discard(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &Race{}, st)
	assert.Equal(t, DefaultStagger, st.(*Race).stagger)
	assert.Equal(t, DefaultTimeout, st.(*Race).timeout)

	_, err = New("parallel", d, clock.New(), logr.Discard(), Options{})
	assert.Error(t, err)
}
