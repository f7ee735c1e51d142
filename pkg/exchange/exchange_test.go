package exchange

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

// serve accepts one connection on a loopback listener, reads the request, and hands the
// server side to respond. It returns the client side plus the request the server saw.
func serve(t *testing.T, respond func(net.Conn)) (net.Conn, <-chan *http.Request) {
	t.Helper()

	ln, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	reqs := make(chan *http.Request, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()

		req, err := http.ReadRequest(bufio.NewReader(c))
		if err == nil {
			reqs <- req
		}
		respond(c)
	}()
	t.Cleanup(func() { <-done })

	conn, err := net.Dial(ln.Addr().Network(), ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, reqs
}

func reply(s string) func(net.Conn) {
	return func(c net.Conn) { _, _ = c.Write([]byte(s)) }
}

func TestDo(t *testing.T) {
	conn, reqs := serve(t, reply("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"))

	sl, err := Do(context.Background(), conn, "dual-ok.local", 80, 0)
	require.NoError(t, err)

	assert.Equal(t, "HTTP/1.1", sl.Proto)
	assert.Equal(t, 200, sl.Code)
	assert.Equal(t, "OK", sl.Reason)
	assert.Equal(t, "HTTP/1.1 200 OK", sl.Raw)

	req := <-reqs
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/", req.URL.Path)
	assert.Equal(t, "dual-ok.local", req.Host)
	assert.True(t, req.Close, "asks for Connection: close")
}

func TestDoNonDefaultPort(t *testing.T) {
	conn, reqs := serve(t, reply("HTTP/1.0 404 Not Found\n"))

	sl, err := Do(context.Background(), conn, "2001:db8::1", 8080, 0)
	require.NoError(t, err)
	assert.Equal(t, 404, sl.Code)

	assert.Equal(t, "[2001:db8::1]:8080", (<-reqs).Host)
}

func TestDoReadLimit(t *testing.T) {
	long := "HTTP/1.1 200 " + strings.Repeat("A", 500)
	conn, _ := serve(t, reply(long))

	sl, err := Do(context.Background(), conn, "dual-ok.local", 80, 50)
	require.NoError(t, err)
	assert.Equal(t, long[:50], sl.Raw)
}

func TestDoLatin1(t *testing.T) {
	conn, _ := serve(t, reply("HTTP/1.1 200 caf\xe9\r\n"))

	sl, err := Do(context.Background(), conn, "dual-ok.local", 80, 0)
	require.NoError(t, err)
	assert.Equal(t, "café", sl.Reason)
}

func TestDoNotHTTP(t *testing.T) {
	conn, _ := serve(t, reply("SSH-2.0-OpenSSH_9.3\r\n"))

	sl, err := Do(context.Background(), conn, "dual-ok.local", 80, 0)
	require.Error(t, err)
	assert.Equal(t, "SSH-2.0-OpenSSH_9.3", sl.Raw)
}

func TestDoEmptyResponse(t *testing.T) {
	conn, _ := serve(t, func(net.Conn) {})

	_, err := Do(context.Background(), conn, "dual-ok.local", 80, 0)
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestDoDeadline(t *testing.T) {
	hold := make(chan struct{})
	conn, _ := serve(t, func(net.Conn) { <-hold })
	defer close(hold)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Do(ctx, conn, "dual-ok.local", 80, 0)
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestDoKeepsPartialLineAtDeadline(t *testing.T) {
	hold := make(chan struct{})
	conn, _ := serve(t, func(c net.Conn) {
		_, _ = c.Write([]byte("HTTP/1.1 200 OK"))
		<-hold
	})
	defer close(hold)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sl, err := Do(ctx, conn, "dual-ok.local", 80, 0)
	require.NoError(t, err)
	assert.Equal(t, 200, sl.Code)
	assert.Equal(t, "HTTP/1.1 200 OK", sl.Raw)
}

func TestDoCancel(t *testing.T) {
	hold := make(chan struct{})
	conn, _ := serve(t, func(net.Conn) { <-hold })
	defer close(hold)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := Do(ctx, conn, "dual-ok.local", 80, 0)
	require.Error(t, err)
}
