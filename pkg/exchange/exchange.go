// Package exchange does the one request/response round trip that proves a connection works.
package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/mt-inside/print-fallback/internal/build"
	"github.com/mt-inside/print-fallback/pkg/parser"
	"github.com/mt-inside/print-fallback/pkg/utils"
)

const DefaultReadLimit = 200

var ErrEmptyResponse = errors.New("peer closed the connection without responding")

// Request is the bytes sent: a bare GET of / that asks the server to hang up afterwards.
func Request(hostHeader string) []byte {
	return []byte(fmt.Sprintf(
		"GET / HTTP/1.1\r\nHost: %s\r\nUser-Agent: %s\r\nConnection: close\r\n\r\n",
		hostHeader, build.UserAgent(),
	))
}

// Do sends Request over conn and reads back at most limit bytes, stopping at the first line
// ending. The status line is returned even if it doesn't parse, so there's something to show.
// ctx bounds the whole exchange. conn stays open; closing it is the caller's job.
func Do(ctx context.Context, conn net.Conn, host string, port uint16, limit int) (parser.StatusLine, error) {
	if limit <= 0 {
		limit = DefaultReadLimit
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return parser.StatusLine{}, errors.Wrap(err, "setting connection deadline")
		}
	}
	// Unblocks the read/write if ctx is cancelled rather than timing out
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := conn.Write(Request(utils.HostHeader(host, port))); err != nil {
		return parser.StatusLine{}, errors.Wrap(err, "sending request")
	}

	prefix, err := readPrefix(conn, limit)
	if err != nil {
		return parser.StatusLine{}, err
	}

	// Bytes above 0x7f can't be invalid Latin-1, so this can't fail
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(prefix)

	return parser.ParseStatusLine(string(decoded))
}

// readPrefix reads until it has a line ending, limit bytes, or the peer closes; whichever comes first.
func readPrefix(r io.Reader, limit int) ([]byte, error) {
	buf := make([]byte, limit)
	n := 0

	for n < limit {
		m, err := r.Read(buf[n:])
		n += m
		if bytes.IndexByte(buf[:n], '\n') >= 0 {
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if n > 0 && isTimeout(err) {
				// Keep what did arrive before the deadline
				break
			}
			return nil, errors.Wrap(err, "reading response")
		}
	}

	if n == 0 {
		return nil, ErrEmptyResponse
	}
	return buf[:n], nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
}
