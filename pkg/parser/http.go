package parser

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedStatusLine = errors.New("malformed HTTP status line")

// StatusLine is the first line of an HTTP/1.x response.
type StatusLine struct {
	Proto  string
	Code   int
	Reason string

	// As received, minus the line ending
	Raw string
}

func (s StatusLine) String() string {
	return s.Raw
}

// FirstLine returns everything before the first line ending in prefix. Without one, the whole
// prefix is the line; a response can be cut short by the read limit.
func FirstLine(prefix string) string {
	if i := strings.IndexAny(prefix, "\r\n"); i >= 0 {
		return prefix[:i]
	}
	return prefix
}

/* Format (RFC 9112 §4)
 * status-line = HTTP-version SP status-code SP [ reason-phrase ]
 * The reason can be empty, and some servers leave off the trailing SP, so that's tolerated.
 */
func ParseStatusLine(line string) (StatusLine, error) {
	line = FirstLine(line)
	sl := StatusLine{Raw: line}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return sl, errors.Wrapf(ErrMalformedStatusLine, "%q: expected version and status code", line)
	}

	if !strings.HasPrefix(parts[0], "HTTP/") {
		return sl, errors.Wrapf(ErrMalformedStatusLine, "%q: not an HTTP version", parts[0])
	}
	sl.Proto = parts[0]

	if len(parts[1]) != 3 {
		return sl, errors.Wrapf(ErrMalformedStatusLine, "%q: status code isn't three digits", parts[1])
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 100 {
		return sl, errors.Wrapf(ErrMalformedStatusLine, "%q: status code isn't three digits", parts[1])
	}
	sl.Code = code

	if len(parts) == 3 {
		sl.Reason = parts[2]
	}

	return sl, nil
}
