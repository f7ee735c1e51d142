// Package narration binds http-log's styler and bios to a writer and a logger, for step-by-step probe output.
package narration

import (
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/mt-inside/http-log/pkg/bios"
	"github.com/mt-inside/http-log/pkg/output"
)

// Narrator is a bios.Bios that also writes free-form narration to out, and debug detail to a logger.
type Narrator struct {
	bios.Bios

	s   output.TtyStyler
	out io.Writer
	log logr.Logger
}

func New(s output.TtyStyler, b bios.Bios, out io.Writer, log logr.Logger) Narrator {
	return Narrator{Bios: b, s: s, out: out, log: log}
}

func (n Narrator) Logger() logr.Logger { return n.log }

func (n Narrator) Printf(format string, a ...any) {
	fmt.Fprintf(n.out, format, a...)
}

func (n Narrator) Println(a ...any) {
	fmt.Fprintln(n.out, a...)
}

func (n Narrator) Banner(title string) {
	fmt.Fprint(n.out, n.s.Banner(title))
}

// Trace only shows with -v.
func (n Narrator) Trace(msg string, keysAndValues ...any) {
	n.log.V(1).Info(msg, keysAndValues...)
}

// Duration is to the tenth of a millisecond; connection times are small.
func Duration(s output.TtyStyler, d time.Duration) string {
	return s.Bright(fmt.Sprintf("%.1f ms", float64(d)/float64(time.Millisecond)))
}

// Status colours an HTTP status line by class.
func Status(s output.TtyStyler, code int, text string) string {
	switch {
	case code < 400:
		return s.Ok(text)
	case code < 500:
		return s.Warn(text)
	default:
		return s.Fail(text)
	}
}
