package narration

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/logrusorgru/aurora/v3"
	"github.com/mt-inside/http-log/pkg/bios"
	"github.com/mt-inside/http-log/pkg/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ bios.Bios = WriterBios{}

func plain() output.TtyStyler {
	return output.NewTtyStyler(aurora.NewAurora(false))
}

func TestDurationAndStatus(t *testing.T) {
	s := plain()

	assert.Equal(t, "2000.0 ms", Duration(s, 2*time.Second))
	assert.Equal(t, "0.3 ms", Duration(s, 260*time.Microsecond))
	assert.Equal(t, "HTTP/1.1 503", Status(s, 503, "HTTP/1.1 503"))
	assert.Contains(t, Status(output.NewTtyStyler(aurora.NewAurora(true)), 200, "HTTP/1.1 200 OK"), "HTTP/1.1 200 OK")
}

func TestNarrator(t *testing.T) {
	var out bytes.Buffer
	s := plain()
	n := New(s, NewWriterBios(s, &out), &out, logr.Discard())

	n.Banner("Connect")
	n.Printf("try %s\n", "IPv6")
	n.PrintWarn("careful")
	assert.True(t, n.CheckPrintInfo(errors.New("meh")))
	assert.False(t, n.CheckPrintWarn(nil))

	assert.Equal(t,
		"\n== Connect ==\n\n"+
			"try IPv6\n"+
			"Warning careful\n"+
			"Info meh\n",
		out.String(),
	)
}

func TestWriterBiosUnwrap(t *testing.T) {
	var out bytes.Buffer
	b := NewWriterBios(plain(), &out)

	assert.NotPanics(t, func() { b.Unwrap(nil) })
	assert.Empty(t, out.String())

	assert.Panics(t, func() { b.Unwrap(errors.New("fatal")) })
	assert.Equal(t, "Error fatal\n", out.String())
}

func TestTrace(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	s := plain()
	n := New(s, NewWriterBios(s, &bytes.Buffer{}), &bytes.Buffer{}, log)
	n.Trace("Dialing", "addr", "192.0.2.1:80")

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg"="Dialing"`)
	assert.Contains(t, lines[0], `"addr"="192.0.2.1:80"`)
}

func TestNewLogger(t *testing.T) {
	assert.False(t, NewLogger(0).V(1).Enabled())
	assert.True(t, NewLogger(1).V(1).Enabled())
	assert.False(t, NewLogger(1).V(2).Enabled())
}
