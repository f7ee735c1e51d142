package narration

import (
	"fmt"
	"io"

	"github.com/mt-inside/http-log/pkg/output"

	"github.com/mt-inside/print-fallback/internal/build"
)

// WriterBios renders like bios.TtyBios but to w, and panics instead of exiting. For tests.
type WriterBios struct {
	s output.TtyStyler
	w io.Writer
}

func NewWriterBios(s output.TtyStyler, w io.Writer) WriterBios {
	return WriterBios{s, w}
}

func (b WriterBios) Version() {
	fmt.Fprintln(b.w, b.s.Noun(build.Name+" "+build.Version))
}

func (b WriterBios) PrintOk(msg string)   { fmt.Fprintln(b.w, b.s.RenderOk(msg)) }
func (b WriterBios) PrintInfo(msg string) { fmt.Fprintln(b.w, b.s.RenderInfo(msg)) }
func (b WriterBios) PrintWarn(msg string) { fmt.Fprintln(b.w, b.s.RenderWarn(msg)) }
func (b WriterBios) PrintErr(msg string)  { fmt.Fprintln(b.w, b.s.RenderErr(msg)) }

func (b WriterBios) CheckPrintInfo(err error) bool {
	if err != nil {
		b.PrintInfo(err.Error())
		return true
	}
	return false
}
func (b WriterBios) CheckPrintWarn(err error) bool {
	if err != nil {
		b.PrintWarn(err.Error())
		return true
	}
	return false
}
func (b WriterBios) CheckPrintErr(err error) bool {
	if err != nil {
		b.PrintErr(err.Error())
		return true
	}
	return false
}

func (b WriterBios) Unwrap(err error) {
	if err != nil {
		b.PrintErr(err.Error())
		panic(err)
	}
}
