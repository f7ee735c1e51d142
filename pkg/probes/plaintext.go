package probes

import (
	"net"
	"syscall"

	"github.com/mt-inside/print-fallback/pkg/narration"
)

// BuildDialer makes the dialer each attempt goes through. It has no timeout of its own; each
// attempt's context bounds it.
func BuildDialer(b narration.Narrator) *net.Dialer {
	return &net.Dialer{
		// Each attempt is to one address; the dialer mustn't do its own fallback
		FallbackDelay: -1,
		Control: func(network, address string, c syscall.RawConn) error {
			b.Trace("TCP: socket created, connecting", "net", network, "addr", address)
			return nil
		},
	}
}
