package probes

import (
	"net"

	"github.com/mt-inside/http-log/pkg/output"

	"github.com/mt-inside/print-fallback/pkg/narration"
	"github.com/mt-inside/print-fallback/pkg/resolve"
	"github.com/mt-inside/print-fallback/pkg/state"
)

// BuildLookuper picks where names come from.
// - system: net.Resolver, ie the Go resolver or libc depending on the build (see resolve.SystemResolverName), so /etc/hosts, nsswitch etc are honoured
// - manual: our own queries straight to the servers in resolv.conf; DNS only
// Either way, any --resolve overrides sit on top.
func BuildLookuper(
	s output.TtyStyler,
	b narration.Narrator,
	requestData *state.RequestData,
) (resolve.Lookuper, error) {
	var base resolve.Lookuper = net.DefaultResolver

	if requestData.DnsMode == state.DnsModeManual {
		manual, err := resolve.NewManualLookuperFromFile(requestData.DnsResolvConf, requestData.Timeout, b.Logger().WithName("dns"))
		if err != nil {
			return nil, err
		}
		base = manual
		b.Trace("Using manual DNS", "config", requestData.DnsResolvConf)
	} else {
		b.Trace("Using system resolver", "impl", requestData.DnsSystemResolver)
	}

	return resolve.Overlay{Overrides: requestData.DnsOverrides, Base: base}, nil
}
