package probes

import (
	"context"
	"net/netip"

	"github.com/mt-inside/http-log/pkg/output"
	"github.com/mt-inside/http-log/pkg/utils"

	"github.com/mt-inside/print-fallback/pkg/narration"
	"github.com/mt-inside/print-fallback/pkg/resolve"
	"github.com/mt-inside/print-fallback/pkg/state"
)

/* Testing:
* - www.wikipedia.org has CNAME
* - cloudflare.net is DNSSEC
* - localhost is in Files, so the system resolver finds it and this doesn't
* - google.com has ipv6 & v4
 */

// DnsFull prints what DNS itself says about the target, asking the resolv.conf servers directly,
// plus whether the name validates under DNSSEC. This is information only: the addresses actually
// tried come from the configured lookuper, which may well disagree (eg /etc/hosts entries).
func DnsFull(
	ctx context.Context,
	s output.TtyStyler,
	b narration.Narrator,
	requestData *state.RequestData,
	responseData *state.ResponseData,
) {
	b.Banner("DNS (information only)")

	if _, err := netip.ParseAddr(requestData.Target); err == nil {
		b.PrintInfo("target is a literal address; nothing to look up")
		return
	}
	if requestData.DnsOverrides != nil && requestData.DnsOverrides.Has(requestData.Target) {
		b.PrintInfo("target is overridden by --resolve; DNS is shown anyway")
	}

	manual, err := resolve.NewManualLookuperFromFile(requestData.DnsResolvConf, requestData.Timeout, b.Logger().WithName("dns"))
	if b.CheckPrintWarn(err) {
		responseData.DnsAnswerError = err
		return
	}

	ans, err := manual.Query(ctx, requestData.Target)
	responseData.DnsAnswer = ans
	responseData.DnsAnswerError = err
	if b.CheckPrintWarn(err) {
		return
	}

	if len(ans.Addrs) == 0 {
		// Not fatal cause we're only printing for information
		b.PrintWarn(s.Addr(ans.FQDN) + ": NXDOMAIN")
		return
	}

	/* Validate DNSSEC. Goresolver walks the chain of trust itself rather than asking the system's
	 * resolver, as recursive resolvers are known to strip DNSSEC records, let alone validate them.
	 */
	responseData.DnssecError = resolve.CheckDNSSEC(requestData.DnsResolvConf, ans.FQDN)

	printCnameChain(s, b, ans, responseData.DnssecError)

	// Authoritative means that the server you're talking to *hosts* that zone - unlikely, as you're probably talking to a local stub resolver, or a caching resolver on a home router / ISP.
	b.Printf("\tDNS Server: %s, authoritative? %s\n", s.Addr(ans.Server), s.YesInfo(ans.Authoritative))
}

func printCnameChain(s output.TtyStyler, b narration.Narrator, ans *resolve.Answer, dnssecErr error) {
	b.Printf("%s ->", s.Addr(ans.FQDN))
	for _, cname := range ans.CNAMEs {
		b.Printf(" %s ->", s.Addr(cname))
	}
	b.Printf(" %s", s.List(utils.MapToString(ans.Addrs), output.AddrStyle))
	b.Printf(" (dnssec? %s, ttl remaining %s)\n", s.YesError(dnssecErr), ans.TTL)
}
