package state

import (
	"fmt"
	"net/netip"
	"strconv"
	"time"

	"github.com/mt-inside/go-usvc"
	"github.com/mt-inside/http-log/pkg/output"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/mt-inside/print-fallback/pkg/connect"
	"github.com/mt-inside/print-fallback/pkg/endpoint"
	"github.com/mt-inside/print-fallback/pkg/narration"
	"github.com/mt-inside/print-fallback/pkg/parser"
	"github.com/mt-inside/print-fallback/pkg/resolve"
)

const statusPrintLen = 72

type PrintOpts struct {
	DnsFull bool
	Summary bool
	History bool
}

func PrintOptsFromViper() PrintOpts {
	return PrintOpts{
		DnsFull: viper.GetBool("dns-full"),
		Summary: viper.GetBool("summary") || viper.GetBool("history"),
		History: viper.GetBool("history"),
	}
}

// ResponseData is everything learnt during a probe, filled in as it goes.
type ResponseData struct {
	StartTime time.Time

	Endpoints    []endpoint.Endpoint
	ResolveError error

	// Only with --dns-full
	DnsAnswer      *resolve.Answer
	DnsAnswerError error
	DnssecError    error

	Attempts     []connect.AttemptResult
	Connected    *endpoint.Endpoint
	ConnectTime  time.Duration
	ConnectError error

	StatusLine    parser.StatusLine
	ExchangeError error
}

func NewResponseData() *ResponseData {
	return &ResponseData{StartTime: time.Now()}
}

// Err is the reason the probe failed, if it did; the earliest stage to fail wins.
func (pD *ResponseData) Err() error {
	switch {
	case pD.ResolveError != nil:
		return pD.ResolveError
	case pD.ConnectError != nil:
		return pD.ConnectError
	case pD.ExchangeError != nil:
		return pD.ExchangeError
	}
	return nil
}

// Print renders the end-of-run summary. Per-attempt narration was already streamed as it happened.
func (pD *ResponseData) Print(
	s output.TtyStyler,
	b narration.Narrator,
	requestData *RequestData,
	pO PrintOpts,
) {
	b.Banner("Summary")

	target := s.Addr(requestData.Target) + ":" + s.Addr(strconv.FormatUint(uint64(requestData.Port), 10))

	if pD.ResolveError != nil {
		b.Printf("%s %s: %s\n", s.Fail("unresolvable"), target, pD.ResolveError)
		return
	}

	v6, v4 := endpoint.Count(pD.Endpoints)
	b.Printf("%s resolved to %s IPv6 and %s IPv4 endpoint(s), via %s\n",
		target,
		s.Bright(v6), s.Bright(v4),
		s.Noun(pD.resolverName(requestData)),
	)

	if pO.History || pD.Connected == nil {
		for i, a := range pD.Attempts {
			outcome := s.Ok("ok")
			if !a.Success() {
				outcome = s.Fail(a.Err)
			}
			b.Printf("\t%d. %s %s in %s: %s\n", i+1, s.Noun(a.Endpoint.Family()), s.Addr(a.Endpoint), narration.Duration(s, a.Elapsed), outcome)
		}
	}

	if pD.Connected == nil {
		b.Printf("%s %s\n", s.Fail("all failed:"), pD.lastCause())
		return
	}

	b.Printf("connected via %s to %s in %s, after %s attempt(s)\n",
		s.Noun(pD.Connected.Family()),
		s.Addr(pD.Connected),
		narration.Duration(s, pD.ConnectTime),
		s.Bright(len(pD.Attempts)),
	)

	raw := []rune(pD.StatusLine.Raw)
	printLen := usvc.MinInt(len(raw), statusPrintLen)
	line := string(raw[:printLen])
	if len(raw) > printLen {
		line += fmt.Sprintf("<%d chars elided>", len(raw)-printLen)
	}

	if pD.ExchangeError != nil {
		b.Printf("%s %s", s.Fail("exchange failed:"), pD.ExchangeError)
		if len(raw) > 0 {
			b.Printf(" (got %q)", line)
		}
		b.Println()
		return
	}

	b.Printf("recv: %s\n", narration.Status(s, pD.StatusLine.Code, line))
}

func (pD *ResponseData) resolverName(requestData *RequestData) string {
	if _, err := netip.ParseAddr(requestData.Target); err == nil {
		return "literal address"
	}
	if requestData.DnsOverrides != nil && requestData.DnsOverrides.Has(requestData.Target) {
		return "--resolve override"
	}
	if requestData.DnsMode == DnsModeManual {
		return "manual DNS (" + requestData.DnsResolvConf + ")"
	}
	return requestData.DnsSystemResolver
}

func (pD *ResponseData) lastCause() error {
	var ex *connect.ExhaustedError
	if errors.As(pD.ConnectError, &ex) {
		return ex.Last
	}
	return pD.ConnectError
}
