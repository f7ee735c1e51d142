package resolve

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/go-logr/logr"
	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

const DefaultResolvConf = "/etc/resolv.conf"

// ErrAllServersFailed means no configured DNS server gave any answer, not even NXDOMAIN.
var ErrAllServersFailed = errors.New("all DNS servers failed")

// Answer is what a ManualLookuper learnt about a name, for printing.
type Answer struct {
	Server        string
	FQDN          string
	Authoritative bool
	// CNAME chain from the question to the name owning the addresses, excluding the question itself
	CNAMEs []string
	// In the order the records came back: A answers, then AAAA
	Addrs []netip.Addr
	TTL   time.Duration
}

// ManualLookuper sends A and AAAA queries itself, straight to the servers in a resolv.conf,
// rather than going through the system's resolver.
// It only looks in DNS; /etc/hosts, nsswitch and friends aren't consulted.
type ManualLookuper struct {
	config *dns.ClientConfig
	client *dns.Client
	log    logr.Logger
}

var _ Lookuper = (*ManualLookuper)(nil)

func NewManualLookuperFromFile(path string, timeout time.Duration, log logr.Logger) (*ManualLookuper, error) {
	config, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading resolver config %s", path)
	}
	return NewManualLookuper(config, timeout, log), nil
}

func NewManualLookuper(config *dns.ClientConfig, timeout time.Duration, log logr.Logger) *ManualLookuper {
	return &ManualLookuper{
		config: config,
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
			Dialer:  &net.Dialer{Timeout: timeout},
		},
		log: log,
	}
}

func (m *ManualLookuper) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	ans, err := m.Query(ctx, host)
	if err != nil {
		return nil, err
	}
	return filterNetwork(network, ans.Addrs)
}

// Query tries each server in turn and, for each, each name on the search path, stopping at the
// first name that has any address. A server that errors is skipped. A name with no addresses
// anywhere gives an Answer with no Addrs, not an error.
func (m *ManualLookuper) Query(ctx context.Context, name string) (*Answer, error) {
	names := m.config.NameList(name)

	var lastErr error = ErrAllServersFailed
	anyServerOk := false

serversLoop:
	for _, serverHost := range m.config.Servers {
		server := net.JoinHostPort(serverHost, m.config.Port)
		m.log.V(1).Info("Trying DNS server", "addr", server)

		for _, fqdn := range names {
			m.log.V(1).Info("Trying search path item", "fqdn", fqdn)

			var answers []dns.RR
			authoritative := true

			// By default this asks the server to recurse for us; doing that ourselves from the roots is a lot of work for no gain here.
			for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
				msg := new(dns.Msg)
				msg.SetQuestion(fqdn, qtype)

				in, _, err := m.client.ExchangeContext(ctx, msg, server)
				if err != nil {
					lastErr = errors.Wrapf(err, "querying %s", server)
					continue serversLoop
				}

				answers = append(answers, in.Answer...)
				authoritative = authoritative && in.Authoritative
			}
			anyServerOk = true

			ans := indexAnswers(fqdn, answers)
			if len(ans.Addrs) > 0 {
				ans.Server = server
				ans.Authoritative = authoritative
				return ans, nil
			}
		}

		// Every name on the path came back empty; another server isn't going to disagree.
		break
	}

	if !anyServerOk {
		return nil, lastErr
	}

	return &Answer{FQDN: names[len(names)-1]}, nil
}

// CNAMEs can only point at one thing, so there's only ever one chain, with the address records
// all at its end.
func indexAnswers(question string, answers []dns.RR) *Answer {
	ans := &Answer{FQDN: question}

	cnames := map[string]string{}
	for _, rr := range answers {
		switch t := rr.(type) {
		case *dns.CNAME:
			cnames[t.Hdr.Name] = t.Target
		case *dns.A:
			if a, ok := netip.AddrFromSlice(t.A); ok {
				ans.Addrs = append(ans.Addrs, a.Unmap())
			}
		case *dns.AAAA:
			if a, ok := netip.AddrFromSlice(t.AAAA); ok {
				ans.Addrs = append(ans.Addrs, a)
			}
		}
	}

	seen := map[string]bool{question: true}
	for cname := question; ; {
		target, found := cnames[cname]
		if !found || seen[target] {
			break
		}
		ans.CNAMEs = append(ans.CNAMEs, target)
		seen[target] = true
		cname = target
	}

	if len(answers) > 0 {
		ans.TTL = time.Duration(answers[0].Header().Ttl) * time.Second
	}

	return ans
}
