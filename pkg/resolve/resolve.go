// Package resolve turns a host and port into the ordered list of endpoints to try.
package resolve

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/pkg/errors"

	"github.com/mt-inside/print-fallback/pkg/endpoint"
)

var (
	ErrEmptyHost   = errors.New("empty host")
	ErrNoAddresses = errors.New("no addresses found")
)

// Lookuper finds the addresses of a name. network is "ip", "ip4", or "ip6".
// *net.Resolver satisfies it.
type Lookuper interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

var _ Lookuper = (*net.Resolver)(nil)

// ResolutionError means there's nothing to connect to. It's always fatal.
type ResolutionError struct {
	Host string
	Port uint16
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", net.JoinHostPort(e.Host, fmt.Sprint(e.Port)), e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ResolveAndOrder looks up every address, of both families, for host and returns them as
// endpoints ordered IPv6-first, keeping the resolver's order within each family.
// A literal IP is returned as-is without a lookup.
// The result is never empty: no addresses is a *ResolutionError.
func ResolveAndOrder(ctx context.Context, l Lookuper, host string, port uint16) ([]endpoint.Endpoint, error) {
	if host == "" {
		return nil, &ResolutionError{Host: host, Port: port, Err: ErrEmptyHost}
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return []endpoint.Endpoint{endpoint.New(addr, port)}, nil
	}

	addrs, err := l.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, &ResolutionError{Host: host, Port: port, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &ResolutionError{Host: host, Port: port, Err: ErrNoAddresses}
	}

	return endpoint.Order(endpoint.FromAddrs(addrs, port)), nil
}

// filterNetwork drops addresses not matching network, as the Lookuper contract asks.
func filterNetwork(network string, addrs []netip.Addr) ([]netip.Addr, error) {
	switch network {
	case "ip":
		return addrs, nil
	case "ip4", "ip6":
	default:
		return nil, errors.Errorf("unsupported network %q", network)
	}

	var out []netip.Addr
	for _, a := range addrs {
		is4 := a.Unmap().Is4()
		if (network == "ip4") == is4 {
			out = append(out, a)
		}
	}
	return out, nil
}
