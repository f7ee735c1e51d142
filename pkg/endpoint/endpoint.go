// Package endpoint holds the candidate addresses a connection can be attempted to, and the
// order in which they're tried.
package endpoint

import (
	"net/netip"
	"sort"
	"strconv"
)

// Family is the IP version of an Endpoint. The zero value is not a valid family.
type Family uint8

const (
	IPv6 Family = iota + 1
	IPv4
)

func (f Family) String() string {
	switch f {
	case IPv6:
		return "IPv6"
	case IPv4:
		return "IPv4"
	default:
		return "unknown(" + strconv.Itoa(int(f)) + ")"
	}
}

// Rank orders families; lower is tried first. Only the family contributes to it.
func (f Family) Rank() int {
	switch f {
	case IPv6:
		return 0
	case IPv4:
		return 1
	default:
		return 2
	}
}

// Network is the stream network name net.Dial wants for this family.
func (f Family) Network() string {
	switch f {
	case IPv6:
		return "tcp6"
	case IPv4:
		return "tcp4"
	default:
		return "tcp"
	}
}

func FamilyOf(addr netip.Addr) Family {
	if addr.Unmap().Is4() {
		return IPv4
	}
	return IPv6
}

// Endpoint is one resolved address eligible for a connection attempt.
// It's a value type; copies are independent.
type Endpoint struct {
	family   Family
	addrPort netip.AddrPort
}

// New builds an Endpoint. IPv4-mapped IPv6 addresses (which the Go resolver can hand back from
// LookupNetIP) are unmapped, so they're dialled, and ranked, as the IPv4 addresses they are.
func New(addr netip.Addr, port uint16) Endpoint {
	addr = addr.Unmap()
	return Endpoint{
		family:   FamilyOf(addr),
		addrPort: netip.AddrPortFrom(addr, port),
	}
}

func (e Endpoint) Family() Family           { return e.family }
func (e Endpoint) AddrPort() netip.AddrPort { return e.addrPort }
func (e Endpoint) Addr() netip.Addr         { return e.addrPort.Addr() }
func (e Endpoint) Port() uint16             { return e.addrPort.Port() }
func (e Endpoint) Rank() int                { return e.family.Rank() }
func (e Endpoint) Network() string          { return e.family.Network() }

func (e Endpoint) IsValid() bool {
	return e.family != 0 && e.addrPort.IsValid()
}

// String is the dialable form, ie host:port with v6 addresses bracketed.
func (e Endpoint) String() string {
	return e.addrPort.String()
}

// Order returns a copy of eps with all IPv6 endpoints ahead of all IPv4 ones. The sort is stable,
// so within a family the resolver's order is kept. eps isn't modified.
func Order(eps []Endpoint) []Endpoint {
	ordered := make([]Endpoint, len(eps))
	copy(ordered, eps)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank() < ordered[j].Rank()
	})

	return ordered
}

func FromAddrs(addrs []netip.Addr, port uint16) []Endpoint {
	eps := make([]Endpoint, 0, len(addrs))
	for _, addr := range addrs {
		eps = append(eps, New(addr, port))
	}
	return eps
}

// Count returns how many of eps are of each family.
func Count(eps []Endpoint) (v6, v4 int) {
	for _, ep := range eps {
		switch ep.family {
		case IPv6:
			v6++
		case IPv4:
			v4++
		}
	}
	return
}
