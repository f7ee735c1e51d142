package resolve

import (
	"context"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// ErrNameNotFound is what a StaticLookuper returns for a name it doesn't hold.
var ErrNameNotFound = errors.New("name not found")

// StaticLookuper answers from a fixed table, in the order the addresses were given.
type StaticLookuper struct {
	set map[string][]netip.Addr
}

var _ Lookuper = (*StaticLookuper)(nil)

func NewStaticLookuper(set map[string][]netip.Addr) *StaticLookuper {
	s := &StaticLookuper{set: make(map[string][]netip.Addr, len(set))}
	for name, addrs := range set {
		key := canonicalName(name)
		s.set[key] = append(s.set[key], addrs...)
	}
	return s
}

func (s *StaticLookuper) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	addrs, ok := s.set[canonicalName(host)]
	if !ok {
		return nil, ErrNameNotFound
	}
	return filterNetwork(network, append([]netip.Addr{}, addrs...))
}

func (s *StaticLookuper) Has(host string) bool {
	_, ok := s.set[canonicalName(host)]
	return ok
}

// Overlay answers names in Overrides from there, and everything else from Base.
type Overlay struct {
	Overrides *StaticLookuper
	Base      Lookuper
}

var _ Lookuper = Overlay{}

func (o Overlay) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	if o.Overrides != nil && o.Overrides.Has(host) {
		return o.Overrides.LookupNetIP(ctx, network, host)
	}
	return o.Base.LookupNetIP(ctx, network, host)
}

// ParseOverrides reads curl-style "--resolve" entries, each "name=addr[,addr...]".
// Repeated names accumulate, in order.
func ParseOverrides(entries []string) (*StaticLookuper, error) {
	set := map[string][]netip.Addr{}

	for _, entry := range entries {
		name, list, found := strings.Cut(entry, "=")
		if !found || name == "" || list == "" {
			return nil, errors.Errorf("invalid override %q, want name=addr[,addr...]", entry)
		}

		for _, a := range strings.Split(list, ",") {
			addr, err := netip.ParseAddr(strings.Trim(strings.TrimSpace(a), "[]"))
			if err != nil {
				return nil, errors.Wrapf(err, "invalid address in override %q", entry)
			}
			key := canonicalName(name)
			set[key] = append(set[key], addr)
		}
	}

	return &StaticLookuper{set: set}, nil
}

func canonicalName(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}
