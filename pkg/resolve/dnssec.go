package resolve

import (
	"github.com/miekg/dns"
	"github.com/peterzen/goresolver"
	"github.com/pkg/errors"
)

// CheckDNSSEC strictly validates the A records of name, all the way up the chain of trust.
// It's purely informational: recursive resolvers are known to strip DNSSEC records, let alone
// validate them, so goresolver does the walk itself. The candidate list never depends on this.
func CheckDNSSEC(resolvConf, name string) error {
	resolver, err := goresolver.NewResolver(resolvConf)
	if err != nil {
		return errors.Wrap(err, "setting up DNSSEC resolver")
	}

	_, err = resolver.StrictNSQuery(dns.Fqdn(name), dns.TypeA)
	return err
}
