package state

import (
	"time"

	"github.com/mt-inside/http-log/pkg/output"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/mt-inside/print-fallback/pkg/connect"
	"github.com/mt-inside/print-fallback/pkg/narration"
	"github.com/mt-inside/print-fallback/pkg/resolve"
)

type DnsMode string

const (
	DnsModeSystem DnsMode = "system"
	DnsModeManual DnsMode = "manual"
)

// RequestData is everything the user asked for; fixed before the probe starts.
type RequestData struct {
	Target string // name or literal IP
	Port   uint16

	// HTTP Host; the target if not given
	HttpHost string

	Timeout   time.Duration
	Strategy  connect.StrategyName
	Stagger   time.Duration
	ReadLimit int

	DnsMode           DnsMode
	DnsResolvConf     string
	DnsSystemResolver string
	DnsOverrides      *resolve.StaticLookuper
}

func RequestDataFromViper(s output.TtyStyler, b narration.Narrator, dnsResolverName string, target string, port uint16) *RequestData {
	requestData := &RequestData{
		Target:            target,
		Port:              port,
		HttpHost:          viper.GetString("host"),
		Timeout:           viper.GetDuration("timeout"),
		Stagger:           viper.GetDuration("stagger"),
		ReadLimit:         viper.GetInt("read-limit"),
		DnsMode:           DnsMode(viper.GetString("dns-mode")),
		DnsResolvConf:     viper.GetString("resolv-conf"),
		DnsSystemResolver: dnsResolverName,
	}
	if requestData.HttpHost == "" {
		requestData.HttpHost = target
	}

	strategy, err := connect.ParseStrategyName(viper.GetString("strategy"))
	b.Unwrap(err)
	requestData.Strategy = strategy

	switch requestData.DnsMode {
	case DnsModeSystem, DnsModeManual:
	default:
		b.Unwrap(errors.Errorf("unknown --dns-mode %q (want %s or %s)", requestData.DnsMode, DnsModeSystem, DnsModeManual))
	}

	if requestData.Timeout <= 0 {
		b.Unwrap(errors.New("--timeout must be positive"))
	}

	overrides, err := resolve.ParseOverrides(viper.GetStringSlice("resolve"))
	b.Unwrap(errors.Wrap(err, "parsing --resolve"))
	requestData.DnsOverrides = overrides

	return requestData
}
