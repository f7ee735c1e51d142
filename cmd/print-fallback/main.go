package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/davecgh/go-spew/spew"
	"github.com/logrusorgru/aurora/v3"
	"github.com/mt-inside/http-log/pkg/bios"
	"github.com/mt-inside/http-log/pkg/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mt-inside/print-fallback/internal/build"
	"github.com/mt-inside/print-fallback/pkg/connect"
	"github.com/mt-inside/print-fallback/pkg/exchange"
	"github.com/mt-inside/print-fallback/pkg/narration"
	"github.com/mt-inside/print-fallback/pkg/probes"
	"github.com/mt-inside/print-fallback/pkg/resolve"
	"github.com/mt-inside/print-fallback/pkg/state"
	"github.com/mt-inside/print-fallback/pkg/utils"
)

const (
	defaultTarget = "dual-ok.local"
	defaultPort   = "80"
)

func init() {
	spew.Config.DisableMethods = true
	spew.Config.DisablePointerMethods = true
}

func main() {

	cmd := &cobra.Command{
		Use:     "print-fallback [host] [port]",
		Short:   "Connect to a host IPv6-first, falling back to IPv4 one address at a time, and show every step",
		Args:    cobra.RangeArgs(0, 2),
		Version: build.Version,
		Run:     appMain,
	}

	cmd.Flags().DurationP("timeout", "t", connect.DefaultTimeout, "Timeout for each connection attempt, and for the exchange")
	cmd.Flags().StringP("strategy", "s", string(connect.StrategySequential), "How to work through the addresses: sequential (one at a time) or race (staggered, happy-eyeballs style)")
	cmd.Flags().Duration("stagger", connect.DefaultStagger, "With --strategy=race, how long an attempt gets before the next one starts alongside it")
	cmd.Flags().StringP("host", "a", "", "HTTP Host header (default: the target)")
	cmd.Flags().String("dns-mode", string(state.DnsModeSystem), "Where addresses come from: system (the platform resolver) or manual (query the resolv.conf servers directly)")
	cmd.Flags().String("resolv-conf", resolve.DefaultResolvConf, "resolv.conf to use for manual DNS and --dns-full")
	cmd.Flags().Bool("dns-full", false, "Print full DNS information: CNAME chain, server, TTL, DNSSEC validity")
	cmd.Flags().StringSliceP("resolve", "r", nil, "Provide addresses for a name, like curl's --resolve: name=addr[,addr...]. Repeatable")
	cmd.Flags().Int("read-limit", exchange.DefaultReadLimit, "Most bytes of the response to read looking for the status line")
	cmd.Flags().Bool("summary", false, "Print a summary once done")
	cmd.Flags().Bool("history", false, "In the summary, list every attempt and why it failed, not just the last")
	cmd.Flags().Bool("no-color", false, "Don't colour output")
	cmd.Flags().CountP("verbose", "v", "Log more detail to stderr; repeat for more")
	cmd.Flags().Bool("dump", false, "Dump everything that was learnt, raw")
	err := viper.BindPFlags(cmd.Flags())
	if err != nil {
		panic(errors.New("Can't set up flags"))
	}

	viper.SetEnvPrefix("PRINT_FALLBACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err = cmd.Execute()
	if err != nil {
		fmt.Println("Error during execution:", err)
		os.Exit(1)
	}
}

func appMain(cmd *cobra.Command, args []string) {

	s := output.NewTtyStyler(aurora.NewAurora(!viper.GetBool("no-color")))
	log := narration.NewLogger(viper.GetInt("verbose"))
	b := narration.New(s, bios.NewTtyBios(s), os.Stdout, log)

	target := defaultTarget
	if len(args) > 0 {
		target = args[0]
	}
	portArg := defaultPort
	if len(args) > 1 {
		portArg = args[1]
	}
	port, err := utils.ParsePort(portArg)
	b.Unwrap(errors.Wrapf(err, "invalid port %q", portArg))

	requestData := state.RequestDataFromViper(s, b, resolve.SystemResolverName, target, port)
	responseData := state.NewResponseData()
	printOpts := state.PrintOptsFromViper()

	lookuper, err := probes.BuildLookuper(s, b, requestData)
	b.Unwrap(err)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)

	err = probes.Probe(
		ctx,
		s, b,
		requestData, responseData, printOpts,
		lookuper, probes.BuildDialer(b), clock.New(),
	)
	cancel()

	if printOpts.Summary {
		responseData.Print(s, b, requestData, printOpts)
	}

	if viper.GetBool("dump") {
		b.Banner("Dump")
		spew.Fdump(os.Stdout, requestData, responseData)
	}

	if err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}
