package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/taxwiz"
	"github.com/etnz/taxwiz/config"
	"github.com/google/subcommands"
)

// rateCmd holds the flags for the 'rate' subcommand.
type rateCmd struct {
	date     string
	currency string

	cfg *config.Config
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "display the exchange rate of a currency on a date" }
func (*rateCmd) Usage() string {
	return `taxwiz rate -c <currency> [-d <date>]

  Displays the value of one unit of currency in home currency, as used in
  reports: the rate of the date, or of the latest day published before it.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "Date of the rate, e.g. 2024-01-06 or -1d.")
	f.StringVar(&c.currency, "c", "", "Currency code, e.g. USD.")
}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := taxwiz.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.currency == "" {
		fmt.Fprintln(stderr, "Error: missing currency, use -c")
		return subcommands.ExitUsageError
	}

	a, err := newApp(c.cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	rate, err := a.resolver.Resolve(ctx, on, c.currency)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%s 1 %s = %s %s\n", on, taxwiz.NewRateKey(on, c.currency).Currency, rate, a.resolver.Home())
	return subcommands.ExitSuccess
}
