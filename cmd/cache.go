package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/taxwiz/config"
	"github.com/google/subcommands"
)

// cacheCmd holds the flags for the 'cache' subcommand.
type cacheCmd struct {
	prefix string

	cfg *config.Config
}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "list the cached exchange rates" }
func (*cacheCmd) Usage() string {
	return `taxwiz cache [-prefix <key prefix>]

  Lists the exchange rates resolved so far, keyed by "YYYY-MM-DD|CCY".
`
}

func (c *cacheCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prefix, "prefix", "", "Only list keys starting with prefix, e.g. 2024-01 or 2024-01-05|USD.")
}

func (c *cacheCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	cache := a.resolver.Cache()
	var rows [][]string
	for _, key := range cache.Keys() {
		if !strings.HasPrefix(key.String(), c.prefix) {
			continue
		}
		rate, _ := cache.Get(key)
		rows = append(rows, []string{key.Date.String(), key.Currency, rate.String()})
	}
	if len(rows) == 0 {
		fmt.Fprintf(stderr, "No cached rate in %s cache %q.\n", a.cfg.Cache, a.cfg.CachePath)
		return subcommands.ExitSuccess
	}
	title := fmt.Sprintf("Exchange rates in %s (%d)", a.resolver.Home(), len(rows))
	printMarkdown(stdout, markdownTable(title, []string{"Date", "Currency", "Rate"}, rows))
	return subcommands.ExitSuccess
}
