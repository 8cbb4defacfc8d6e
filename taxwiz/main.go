// Command taxwiz computes the taxable income of brokerage exports in home currency.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/taxwiz/cmd"
	"github.com/google/subcommands"
)

func main() {
	// answers shell completion requests (COMP_LINE) and exits.
	cmd.Completion().Complete("taxwiz")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
