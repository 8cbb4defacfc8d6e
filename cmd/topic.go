package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/taxwiz/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "display documentation topics" }
func (*topicCmd) Usage() string {
	return `taxwiz topic [<topic>...]

  Displays the documentation topics, or the list of topics when none is given.
  "*" displays them all.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names := f.Args()
	if len(names) == 0 {
		names = []string{"readme"}
	}
	content, err := docs.Topics(names...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(stdout, content)
	return subcommands.ExitSuccess
}
