package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings/renderer"
	"github.com/google/subcommands"
)

type duplicatesCmd struct{}

func (*duplicatesCmd) Name() string     { return "duplicates" }
func (*duplicatesCmd) Synopsis() string { return "list the assets reported by more than one source" }
func (*duplicatesCmd) Usage() string {
	return `hcs duplicates

  Loads the configured provider files and lists the assets found more than once,
  with the value each source reports. Nothing is merged nor saved.
`
}

func (c *duplicatesCmd) SetFlags(f *flag.FlagSet) {}

func (c *duplicatesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := newApp()
	if !ok {
		return subcommands.ExitFailure
	}
	cons, _, err := a.loadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.DuplicatesMarkdown(cons.FindDuplicates()))
	return subcommands.ExitSuccess
}
