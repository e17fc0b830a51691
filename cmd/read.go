package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/source"
	"github.com/google/subcommands"
)

type readCmd struct{}

func (*readCmd) Name() string     { return "read" }
func (*readCmd) Synopsis() string { return "read a provider file into canonical holdings" }
func (*readCmd) Usage() string {
	return `hcs read <provider> <file>

  Reads one provider file and prints its canonical holdings as CSV.
  Providers are B3, Kinvo, MyProfit and XP.
`
}

func (c *readCmd) SetFlags(f *flag.FlagSet) {}

func (c *readCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: read expects a provider and a file")
		return subcommands.ExitUsageError
	}
	p, err := source.ParseProvider(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, ok := newApp()
	if !ok {
		return subcommands.ExitFailure
	}
	rows, err := source.Read(p, f.Arg(1), source.WithLogger(a.log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s file: %v\n", p, err)
		return subcommands.ExitFailure
	}
	if err := holdings.EncodeHoldings(os.Stdout, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
