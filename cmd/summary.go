package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	version string
	json    bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a portfolio summary" }
func (*summaryCmd) Usage() string {
	return `hcs summary [-v <date>|latest] [-json]

  Displays a summary of the portfolio: totals, profit and loss, sources and top
  holdings. Without -v, the provider files are consolidated without saving.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.version, "v", "", "Summarize a saved version (a date or latest) instead of the provider files.")
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := newApp()
	if !ok {
		return subcommands.ExitFailure
	}

	var summary holdings.Summary
	if c.version != "" {
		s, err := a.store()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		positions, err := s.Load(c.version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading version: %v\n", err)
			return subcommands.ExitFailure
		}
		summary = holdings.NewSummary(positions, a.cfg.TopHoldings)
	} else {
		cons, _, err := a.loadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if summary, err = cons.Summary(nil, a.cfg.TopHoldings); err != nil {
			fmt.Fprintf(os.Stderr, "Error consolidating: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if c.json {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(data))
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.SummaryMarkdown(summary))
	return subcommands.ExitSuccess
}
