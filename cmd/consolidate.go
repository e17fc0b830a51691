package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/date"
	"github.com/etnz/holdings/renderer"
	"github.com/google/subcommands"
)

// consolidateCmd holds the flags for the 'consolidate' subcommand.
type consolidateCmd struct {
	date   string
	noSave bool
	output string
}

func (*consolidateCmd) Name() string     { return "consolidate" }
func (*consolidateCmd) Synopsis() string { return "consolidate the provider files into one portfolio" }
func (*consolidateCmd) Usage() string {
	return `hcs consolidate [-d <date>] [-no-save] [-o <dir>]

  Loads the configured provider files, reports duplicated assets, merges them
  with the configured strategy, and writes the consolidated table and its summary.
  Unless -no-save is given (or versioning is disabled), the run is saved as the
  version of the date.
`
}

func (c *consolidateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the version, defaults to today.")
	f.BoolVar(&c.noSave, "no-save", false, "Do not save the consolidation as a version.")
	f.StringVar(&c.output, "o", "output", "Directory receiving consolidated_portfolio.csv and summary.json, relative to the base dir.")
}

func (c *consolidateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var on date.Date
	if c.date != "" {
		var err error
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	a, ok := newApp()
	if !ok {
		return subcommands.ExitFailure
	}
	cons, outcomes, err := a.loadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	var b strings.Builder
	b.WriteString(renderer.LoadMarkdown(outcomes))
	if len(cons.Loaded()) == 0 {
		printMarkdown(b.String())
		fmt.Fprintln(os.Stderr, "Error: no source could be loaded")
		return subcommands.ExitFailure
	}
	b.WriteString("\n")
	b.WriteString(renderer.DuplicatesMarkdown(cons.FindDuplicates()))

	save := !c.noSave && a.cfg.VersioningEnabled()
	positions, err := cons.Consolidate(save, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error consolidating: %v\n", err)
		return subcommands.ExitFailure
	}
	summary := holdings.NewSummary(positions, a.cfg.TopHoldings)
	if err := c.write(a.cfg.BaseDir, positions, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing outputs: %v\n", err)
		return subcommands.ExitFailure
	}
	b.WriteString("\n")
	b.WriteString(renderer.SummaryMarkdown(summary))
	if save {
		fmt.Fprintf(&b, "\nSaved as the version of %s.\n", versionName(on))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

// write writes the consolidated table and its summary in the output directory.
func (c *consolidateCmd) write(base string, positions []holdings.Position, summary holdings.Summary) error {
	dir := c.output
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "consolidated_portfolio.csv"))
	if err != nil {
		return err
	}
	if err := holdings.EncodePositions(f, positions); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "summary.json"), append(data, '\n'), 0644)
}

func versionName(on date.Date) string {
	if on.IsZero() {
		return "today"
	}
	return on.String()
}
