package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings/renderer"
	"github.com/etnz/holdings/version"
	"github.com/google/subcommands"
)

type versionsCmd struct{}

func (*versionsCmd) Name() string     { return "versions" }
func (*versionsCmd) Synopsis() string { return "list the saved consolidations" }
func (*versionsCmd) Usage() string {
	return `hcs versions

  Lists the saved consolidations, oldest first.
`
}

func (c *versionsCmd) SetFlags(f *flag.FlagSet) {}

func (c *versionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := newApp()
	if !ok {
		return subcommands.ExitFailure
	}
	s, err := a.store()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	versions, err := s.ListVersions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing versions: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.VersionsMarkdown(versions))
	return subcommands.ExitSuccess
}

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	from, to string
	save     bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare two saved consolidations" }
func (*compareCmd) Usage() string {
	return `hcs compare [-from <date>] [-to <date>|latest] [-save]

  Compares two saved consolidations: new and removed assets, and the largest
  value changes. Without flags, the two most recent versions are compared.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Older version (a date), defaults to the second most recent version.")
	f.StringVar(&c.to, "to", "", "Newer version (a date or latest), defaults to the most recent version.")
	f.BoolVar(&c.save, "save", false, "Also save the comparison as a change report.")
}

// defaults fills the versions to compare with the two most recent ones.
func (c *compareCmd) defaults(s *version.Store) error {
	if c.from != "" {
		return nil
	}
	versions, err := s.ListVersions()
	if err != nil {
		return err
	}
	if len(versions) < 2 {
		return errors.New("need at least 2 versions to compare")
	}
	c.from = versions[len(versions)-2].Date.String()
	if c.to == "" {
		c.to = versions[len(versions)-1].Date.String()
	}
	return nil
}

func (c *compareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := newApp()
	if !ok {
		return subcommands.ExitFailure
	}
	s, err := a.store()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.defaults(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cmp, err := s.Compare(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error comparing versions: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.save {
		file, err := s.GenerateChangeReport(c.from, c.to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Report saved in %s\n", file)
	}
	printMarkdown(renderer.RenderComparison(cmp))
	return subcommands.ExitSuccess
}
