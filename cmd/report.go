package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings/version"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	from, to string
	query    string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "generate a change report between two versions" }
func (*reportCmd) Usage() string {
	return `hcs report -from <date> [-to <date>|latest] [-select <jsonpath>]

  Compares two saved consolidations and saves the result as a JSON change report
  in output/reports. With -select, prints the part of the report matching the
  JSONPath expression (e.g. "$.value_changes[0].ticker") instead of its file name.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Older version (a date).")
	f.StringVar(&c.to, "to", version.Latest, "Newer version (a date or latest).")
	f.StringVar(&c.query, "select", "", "JSONPath expression to print from the report.")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		fmt.Fprintln(os.Stderr, "Error: -from is required")
		return subcommands.ExitUsageError
	}
	a, ok := newApp()
	if !ok {
		return subcommands.ExitFailure
	}
	s, err := a.store()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	file, err := s.GenerateChangeReport(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.query == "" {
		fmt.Println(file)
		return subcommands.ExitSuccess
	}

	v, err := version.Query(file, c.query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if s, ok := v.(string); ok {
		fmt.Println(s)
		return subcommands.ExitSuccess
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(data))
	return subcommands.ExitSuccess
}
