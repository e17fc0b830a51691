// Command hcs consolidates the holdings exported by several brokerage and
// portfolio-tracking providers into a single versioned portfolio.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/holdings/cmd"
	"github.com/etnz/holdings/dedup"
	"github.com/etnz/holdings/source"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	completion(commander).Complete(path.Base(os.Args[0]))

	flag.Parse()

	if sub := flag.Arg(0); sub != "" && !registered(commander, sub) {
		if found, code := cmd.RunExtension(sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a registered subcommand.
func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		if sub.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
func completion(c *subcommands.Commander) *complete.Command {
	var providers, strategies []string
	for _, p := range source.Providers() {
		providers = append(providers, string(p))
	}
	for _, s := range dedup.Strategies() {
		strategies = append(strategies, string(s))
	}

	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"config":   predict.Files("*.yaml"),
			"env":      predict.Files("*"),
			"base-dir": predict.Dirs("*"),
		},
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(fs)
		flags := map[string]complete.Predictor{}
		fs.VisitAll(func(f *flag.Flag) { flags[f.Name] = predict.Something })
		root.Sub[sub.Name()] = &complete.Command{Flags: flags}
	})
	if read, ok := root.Sub["read"]; ok {
		read.Args = predict.Set(providers)
	}
	if cons, ok := root.Sub["consolidate"]; ok {
		cons.Flags["d"] = predict.Nothing
	}
	root.Flags["strategy"] = predict.Set(strategies)
	return root
}
