// Command pfy values Turkish investment portfolios.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/portfoy/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Answers shell completion requests, and exits, when COMP_LINE is set.
	cmd.Completion().Complete("pfy")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:], os.Stdin, os.Stdout, os.Stderr); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(commander *subcommands.Commander, name string) bool {
	found := false
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		if c.Name() == name {
			found = true
		}
	})
	return found
}
