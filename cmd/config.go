package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/portfoy/config"
	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
)

type configCmd struct{}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "display the effective configuration" }
func (*configCmd) Usage() string {
	return `pfy config

  Prints the configuration in effect, after defaults and environment
  overrides, then the list of supported environment variables.
`
}

func (*configCmd) SetFlags(_ *flag.FlagSet) {}

func (*configCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(*ConfigFile)
	if err != nil {
		return failure("loading configuration", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return failure("printing configuration", err)
	}
	fmt.Fprintf(stdout, "# %s\n%s\n%s", *ConfigFile, out, config.Usage())
	return subcommands.ExitSuccess
}
