package cmd

import (
	"context"
	"flag"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/renderer"
	"github.com/google/subcommands"
)

type valueCmd struct {
	profile string
	json    bool
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value a profile at current prices" }
func (*valueCmd) Usage() string {
	return `pfy value [-p <profile>] [-json]

  Values every holding of a profile at current prices and displays them with
  the profile totals. TOTAL, the default, is the union of all profiles.
  Holdings without a price are valued at their cost and listed in the notes.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "p", portfoy.TotalProfile, "Profile to value.")
	f.BoolVar(&c.json, "json", false, "Print the report as json.")
}

func (c *valueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := open()
	if a == nil {
		return status
	}
	defer a.Close()

	v, err := a.sys.Value(ctx, c.profile)
	if err != nil {
		return failure("valuing "+c.profile, err)
	}
	report := renderer.NewReport(v, a.sys.Date())
	if c.json {
		if err := printJSON(report); err != nil {
			return failure("printing", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderReport(report))
	return subcommands.ExitSuccess
}
