package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/renderer"
	"github.com/google/subcommands"
)

type chartCmd struct {
	profile   string
	dimension string
	history   bool
	output    string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the allocation or the history of a profile" }
func (*chartCmd) Usage() string {
	return `pfy chart [-p <profile>] [-by <dimension> | -history] -o <file.png>

  Draws a pie chart of the profile allocation, or a line chart of its recorded
  history with -history, into a PNG file.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "p", portfoy.TotalProfile, "Profile to draw.")
	f.StringVar(&c.dimension, "by", "market", "Allocation grouping.")
	f.BoolVar(&c.history, "history", false, "Draw the value history instead of the allocation.")
	f.StringVar(&c.output, "o", "chart.png", "Output PNG file.")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := open()
	if a == nil {
		return status
	}
	defer a.Close()

	var png []byte
	if c.history {
		series, err := a.sys.Series(ctx, c.profile)
		if err != nil {
			return failure("reading history", err)
		}
		png, err = renderer.HistoryChart(renderer.NewHistory(c.profile, series), a.sys.Display)
		if err != nil {
			return failure("drawing history", err)
		}
	} else {
		g, err := a.sys.NewGroups(ctx, c.profile, c.dimension, true)
		if err != nil {
			return failure("grouping "+c.profile, err)
		}
		png, err = renderer.AllocationChart(g)
		if err != nil {
			return failure("drawing allocation", err)
		}
	}
	if err := os.WriteFile(c.output, png, 0o644); err != nil {
		return failure("writing chart", err)
	}
	fmt.Fprintf(stdout, "Chart written to %s\n", c.output)
	return subcommands.ExitSuccess
}
