package cmd

import (
	"context"
	"flag"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	profile string
	period  string
	in      string
	json    bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the recorded value history of a profile" }
func (*historyCmd) Usage() string {
	return `pfy history [-p <profile>] [-period <period>] [-in <period>] [-json]

  Displays the daily totals recorded by 'pfy snapshot', in TRY and USD.
  The TOTAL history is the sum of all profiles on each day.

  -period keeps the last record of every week, month, quarter or year.
  -in keeps only the records of the current week, month, quarter or year.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "p", portfoy.TotalProfile, "Profile to report on.")
	f.StringVar(&c.period, "period", "", "Sampling period (week, month, quarter, year).")
	f.StringVar(&c.in, "in", "", "Only show the current period (week, month, quarter, year).")
	f.BoolVar(&c.json, "json", false, "Print the history as json.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := open()
	if a == nil {
		return status
	}
	defer a.Close()

	series, err := a.sys.Series(ctx, c.profile)
	if err != nil {
		return failure("reading history", err)
	}
	if series, err = accounting.Narrow(series, a.sys.Date(), c.period, c.in); err != nil {
		return failure("parsing periods", err)
	}
	h := renderer.NewHistory(c.profile, series)
	if c.json {
		if err := printJSON(h); err != nil {
			return failure("printing", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderHistory(h))
	return subcommands.ExitSuccess
}
