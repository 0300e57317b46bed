package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
)

type snapshotCmd struct {
	profile string
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "record today's value of profiles" }
func (*snapshotCmd) Usage() string {
	return `pfy snapshot [-p <profile>]

  Values profiles and records their totals for today in the history, replacing
  any record of the same day. All profiles are recorded by default. TOTAL is
  computed from the other profiles and cannot be recorded.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "p", "", "Profile to record. Records all profiles by default.")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := open()
	if a == nil {
		return status
	}
	defer a.Close()

	if c.profile != "" {
		if _, err := a.sys.Record(ctx, c.profile); err != nil {
			return failure("recording "+c.profile, err)
		}
		fmt.Fprintf(stdout, "Recorded %s on %s\n", c.profile, a.sys.Date())
		return subcommands.ExitSuccess
	}

	recorded, err := a.sys.RecordAll(ctx)
	if len(recorded) > 0 {
		fmt.Fprintf(stdout, "Recorded %s on %s\n", strings.Join(recorded, ", "), a.sys.Date())
	}
	if err != nil {
		return failure("recording", err)
	}
	return subcommands.ExitSuccess
}
