package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/renderer"
	"github.com/google/subcommands"
)

type groupsCmd struct {
	profile   string
	dimension string
	all       bool
	json      bool
}

func (*groupsCmd) Name() string     { return "groups" }
func (*groupsCmd) Synopsis() string { return "display subtotals of a profile" }
func (*groupsCmd) Usage() string {
	return `pfy groups [-p <profile>] [-by market|sector|code|class] [-all] [-json]

  Subtotals the value of a profile and shows each group's share. Groups under
  1% of the total are merged into "Other" unless -all is set.
`
}

func (c *groupsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "p", portfoy.TotalProfile, "Profile to report on.")
	f.StringVar(&c.dimension, "by", "market", "Grouping: "+strings.Join(accounting.Dimensions, ", ")+".")
	f.BoolVar(&c.all, "all", false, "Keep small groups.")
	f.BoolVar(&c.json, "json", false, "Print the groups as json.")
}

func (c *groupsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if _, ok := portfoy.ParseDimension(c.dimension); !ok {
		return failure("parsing -by", fmt.Errorf("unknown dimension %q, want one of %s", c.dimension, strings.Join(accounting.Dimensions, ", ")))
	}
	a, status := open()
	if a == nil {
		return status
	}
	defer a.Close()

	g, err := a.sys.NewGroups(ctx, c.profile, c.dimension, !c.all)
	if err != nil {
		return failure("grouping "+c.profile, err)
	}
	if c.json {
		if err := printJSON(g); err != nil {
			return failure("printing", err)
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderGroups(g))
	return subcommands.ExitSuccess
}
