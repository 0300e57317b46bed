package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

var _ agent.Portfolio = (*accounting.System)(nil)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct{}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "Start an interactive session with the AI assistant." }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `pfy assist [<question>]

  Start an interactive session with the AI assistant. It reads your profiles
  and searches the web to answer. The Gemini API key is read from
  GEMINI_API_KEY.
`
}

// SetFlags sets the flags for the command.
func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	initialPrompt := strings.Join(f.Args(), " ")

	a, status := open()
	if a == nil {
		return status
	}
	defer a.Close()

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	model := a.cfg.Gemini.Model
	analyst := agent.NewAnalyst(model, a.sys)
	trader := agent.NewTrader(model)
	assistant := agent.New(stdout, os.Stdin, model, analyst, trader)
	assistant.Print = func(w io.Writer, md string) { printMarkdown(md) }

	if err := assistant.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
