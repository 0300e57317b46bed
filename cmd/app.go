// Package cmd implements the pfy command line application.
package cmd

import (
	"cmp"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/config"
	"github.com/etnz/portfoy/log"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&valueCmd{}, "portfolio")
	c.Register(&groupsCmd{}, "portfolio")
	c.Register(&historyCmd{}, "portfolio")
	c.Register(&snapshotCmd{}, "portfolio")
	c.Register(&chartCmd{}, "portfolio")

	c.Register(&AssistCmd{}, "tools")
	c.Register(&serveCmd{}, "tools")
	c.Register(&configCmd{}, "tools")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	ConfigFile = flag.String("config", cmp.Or(os.Getenv(EnvConfig), "pfy.yaml"), "Path to the configuration file. Defaults and PFY_* variables apply when missing.")
	Verbose    = flag.Bool("v", false, "Log debug messages.")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it for the terminal.")
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// openSystem opens the accounting system described by cfg.
	openSystem = accounting.New
)

// app is the state of a single command execution.
type app struct {
	cfg *config.Config
	log *zap.Logger
	sys *accounting.System
}

// openApp loads the configuration, then the accounting system.
func openApp() (*app, error) {
	cfg, err := config.Load(*ConfigFile)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if *Verbose {
		level = "debug"
	}
	logger, err := log.New(level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}
	sys, err := openSystem(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, sys: sys}, nil
}

func (a *app) Close() {
	if err := a.sys.Close(); err != nil {
		a.log.Warn("cannot close history", zap.Error(err))
	}
	_ = a.log.Sync()
}

// open is the common prologue of commands.
func open() (*app, subcommands.ExitStatus) {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return nil, subcommands.ExitFailure
	}
	return a, subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal.
func printMarkdown(md string) {
	if *plain {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// failure reports err and returns the failure status.
func failure(what string, err error) subcommands.ExitStatus {
	fmt.Fprintf(stderr, "Error %s: %v\n", what, err)
	return subcommands.ExitFailure
}
