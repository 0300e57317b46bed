package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/accounting/accountingtest"
	"github.com/etnz/portfoy/config"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// setup makes commands run against the fixture system and print plain
// markdown into the returned buffer.
func setup(t *testing.T) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	oldOpen, oldOut, oldErr, oldPlain, oldConfig := openSystem, stdout, stderr, *plain, *ConfigFile
	openSystem = func(*config.Config, *zap.Logger) (*accounting.System, error) { return accountingtest.Open(t, dir), nil }
	stdout, stderr, *plain = &out, &out, true
	*ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() {
		openSystem, stdout, stderr, *plain, *ConfigFile = oldOpen, oldOut, oldErr, oldPlain, oldConfig
	})
	return &out
}

func run(c subcommands.Command, args ...string) subcommands.ExitStatus {
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return c.Execute(context.Background(), f)
}

func TestValueCmd(t *testing.T) {
	out := setup(t)
	if got := run(&valueCmd{}); got != subcommands.ExitSuccess {
		t.Fatalf("pfy value = %v: %s", got, out)
	}
	for _, s := range []string{"TOTAL", "AMZN", "THYAO", "Emeklilik"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("pfy value does not mention %s:\n%s", s, out)
		}
	}

	out.Reset()
	if got := run(&valueCmd{}, "-p", "Ana", "-json"); got != subcommands.ExitSuccess {
		t.Fatalf("pfy value -p Ana -json = %v: %s", got, out)
	}
	var report struct {
		Profile  string `json:"profile"`
		Holdings []any  `json:"holdings"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("pfy value -json printed invalid json: %v\n%s", err, out)
	}
	if report.Profile != "Ana" || len(report.Holdings) != 2 {
		t.Errorf("pfy value -p Ana -json = %+v, want 2 holdings of Ana", report)
	}

	if got := run(&valueCmd{}, "-p", "Yok"); got != subcommands.ExitFailure {
		t.Errorf("pfy value -p Yok = %v, want a failure", got)
	}
}

func TestGroupsCmd(t *testing.T) {
	out := setup(t)
	if got := run(&groupsCmd{}, "-p", "Ana", "-by", "class"); got != subcommands.ExitSuccess {
		t.Fatalf("pfy groups = %v: %s", got, out)
	}
	if !strings.Contains(out.String(), "| bist |") {
		t.Errorf("pfy groups -by class has no bist group:\n%s", out)
	}
	if got := run(&groupsCmd{}, "-by", "color"); got != subcommands.ExitFailure {
		t.Errorf("pfy groups -by color = %v, want a failure", got)
	}
}

func TestSnapshotCmd(t *testing.T) {
	out := setup(t)
	if got := run(&snapshotCmd{}, "-p", "TOTAL"); got != subcommands.ExitFailure {
		t.Errorf("pfy snapshot -p TOTAL = %v, want a failure", got)
	}
	out.Reset()
	if got := run(&snapshotCmd{}); got != subcommands.ExitSuccess {
		t.Fatalf("pfy snapshot = %v: %s", got, out)
	}
	if want := "Recorded Ana, Emeklilik on " + accountingtest.Today.String(); !strings.Contains(out.String(), want) {
		t.Errorf("pfy snapshot printed %q, want %q", out, want)
	}

	out.Reset()
	if got := run(&historyCmd{}); got != subcommands.ExitSuccess {
		t.Fatalf("pfy history = %v: %s", got, out)
	}
	if !strings.Contains(out.String(), accountingtest.Today.String()) {
		t.Errorf("pfy history does not show the snapshot:\n%s", out)
	}
}

func TestChartCmd(t *testing.T) {
	out := setup(t)
	file := filepath.Join(t.TempDir(), "pie.png")
	if got := run(&chartCmd{}, "-o", file, "-by", "class"); got != subcommands.ExitSuccess {
		t.Fatalf("pfy chart = %v: %s", got, out)
	}
	png, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("pfy chart did not write a png")
	}
	if got := run(&chartCmd{}, "-o", file, "-history"); got != subcommands.ExitFailure {
		t.Errorf("pfy chart -history without history = %v, want a failure", got)
	}
}
