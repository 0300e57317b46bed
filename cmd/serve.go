package cmd

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/portfoy/server"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve profiles over http" }
func (*serveCmd) Usage() string {
	return `pfy serve [-addr <host:port>]

  Serves profiles as json:

    GET  /profiles
    GET  /profiles/:name
    PUT  /profiles/:name
    GET  /profiles/:name/groups/:dimension[/chart]
    GET  /profiles/:name/history[/chart]
    POST /profiles/:name/history
    GET  /profiles/:name/sales

  TOTAL is read only.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides the configured one.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, status := open()
	if a == nil {
		return status
	}
	defer a.Close()

	addr := c.addr
	if addr == "" {
		addr = a.cfg.HTTP.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(a.sys, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	a.log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return failure("serving", err)
	}
	return subcommands.ExitSuccess
}
