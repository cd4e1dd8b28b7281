package cli

import (
	"context"
	"errors"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"go-currency-sync/board"
	"go-currency-sync/engine"
	"go-currency-sync/http"
)

// NewServeCommand runs the board behind the HTTP API until interrupted
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live board over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				opts.Config.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts, opts.Logger(os.Stderr))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func serve(ctx context.Context, opts *RootOptions, logger log.Logger) error {
	cfg := opts.Config

	e := engine.NewLoggingEngine(log.With(logger, "component", "engine"), engine.New())
	if err := e.Initialize(cfg.TrackedCurrencies(), cfg.PivotCurrency()); err != nil {
		return err
	}

	dispatcher := board.NewDispatcher(e, log.With(logger, "component", "dispatcher"))
	poller := board.NewPoller(opts.Source(logger), cfg.PivotCurrency(), cfg.Refresh, log.With(logger, "component", "poller"))

	outcomes := make(chan board.Outcome)
	go poller.Run(ctx, outcomes)

	dispatched := make(chan error, 1)
	go func() { dispatched <- dispatcher.Run(ctx, outcomes) }()

	server := &nhttp.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           http.NewServer(dispatcher, log.With(logger, "component", "http")),
		ReadHeaderTimeout: cfg.HTTP.Timeout,
	}
	served := make(chan error, 1)
	go func() { served <- server.ListenAndServe() }()

	level.Info(logger).Log("msg", "serving", "addr", cfg.HTTP.Addr, "pivot", cfg.PivotCurrency(), "tracked", cfg.Tracked)

	select {
	case err := <-served:
		if !errors.Is(err, nhttp.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		level.Warn(logger).Log("msg", "shutdown", "err", err)
	}
	<-dispatched
	level.Info(logger).Log("msg", "stopped")
	return nil
}
