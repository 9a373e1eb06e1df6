package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/scholarmail"
	smslog "github.com/fwojciec/scholarmail/slog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

// shutdownTimeout bounds how long watch waits for the metrics server and an
// in-flight run when stopping.
const shutdownTimeout = 30 * time.Second

// Run executes the watch command. It blocks until the context is canceled.
func (c *WatchCmd) Run(deps *Dependencies) error {
	cronLogger := smslog.NewCronLogger(deps.Logger)
	scheduler := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	_, err := scheduler.AddFunc(c.Schedule, func() {
		res, err := deps.Parser.Run(deps.Ctx)
		if res != nil && deps.Metrics != nil {
			deps.Metrics.ObserveRun(res, deps.now())
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			deps.Logger.Error("scheduled run failed", "err", err)
		}
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: invalid schedule %q: %v\n", c.Schedule, err)
		return scholarmail.Errorf(scholarmail.EINVALID, "invalid schedule %q: %v", c.Schedule, err)
	}

	var server *http.Server
	serverErr := make(chan error, 1)
	if c.MetricsAddr != "" && deps.Gatherer != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: c.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
		deps.Logger.Info("serving metrics", "addr", c.MetricsAddr)
	}

	scheduler.Start()
	deps.Logger.Info("watching for unprocessed emails", "schedule", c.Schedule)

	select {
	case <-deps.Ctx.Done():
	case err = <-serverErr:
		fmt.Fprintf(deps.Stderr, "error: metrics server: %v\n", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopped := scheduler.Stop()
	if server != nil {
		_ = server.Shutdown(shutdownCtx)
	}
	select {
	case <-stopped.Done():
	case <-shutdownCtx.Done():
		deps.Logger.Warn("in-flight run did not finish before shutdown")
	}

	deps.Logger.Info("watch stopped")
	return err
}
