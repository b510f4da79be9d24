package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/handler"
	"github.com/noah-isme/circleed-client/internal/service"
	"github.com/noah-isme/circleed-client/pkg/jobs"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep views fresh in the background and serve the status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), c.app)
		},
	}
}

// runWatch keeps the views fresh until ctx is cancelled: signals and the
// poller enqueue refresh jobs, and the status API serves the results.
func runWatch(ctx context.Context, a *app) error {
	queue := a.refresh.NewQueue(jobs.QueueConfig{
		Workers:    a.cfg.Refresh.Workers,
		BufferSize: a.cfg.Refresh.BufferSize,
		MaxRetries: a.cfg.Refresh.Retries,
		RetryDelay: a.cfg.Refresh.RetryDelay,
		Logger:     a.logger,
	})
	queue.Start(ctx)
	defer queue.Stop()
	a.refresh.UseQueue(queue)

	poll := service.NewPollService(a.refresh, a.cfg.Poll.Interval, a.logger)
	if err := poll.Start(ctx); err != nil {
		return err
	}
	defer poll.Stop()
	poll.Poll()

	status := service.NewStatusService(a.store, a.auth, poll, a.metrics)
	router := handler.NewRouter(a.cfg, a.logger, handler.NewStatusHandler(status, a.metrics.Handler()), a.metrics)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Status.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Sugar().Infow("status server starting", "addr", srv.Addr, "env", a.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("status server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("status server shutdown", zap.Error(err))
	}
	a.logger.Info("watcher stopped")
	return nil
}
