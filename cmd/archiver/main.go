package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"smart-docs/internal/app"
	"smart-docs/internal/history"
	"smart-docs/internal/httputil"
	"smart-docs/internal/queue"
)

var errNoQueue = errors.New("archiver requires a queue (set QUEUE_PROVIDER=nats)")

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("archiver starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runWorkers(ctx, deps)
	})
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps, "archiver")
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		deps.Log.Error("archiver stopped", "err", err)
	}
}

// runWorkers subscribes one worker per history event type.
func runWorkers(ctx context.Context, deps app.Deps) error {
	if deps.Queue == nil {
		return errNoQueue
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, taskType := range []queue.TaskType{queue.TaskTypeDocumentLoaded, queue.TaskTypeSummaryCompleted} {
		g.Go(func() error {
			return deps.Queue.Worker(ctx, taskType, archiveHandler(deps))
		})
	}
	return g.Wait()
}

func archiveHandler(deps app.Deps) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		if err := history.Archive(ctx, deps.Store, task); err != nil {
			deps.Log.Warn("archive failed", "task_id", task.ID, "type", task.Type, "attempt", task.Attempts, "err", err)
			return err
		}
		deps.Log.Debug("archived", "task_id", task.ID, "type", task.Type)
		return nil
	}
}
