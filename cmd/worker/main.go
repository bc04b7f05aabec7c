package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"jitter-service/internal/app"
	"jitter-service/internal/httputil"
	"jitter-service/internal/jitter"
	"jitter-service/internal/queue"
	"jitter-service/internal/retry"
)

func main() {
	deps, err := app.Build("worker")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	os.Exit(run(deps))
}

// run serves until a signal arrives and returns the process exit code.
// deps are closed on every path.
func run(deps app.Deps) int {
	defer deps.Close()
	if deps.Queue == nil {
		deps.Log.Error("worker requires QUEUE_PROVIDER=nats")
		return 1
	}
	deps.Log.Info("jitter worker starting", "subject", deps.Config.Subject)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Answer calculation requests
	g.Go(func() error {
		return deps.Queue.Serve(ctx, deps.Config.Subject, calculateHandler(deps))
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("worker stopped", "err", err)
		return 1
	}
	return 0
}

// calculateHandler replies with the bare rounded delay, or an ErrorReply
// when the event is rejected.
func calculateHandler(deps app.Deps) queue.Handler {
	return func(ctx context.Context, data []byte) ([]byte, error) {
		res, err := deps.Service.Handle(ctx, data)
		if err != nil {
			if errors.Is(err, retry.ErrInvalidPolicy) || errors.Is(err, retry.ErrInvalidInput) {
				deps.Log.Warn("rejected event", "err", err)
				return queue.EncodeError(jitter.ErrorKind(err), err), nil
			}
			return nil, err
		}
		return json.Marshal(res.Rounded)
	}
}
