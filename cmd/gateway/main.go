package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jitter-service/internal/app"
	"jitter-service/internal/httputil"
	"jitter-service/internal/jitter"
	"jitter-service/internal/retry"
	"jitter-service/internal/store"
)

const maxEventSize = 64 << 10

func main() {
	deps, err := app.Build("gateway")
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	r := httputil.NewRouter(deps.Log)
	r.Post("/api/jitter", calculateHandler(deps))
	r.Get("/api/jitter/{id}", calculationHandler(deps))
	r.Get("/api/stats", statsHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))
	r.Method(http.MethodGet, "/metrics", httputil.MetricsHandler(deps.Registry))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			deps.Log.Error("shutdown failed", "err", err)
		}
	}()

	deps.Log.Info("gateway listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Log.Error("server failed", "err", err)
	}
}

// calculateHandler answers an event with the bare rounded delay.
func calculateHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventSize))
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read event", err, http.StatusBadRequest)
			return
		}

		res, err := deps.Service.Handle(r.Context(), body)
		if err != nil {
			if errors.Is(err, retry.ErrInvalidPolicy) || errors.Is(err, retry.ErrInvalidInput) {
				httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
				return
			}
			httputil.Fail(deps.Log, w, "calculation failed", err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("X-Calculation-ID", res.ID.String())
		httputil.WriteJSON(w, http.StatusOK, res.Rounded)
	}
}

func calculationHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid calculation id", err, http.StatusBadRequest)
			return
		}
		calc, err := deps.Store.GetCalculation(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrCalculationNotFound) {
				httputil.Fail(deps.Log, w, "calculation not found", err, http.StatusNotFound)
				return
			}
			httputil.Fail(deps.Log.With("calculation_id", id), w, "failed to load calculation", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, calc)
	}
}

func statsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Stats.Snapshot(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "stats unavailable", err, http.StatusServiceUnavailable)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"strategies": snap,
			"known":      []jitter.Strategy{jitter.StrategyFull, jitter.StrategyExponential, jitter.StrategyDecorrelated},
		})
	}
}
