package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"i9score/internal/decision/handler"
	"i9score/internal/platform/httpserver"
	"i9score/internal/platform/metrics"
	"i9score/internal/platform/middleware"
	"i9score/internal/platform/ratelimit"
	"i9score/pkg/platform/httputil"
	"i9score/pkg/platform/middleware/requestid"
	"i9score/pkg/platform/middleware/requesttime"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := httpserver.New(cfg.Addr, newRouter(a))
			a.logger.Info("starting i9score", "addr", cfg.Addr, "store", cfg.Store.Backend)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			a.logger.Info("i9score stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address (overrides ADDR)")
	addConfigFlags(cmd)
	return cmd
}

// newRouter mounts the decision API, health and metrics endpoints.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Metrics(metrics.New(a.registry)))

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		if limit := a.cfg.RateLimit; limit.Requests > 0 {
			r.Use(ratelimit.Middleware(a.rateLimitStore(), limit.Requests, limit.Window, a.logger))
		}
		handler.New(a.service, a.logger, handler.WithAuditTrail(a.publisher)).Register(r)
	})
	return r
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for name, check := range a.checks {
		if err := check(r.Context()); err != nil {
			a.logger.WarnContext(r.Context(), "health check failed", "dependency", name, "error", err)
			status[name] = "unavailable"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	httputil.WriteJSON(w, code, status)
}
