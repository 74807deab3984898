package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Serve starts the monitoring HTTP endpoint exposing /healthz and /metrics.
// It blocks, so callers run it in a goroutine. The pipeline is a batch job;
// the endpoint only matters for long-lived deployments that loop runs, which
// is why it is disabled by default.
func Serve(addr string, logger *zap.Logger) {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("starting monitoring server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		logger.Error("monitoring server failed", zap.Error(err))
	}
}
