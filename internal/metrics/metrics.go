package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Outcome label values.
const (
	OutcomePublished = "published"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeRequeued  = "requeued"
	OutcomeStored    = "stored"
)

var (
	UploadsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uploads_published_total",
		Help: "Uploads accepted and published to the voice queue",
	})

	WorkerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_worker_messages_total",
		Help: "Voice messages handled by the AI worker, by outcome",
	}, []string{"outcome"})

	WorkerStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voice_worker_stage_duration_seconds",
		Help:    "Time spent in each AI worker stage",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"stage"})

	EvaluationsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluations_stored_total",
		Help: "Result messages handled by the evaluation consumer, by outcome",
	}, []string{"outcome"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveStage records how long a worker stage took since start.
func ObserveStage(stage string, start time.Time) {
	WorkerStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Middleware counts requests by matched route, so path parameters do not
// explode the label set.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		route := c.Route().Path
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}

// Serve exposes /metrics on addr until ctx is cancelled. Used by the queue
// consumers, which have no HTTP server of their own.
func Serve(ctx context.Context, addr string, logger logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("addr", addr).Info("📈 Metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("❌ Metrics server stopped")
	}
}
