// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package metrics instruments the Engine with Prometheus metrics. It is a
// Domain Stack addition from SPEC_FULL.md, not a spec.md core component,
// grounded in mercator-hq-jupiter's pkg/telemetry/metrics split between a
// Collector that owns metric instances and a thin exposition handler.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns every metric this proxy exports.
type Collector struct {
	registry *prometheus.Registry

	ActiveTransactions prometheus.Gauge
	TransactionsTotal  *prometheus.CounterVec
	OriginBytesTotal   prometheus.Counter
	TransactionSeconds prometheus.Histogram
}

// NewCollector builds a Collector registered against a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		ActiveTransactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "spdy2http",
			Name:      "active_transactions",
			Help:      "Number of proxy transactions currently bridging a SPDY stream to an HTTP request.",
		}),
		TransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spdy2http",
			Name:      "transactions_total",
			Help:      "Total proxy transactions completed, labeled by result.",
		}, []string{"result"}),
		OriginBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spdy2http",
			Name:      "origin_bytes_total",
			Help:      "Total response body bytes read from origins.",
		}),
		TransactionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spdy2http",
			Name:      "transaction_duration_seconds",
			Help:      "Duration of a bridged transaction from request handling to response-done.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(c.ActiveTransactions, c.TransactionsTotal, c.OriginBytesTotal, c.TransactionSeconds)
	return c
}

// ObserveCompletion records a finished transaction's outcome and duration.
func (c *Collector) ObserveCompletion(success bool, started time.Time) {
	result := "success"
	if !success {
		result = "error"
	}
	c.TransactionsTotal.WithLabelValues(result).Inc()
	c.TransactionSeconds.Observe(time.Since(started).Seconds())
}

// Serve runs a debug HTTP listener exposing /metrics until ctx is
// canceled. Addr is expected to be non-empty; callers gate this on the
// optional --metrics-addr flag (SPEC_FULL.md §6).
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
