// Package metrics exposes Prometheus collectors for the relay pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal               prometheus.Counter
	articlesFetchedTotal     prometheus.Counter
	deliveriesTotal          *prometheus.CounterVec
	translationFailuresTotal *prometheus.CounterVec
	deliveryDurationSeconds  prometheus.Histogram

	once sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "relay_pages_fetched_total",
			Help: "Total number of arXiv result pages fetched.",
		})
		articlesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "relay_articles_fetched_total",
			Help: "Total number of articles parsed from result pages.",
		})
		deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total delivery tasks finished, labeled by outcome.",
		}, []string{"outcome"})
		translationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_translation_failures_total",
			Help: "Total translation failures, labeled by reason.",
		}, []string{"reason"})
		deliveryDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "relay_delivery_duration_seconds",
			Help:    "Histogram of per-article task latencies.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		})
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records one fetched page and its entry count.
func ObservePage(entries int) {
	if pagesTotal == nil {
		return
	}
	pagesTotal.Inc()
	articlesFetchedTotal.Add(float64(entries))
}

// ObserveDelivery records one finished delivery task.
func ObserveDelivery(outcome string, duration time.Duration) {
	if deliveriesTotal == nil {
		return
	}
	deliveriesTotal.WithLabelValues(outcome).Inc()
	deliveryDurationSeconds.Observe(duration.Seconds())
}

// ObserveTranslationFailure records one failed translation.
func ObserveTranslationFailure(reason string) {
	if translationFailuresTotal == nil {
		return
	}
	translationFailuresTotal.WithLabelValues(reason).Inc()
}
