package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeFound   = "found"
	OutcomeNoMatch = "no_match"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	RecommendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelmatch",
		Name:      "recommend_requests_total",
		Help:      "Recommendation requests by outcome.",
	}, []string{"outcome"})

	RecommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reelmatch",
		Name:      "recommend_duration_seconds",
		Help:      "Time to answer a recommendation request.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	RecommendCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelmatch",
		Name:      "recommend_cache_total",
		Help:      "Recommendation cache lookups by result.",
	}, []string{"result"})

	CatalogMovies = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reelmatch",
		Name:      "catalog_movies",
		Help:      "Movies in the loaded catalog.",
	})

	BuildStageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reelmatch",
		Name:      "build_stage_seconds",
		Help:      "Duration of each catalog build stage.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"stage"})
)
