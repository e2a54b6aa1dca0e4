package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 推荐请求
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_recommend_requests_total",
			Help: "Total number of recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "ok", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "counselor_recommend_duration_seconds",
			Help:    "Duration of recommendation pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "counselor_recommend_result_size",
			Help:    "Number of counselors returned per recommendation",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
		},
	)

	// 流水线阶段
	StageApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_recommend_stage_applied_total",
			Help: "Total number of times an optional ranking stage changed the candidate list",
		},
		[]string{"stage"},
	)

	// 可约时段检查
	AvailabilityFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counselor_availability_check_failures_total",
			Help: "Total number of failed availability checks while composing results",
		},
		[]string{"reason"}, // "error", "breaker_open"
	)

	// 热门列表缓存
	HotListCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "counselor_hot_list_cache_hits_total",
			Help: "Total number of hot list cache hits",
		},
	)

	HotListCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "counselor_hot_list_cache_misses_total",
			Help: "Total number of hot list cache misses",
		},
	)

	HotListCacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "counselor_hot_list_cache_errors_total",
			Help: "Total number of hot list cache read or write errors",
		},
	)

	// HTTP
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "counselor_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// ObserveRecommend 记录一次推荐请求
func ObserveRecommend(strategy string, err error, size int, started time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if strategy == "" {
			strategy = "unknown"
		}
	}
	RecommendRequests.WithLabelValues(strategy, outcome).Inc()
	RecommendDuration.Observe(time.Since(started).Seconds())
	if err == nil {
		RecommendResultSize.Observe(float64(size))
	}
}
