// Package metrics 定义推荐引擎的 Prometheus 指标。
//
// 指标注册在包内独立的 Registry 上，通过 Handler 暴露，避免污染全局默认注册表。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 是本包所有指标所在的注册表。
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// StrategyDuration 记录单个打分策略的耗时
	StrategyDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brewrec_strategy_duration_seconds",
			Help:    "Duration of a single scoring strategy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// StrategyResults 记录策略返回的结果数量
	StrategyResults = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brewrec_strategy_results",
			Help:    "Number of results returned by a scoring strategy",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200},
		},
		[]string{"strategy"},
	)

	// StrategyErrors 记录策略失败次数（失败的策略按空结果参与合并）
	StrategyErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brewrec_strategy_errors_total",
			Help: "Total number of failed scoring strategy runs",
		},
		[]string{"strategy"},
	)

	// FallbackTotal 记录回落到热门榜的次数
	FallbackTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brewrec_fallback_total",
			Help: "Total number of feed requests served by the trending fallback",
		},
		[]string{"reason"},
	)

	// VenueRankDuration 记录酒吧排序耗时
	VenueRankDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "brewrec_venue_rank_duration_seconds",
			Help:    "Duration of geo-quality venue ranking",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FilteredTotal 按过滤器记录被剔除的动态数
	FilteredTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brewrec_filtered_items_total",
			Help: "Total number of candidates dropped, by filter",
		},
		[]string{"filter"},
	)

	// NodeDuration 记录 Pipeline 中每个 Node 的耗时
	NodeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brewrec_pipeline_node_duration_seconds",
			Help:    "Duration of a pipeline node",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node", "kind"},
	)
)

// ObserveStrategy 记录一次策略运行的耗时与结果数量。
func ObserveStrategy(strategy string, start time.Time, results int) {
	StrategyDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	StrategyResults.WithLabelValues(strategy).Observe(float64(results))
}

// Handler 返回 /metrics 处理器。
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
