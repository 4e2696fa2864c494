package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cptree"

// PrometheusHooks implements PipelineHooks, BuilderHooks and CacheHooks by
// recording prometheus metrics.
type PrometheusHooks struct {
	gatherer prometheus.Gatherer

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	treeNodes     prometheus.Gauge
	pentagons     prometheus.Gauge
	groups        *prometheus.GaugeVec
	builderNodes  *prometheus.CounterVec
	delayed       *prometheus.CounterVec
	dropped       *prometheus.CounterVec
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

// NewPrometheusHooks creates the metrics and registers them with reg.
func NewPrometheusHooks(reg *prometheus.Registry) *PrometheusHooks {
	p := &PrometheusHooks{
		gatherer: reg,
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that returned an error.",
		}, []string{"stage"}),
		treeNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Nodes in the most recently loaded tree.",
		}),
		pentagons: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diff_pentagons",
			Help:      "Pentagons produced by the last comparison.",
		}),
		groups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "analysis_groups",
			Help:      "Groups produced by the last analysis.",
		}, []string{"mode"}),
		builderNodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builder_nodes_total",
			Help:      "Node messages applied to the tree.",
		}, []string{"status"}),
		delayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builder_delayed_total",
			Help:      "Node messages delayed until their parent arrived.",
		}, []string{"thread"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builder_dropped_total",
			Help:      "Node messages that could not be applied.",
		}, []string{"reason"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
	}
	reg.MustRegister(
		p.stageDuration, p.stageErrors, p.treeNodes, p.pentagons, p.groups,
		p.builderNodes, p.delayed, p.dropped, p.cacheOps, p.cacheBytes,
	)
	return p
}

// WriteTextfile writes the current metric values in the text exposition
// format, for the node exporter textfile collector.
func (p *PrometheusHooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.gatherer)
}

func (p *PrometheusHooks) observe(stage string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (p *PrometheusHooks) OnLoadStart(context.Context, string) {}

func (p *PrometheusHooks) OnLoadComplete(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	p.observe("load", d, err)
	if err == nil {
		p.treeNodes.Set(float64(nodeCount))
	}
}

func (p *PrometheusHooks) OnLayoutStart(context.Context, int) {}

func (p *PrometheusHooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	p.observe("layout", d, err)
}

func (p *PrometheusHooks) OnCompareStart(context.Context) {}

func (p *PrometheusHooks) OnCompareComplete(_ context.Context, pentagons int, d time.Duration, err error) {
	p.observe("compare", d, err)
	if err == nil {
		p.pentagons.Set(float64(pentagons))
	}
}

func (p *PrometheusHooks) OnAnalyzeStart(context.Context, string) {}

func (p *PrometheusHooks) OnAnalyzeComplete(_ context.Context, mode string, groups int, d time.Duration, err error) {
	p.observe("analyze", d, err)
	if err == nil {
		p.groups.WithLabelValues(mode).Set(float64(groups))
	}
}

func (p *PrometheusHooks) OnNodeInserted(_ context.Context, status string) {
	p.builderNodes.WithLabelValues(status).Inc()
}

func (p *PrometheusHooks) OnNodeDelayed(_ context.Context, threadID int) {
	p.delayed.WithLabelValues(strconv.Itoa(threadID)).Inc()
}

func (p *PrometheusHooks) OnNodeDropped(_ context.Context, reason string) {
	p.dropped.WithLabelValues(reason).Inc()
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}
