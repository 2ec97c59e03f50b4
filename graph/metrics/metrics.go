// Package metrics provides Prometheus collectors for NodeTree execution,
// wired to the graph package's Metrics interface.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records node execution timing and execute-list bookkeeping
// under the "nodegraph" namespace. It implements graph.Metrics.
type Collector struct {
	nodeExecMS *prometheus.HistogramVec
	executeList prometheus.Gauge
	taggedCounter prometheus.Counter

	mu sync.RWMutex
	enabled bool
}

// New creates and registers the collector's metrics with registry. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for test isolation.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Collector{
		enabled: true,
		nodeExecMS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nodegraph",
			Name: "node_execution_ms",
			Help: "Per-node Execute duration in milliseconds, labeled by node type",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"node_type"}),
		executeList: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nodegraph",
			Name: "execute_list_size",
			Help: "Number of nodes in the most recently prepared execute-list",
		}),
		taggedCounter: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nodegraph",
			Name: "tagged_nodes_total",
			Help: "Cumulative count of nodes entered into an execute-list across runs",
		}),
	}
}

// ObserveNodeExecution records one node's Execute duration.
func (c *Collector) ObserveNodeExecution(nodeType string, ms float64) {
	if !c.isEnabled() {
		return
	}
	c.nodeExecMS.WithLabelValues(nodeType).Observe(ms)
}

// ObserveExecuteListSize records the size of the freshly prepared
// execute-list.
func (c *Collector) ObserveExecuteListSize(n int) {
	if !c.isEnabled() {
		return
	}
	c.executeList.Set(float64(n))
}

// IncTaggedNodes adds n to the cumulative tagged-node counter.
func (c *Collector) IncTaggedNodes(n int) {
	if !c.isEnabled() || n <= 0 {
		return
	}
	c.taggedCounter.Add(float64(n))
}

func (c *Collector) isEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Disable stops recording without unregistering the collectors (useful in
// tests that want to assert on a clean metric surface).
func (c *Collector) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Enable re-enables recording after Disable.
func (c *Collector) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}
