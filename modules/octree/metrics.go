package octree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonLabel = "reason"
)

var (
	octreeBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "octree_build_latency",
		Help:    "The time to build an octree.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})

	octreeNodeCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octree_node_count",
		Help: "The number of nodes of the current octree.",
	})

	octreeDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octree_depth",
		Help: "The depth of the current octree.",
	})

	octreeEntityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "octree_entity_count",
		Help: "The number of entities the current octree was built with.",
	})

	octreeRebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "octree_rebuilds",
		Help: "The number of octree rebuilds.",
	}, []string{
		reasonLabel,
	})

	octreeQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_queries",
		Help: "The number of collision queries.",
	})

	octreeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_collisions",
		Help: "The number of colliders returned by collision queries.",
	})

	octreePurgedEntities = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octree_purged_entities",
		Help: "The number of disabled entity references dropped by collision queries.",
	})
)

func instrumentBuild(stats BuildStats) {
	octreeBuildLatency.Observe(stats.Duration.Seconds())
	octreeNodeCount.Set(float64(stats.Nodes))
	octreeDepth.Set(float64(stats.Depth))
	octreeEntityCount.Set(float64(stats.Entities))
}

func instrumentRebuild(reason RebuildReason) {
	octreeRebuilds.
		With(prometheus.Labels{reasonLabel: string(reason)}).
		Inc()
}

func instrumentQuery(colliders, purged int) {
	octreeQueries.Inc()
	octreeCollisions.Add(float64(colliders))
	octreePurgedEntities.Add(float64(purged))
}
