package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel = "kind"
)

var (
	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "entity_count",
		Help: "The number of live entities.",
	}, []string{kindLabel})

	entitySpawnTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entity_spawn_total",
		Help: "The total number of spawned entities.",
	}, []string{kindLabel})

	entityDeleteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "entity_delete_total",
		Help: "The total number of deleted entities.",
	}, []string{kindLabel})
)

func instrumentSpawn(kind EntityKind) {
	entityCount.
		With(prometheus.Labels{kindLabel: kind.String()}).
		Inc()
	entitySpawnTotal.
		With(prometheus.Labels{kindLabel: kind.String()}).
		Inc()
}

func instrumentDelete(kind EntityKind) {
	entityCount.
		With(prometheus.Labels{kindLabel: kind.String()}).
		Dec()
	entityDeleteTotal.
		With(prometheus.Labels{kindLabel: kind.String()}).
		Inc()
}
