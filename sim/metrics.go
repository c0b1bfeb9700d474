package sim

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	moduleLabel  = "module"
	stageLabel   = "stage"
	errTypeLabel = "error_type"

	stageFrame     = "frame"
	stagePostFrame = "post_frame"
)

var (
	simFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_frames",
		Help: "The number of simulated frames.",
	})

	simFrameLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_frame_latency",
		Help:    "The time to simulate a frame.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	simModuleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "sim_module_latency",
		Help: "The time a module takes to handle a frame.",
	}, []string{
		moduleLabel,
		stageLabel,
	})

	simModuleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_module_errors",
		Help: "The errors returned by modules while handling frames.",
	}, []string{
		moduleLabel,
		stageLabel,
		errTypeLabel,
	})
)

func instrumentFrame(d time.Duration) {
	simFrames.Inc()
	simFrameLatency.Observe(d.Seconds())
}

func measureModuleLatency(module, stage string, f func() error) error {
	start := time.Now()

	err := f()
	if err != nil {
		simModuleErrors.With(prometheus.Labels{
			moduleLabel:  module,
			stageLabel:   stage,
			errTypeLabel: errors.Type(err),
		}).Inc()
		return err
	}

	simModuleLatency.With(prometheus.Labels{
		moduleLabel: module,
		stageLabel:  stage,
	}).Observe(time.Since(start).Seconds())
	return nil
}
