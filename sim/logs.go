package sim

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/roidfield/roidfield/models"
)

var summaryKinds = []models.EntityKind{
	models.KindPlayer,
	models.KindAsteroid,
	models.KindShot,
}

// summary accumulates what happened between two summary logs.
type summary struct {
	mutex     sync.Mutex
	worldUUID string
	frames    int
	last      models.Frame
	entities  map[string]int
}

func (s *summary) record(w *models.World, f models.Frame) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.entities == nil {
		s.entities = make(map[string]int, len(summaryKinds))
	}

	s.worldUUID = w.UUID
	s.frames++
	s.last = f
	for _, k := range summaryKinds {
		s.entities[k.String()] = w.Count(k)
	}
}

func (s *Simulation) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(s.SummaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			s.logSummary()
		}
	}
}

func (s *Simulation) logSummary() {
	s.summary.mutex.Lock()
	defer s.summary.mutex.Unlock()

	if s.summary.frames == 0 {
		return
	}

	entry := logs.WithTag("world_uuid", s.summary.worldUUID).
		WithTag("time_interval", s.SummaryInterval).
		WithTag("frames", s.summary.frames).
		WithTag("frame", s.summary.last.Number).
		WithTag("world_time", s.summary.last.Now)

	for k, v := range s.summary.entities {
		entry = entry.WithTag(k+"_count", v)
	}
	s.summary.frames = 0

	entry.Info("simulation summary")
}
