package octree

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/roidfield/roidfield/featureflag"
	"github.com/roidfield/roidfield/models"
)

// State is the octree state shared with the other modules of a world.
type State struct {
	Index *Index
}

// Module keeps an octree of the world asteroids up to date. Trees are
// rebuilt after spawns and deletions are applied, so queries made during a
// frame run against the tree built at a previous frame.
type Module struct {
	// The index to rebuild. A new one reporting to the octree metrics is
	// created from Options when nil.
	Index *Index

	Options         Options
	RebuildInterval time.Duration
	FeatureFlags    featureflag.FeatureFlag

	world     *models.World
	state     *State
	scheduler Scheduler
}

func (m *Module) Name() string {
	return "octree"
}

func (m *Module) Init(w *models.World) {
	m.world = w

	state, ok := w.ModuleState(m.Name())
	if !ok {
		idx := m.Index
		if idx == nil {
			idx = NewIndex(m.Options, WithMetrics())
		}

		state = &State{Index: idx}
		w.SetModuleState(m.Name(), state)
	}
	m.state = state.(*State)

	m.scheduler = Scheduler{
		Interval:      m.RebuildInterval,
		DisableEscape: m.FeatureFlags.Enabled(featureflag.FlagDisableEscapeRebuild),
	}
}

// SpatialIndex returns the index maintained by the module.
func (m *Module) SpatialIndex() *Index {
	return m.state.Index
}

func (m *Module) HandleFrame(ctx context.Context, f models.Frame) error {
	return nil
}

func (m *Module) HandlePostFrame(ctx context.Context, f models.Frame) error {
	idx := m.state.Index
	previous := idx.Tree()
	player := m.world.Player()

	reason := m.scheduler.Evaluate(f.Now, previous, player)
	if reason == ReasonNone {
		return nil
	}

	center := FocalCenter(player, previous)
	stats := idx.Initialize(center, m.world.Collidables(models.KindAsteroid))
	m.scheduler.Schedule(f.Now)
	instrumentRebuild(reason)

	entry := logs.WithTag("world_uuid", m.world.UUID).
		WithTag("frame", f.Number).
		WithTag("reason", reason).
		WithTag("center", center).
		WithTag("stats", stats)

	if reason == ReasonEscaped {
		entry.Info("player escaped the octree")
		return nil
	}
	entry.Debug("octree rebuilt")
	return nil
}
