package octree

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// ScanIndex is a SpatialIndex that tests a probe against every indexed
// entity. It answers like an octree Index built with the same options and is
// used as a reference to check octree results.
type ScanIndex struct {
	RootRadius float64

	mutex    sync.Mutex
	bounds   Bounds
	center   mgl64.Vec3
	entities []*models.Entity
	built    bool
}

func (s *ScanIndex) Initialize(center mgl64.Vec3, entities []*models.Entity) BuildStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.center = center
	s.bounds = CubeBounds(center, s.RootRadius)
	s.entities = make([]*models.Entity, len(entities))
	copy(s.entities, entities)
	s.built = true

	return BuildStats{
		Entities: len(entities),
		Nodes:    1,
		Leaves:   1,
	}
}

func (s *ScanIndex) CheckCollisions(probe *models.Entity) ([]*models.Entity, error) {
	if err := probe.Validate(); err != nil {
		return nil, err
	}
	if !probe.Enabled() {
		return nil, nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	var colliders []*models.Entity
	for _, e := range s.entities {
		if !e.Enabled() || e == probe {
			continue
		}

		hit, err := probe.CheckCollision(e)
		if err != nil {
			return nil, err
		}
		if hit {
			colliders = append(colliders, e)
		}
	}
	return colliders, nil
}

func (s *ScanIndex) Contains(e *models.Entity) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.built && e != nil && e.Enabled() && s.bounds.Contains(EntityBounds(e))
}

func (s *ScanIndex) Intersects(e *models.Entity) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.built && e != nil && e.Enabled() && s.bounds.Overlaps(EntityBounds(e))
}

func (s *ScanIndex) DebugInfo() DebugInfo {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	info := DebugInfo{
		Options: Options{RootRadius: s.RootRadius},
	}
	if !s.built {
		return info
	}

	ids := make([]uint32, 0, len(s.entities))
	for _, e := range s.entities {
		if e.Enabled() {
			ids = append(ids, e.ID)
		}
	}

	info.Stats = BuildStats{
		Entities: len(s.entities),
		Nodes:    1,
		Leaves:   1,
	}
	info.Nodes = []DebugNode{{
		Center:    s.center,
		Radius:    s.RootRadius,
		EntityIDs: ids,
	}}
	return info
}
