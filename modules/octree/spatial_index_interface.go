package octree

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// SpatialIndex answers which entities a probe currently overlaps.
type SpatialIndex interface {
	// Replaces the indexed entities with the given snapshot, centered on
	// center.
	Initialize(center mgl64.Vec3, entities []*models.Entity) BuildStats

	// Returns the indexed entities whose bounding sphere overlaps the probe.
	CheckCollisions(probe *models.Entity) ([]*models.Entity, error)

	// Reports whether the entity fits entirely within the indexed volume.
	Contains(e *models.Entity) bool

	// Reports whether the entity overlaps the indexed volume.
	Intersects(e *models.Entity) bool

	// debug stuff:
	DebugInfo() DebugInfo
}
