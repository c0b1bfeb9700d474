package octree

import (
	"slices"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/roidfield/roidfield/models"
	"github.com/stretchr/testify/require"
)

func setupTestLogger(t *testing.T) {
	logs.SetLogger(func(e logs.Entry) {
		t.Log(e)
	})
}

type sphere struct {
	position mgl64.Vec3
	radius   float64
}

// spawnEntities spawns enabled entities of the given kind in w.
func spawnEntities(w *models.World, kind models.EntityKind, spheres ...sphere) []*models.Entity {
	entities := make([]*models.Entity, 0, len(spheres))
	for _, s := range spheres {
		e := models.NewEntity(kind, kind.String(), s.position, mgl64.Vec3{}, s.radius)
		entities = append(entities, w.Spawn(e))
	}
	w.ApplyPending()
	return entities
}

func spawnEntity(w *models.World, kind models.EntityKind, position mgl64.Vec3, radius float64) *models.Entity {
	return spawnEntities(w, kind, sphere{position: position, radius: radius})[0]
}

// nodeOf returns the node that directly holds the entity, or nil.
func nodeOf(tree *Tree, e *models.Entity) *Node {
	var holder *Node
	tree.Walk(func(n *Node) bool {
		for _, held := range n.entities {
			if held == e {
				holder = n
			}
		}
		return holder == nil
	})
	return holder
}

// fitsAnyOctant reports whether the entity bounding box fits entirely
// within one of the octants of n.
func fitsAnyOctant(n *Node, e *models.Entity) bool {
	for _, c := range octantCenters(n.center, n.radius) {
		if CubeBounds(c, n.radius/2).Contains(EntityBounds(e)) {
			return true
		}
	}
	return false
}

// gatherMetrics returns the value of the named metrics from the default
// registry, summed over labels. Histograms report their sample count.
func gatherMetrics(t *testing.T, names ...string) map[string]float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	values := make(map[string]float64, len(names))
	for _, f := range families {
		if !slices.Contains(names, f.GetName()) {
			continue
		}

		for _, m := range f.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				values[f.GetName()] += m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				values[f.GetName()] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				values[f.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}
