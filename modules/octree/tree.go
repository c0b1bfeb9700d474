package octree

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// Tree is an octree built once from an entity snapshot. Its shape never
// changes after the build; only disabled entity references are dropped by
// queries.
type Tree struct {
	opts       Options
	stats      BuildStats
	generation uint64

	// Reports queries to the octree metrics.
	instrumented bool

	// Guards node entity lists, which queries filter in place.
	mutex sync.Mutex
	root  *Node
}

// Build returns a tree rooted at center that holds the given entities. The
// entity slice is copied and can be reused by the caller.
func Build(center mgl64.Vec3, entities []*models.Entity, opts Options) (*Tree, BuildStats) {
	start := time.Now()

	snapshot := make([]*models.Entity, len(entities))
	copy(snapshot, entities)

	t := &Tree{opts: opts}

	stats := BuildStats{Entities: len(snapshot)}
	t.root = newNode(center, opts.RootRadius, 0, snapshot)
	t.root.mutex = &t.mutex
	t.root.subdivide(opts, &stats)
	stats.Duration = time.Since(start)

	t.stats = stats
	return t, stats
}

func (t *Tree) Options() Options {
	return t.opts
}

// Stats returns the statistics collected when the tree was built.
func (t *Tree) Stats() BuildStats {
	return t.stats
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

func (t *Tree) Center() mgl64.Vec3 {
	return t.root.center
}

// Contains reports whether the entity fits entirely within the root.
func (t *Tree) Contains(e *models.Entity) bool {
	return t.root.Contains(e)
}

// Intersects reports whether the entity overlaps the root.
func (t *Tree) Intersects(e *models.Entity) bool {
	return t.root.Intersects(e)
}

// CheckCollisions returns the entities whose bounding sphere overlaps the
// probe one. The probe itself is never returned. An invalid probe is a
// programming error and is returned as an error of type
// models.ErrTypeInvalidEntity.
func (t *Tree) CheckCollisions(probe *models.Entity) ([]*models.Entity, error) {
	if err := probe.Validate(); err != nil {
		return nil, err
	}
	if !probe.Enabled() {
		return nil, nil
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	var purged int
	colliders, err := t.root.checkCollisions(probe, nil, &purged)
	if t.instrumented {
		instrumentQuery(len(colliders), purged)
	}
	if err != nil {
		return nil, err
	}
	return colliders, nil
}

// Walk visits every node depth-first, children in canonical octant order.
// Returning false from fn skips the node descendants.
// No lock is held while fn runs, so fn can query the tree.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.root.walk(fn)
}
