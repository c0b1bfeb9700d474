package octree

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/roidfield/roidfield/models"
)

const (
	// ErrTypeInvalidOptions is the error type returned when octree options
	// cannot produce a tree.
	ErrTypeInvalidOptions = "invalid_octree_options"
)

// Options configure how trees are built. They are fixed for the lifetime of
// an index.
type Options struct {
	// The half-width of the root node.
	RootRadius float64 `json:"root_radius"`

	// Nodes holding this many entities or fewer are not subdivided.
	MinObjects int `json:"min_objects"`

	// Nodes with a radius smaller or equal to this are not subdivided.
	MinRadius float64 `json:"min_radius"`
}

func DefaultOptions() Options {
	return Options{
		RootRadius: 32,
		MinObjects: 1,
		MinRadius:  0.1,
	}
}

func (o Options) Validate() error {
	if !(o.RootRadius > 0) {
		return errors.New("root radius must be positive").
			WithType(ErrTypeInvalidOptions).
			WithTag("root_radius", o.RootRadius)
	}
	if !(o.MinRadius > 0) {
		return errors.New("min radius must be positive").
			WithType(ErrTypeInvalidOptions).
			WithTag("min_radius", o.MinRadius)
	}
	if o.MinObjects < 0 {
		return errors.New("min objects must not be negative").
			WithType(ErrTypeInvalidOptions).
			WithTag("min_objects", o.MinObjects)
	}
	return nil
}

// BuildStats describes a built tree.
type BuildStats struct {
	Entities int           `json:"entities"`
	Nodes    int           `json:"nodes"`
	Leaves   int           `json:"leaves"`
	Depth    int           `json:"depth"`
	Duration time.Duration `json:"duration"`
}

// subdivide recursively distributes the node entities into child octants.
//
// Each entity goes to the first octant, in canonical order, that fully
// contains it. Entities that fit no single octant stay in the node. A branch
// stops when it holds MinObjects entities or fewer, or when its radius is
// MinRadius or smaller.
func (n *Node) subdivide(opts Options, stats *BuildStats) {
	stats.Nodes++
	if n.depth > stats.Depth {
		stats.Depth = n.depth
	}

	if len(n.entities) <= opts.MinObjects || n.radius <= opts.MinRadius {
		stats.Leaves++
		return
	}

	half := n.radius / 2
	centers := octantCenters(n.center, n.radius)

	var octants [8]Bounds
	for i, c := range centers {
		octants[i] = CubeBounds(c, half)
	}

	var assigned [8][]*models.Entity
	kept := n.entities[:0]
	for _, e := range n.entities {
		octant := -1
		if e.Enabled() {
			b := EntityBounds(e)
			for i := range octants {
				if octants[i].Contains(b) {
					octant = i
					break
				}
			}
		}

		if octant < 0 {
			kept = append(kept, e)
			continue
		}
		assigned[octant] = append(assigned[octant], e)
	}
	clear(n.entities[len(kept):])
	n.entities = kept

	for i, entities := range assigned {
		if len(entities) == 0 {
			continue
		}
		c := newNode(centers[i], half, n.depth+1, entities)
		c.mutex = n.mutex
		n.children = append(n.children, c)
	}

	if len(n.children) == 0 {
		stats.Leaves++
		return
	}

	for _, c := range n.children {
		c.subdivide(opts, stats)
	}
}
