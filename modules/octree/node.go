package octree

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// Node is a cubic cell of an octree. A node exclusively owns its children
// and the entities that did not fit entirely within a single child.
type Node struct {
	center mgl64.Vec3
	radius float64
	bounds Bounds
	depth  int

	// One child per octant that received at least one entity, in canonical
	// octant order.
	children []*Node

	// Entities directly held by this node, guarded by the tree mutex.
	mutex    *sync.Mutex
	entities []*models.Entity
}

// newNode returns a node that takes ownership of the given entities. Its
// bounds are computed once from center and radius.
func newNode(center mgl64.Vec3, radius float64, depth int, entities []*models.Entity) *Node {
	return &Node{
		center:   center,
		radius:   radius,
		bounds:   CubeBounds(center, radius),
		depth:    depth,
		entities: entities,
	}
}

func (n *Node) Center() mgl64.Vec3 {
	return n.center
}

// Radius returns the half-width of the node cube.
func (n *Node) Radius() float64 {
	return n.radius
}

func (n *Node) Bounds() Bounds {
	return n.bounds
}

func (n *Node) Min() mgl64.Vec3 {
	return n.bounds.Min
}

func (n *Node) Max() mgl64.Vec3 {
	return n.bounds.Max
}

// Depth returns the distance to the root, which has depth 0.
func (n *Node) Depth() int {
	return n.depth
}

func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Children returns a copy of the node children.
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// Entities returns a copy of the entities directly held by the node.
func (n *Node) Entities() []*models.Entity {
	if n.mutex != nil {
		n.mutex.Lock()
		defer n.mutex.Unlock()
	}

	entities := make([]*models.Entity, len(n.entities))
	copy(entities, n.entities)
	return entities
}

// Contains reports whether the entity bounding sphere fits entirely within
// the node. Disabled entities are never contained.
func (n *Node) Contains(e *models.Entity) bool {
	if e == nil || !e.Enabled() {
		return false
	}
	return n.bounds.Contains(EntityBounds(e))
}

// Intersects reports whether the entity bounding sphere overlaps the node,
// even a little bit. Disabled entities never intersect.
func (n *Node) Intersects(e *models.Entity) bool {
	if e == nil || !e.Enabled() {
		return false
	}
	return n.bounds.Overlaps(EntityBounds(e))
}

// walk visits n and its descendants depth-first, children in canonical
// octant order. Returning false from fn skips the node descendants.
func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.walk(fn)
	}
}
