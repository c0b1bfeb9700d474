package octree

import (
	"github.com/go-gl/mathgl/mgl64"
)

// DebugNode describes a tree node for visualization. EntityIDs only lists
// enabled entities: the ids of deleted ones can already belong to new
// entities.
type DebugNode struct {
	Center    mgl64.Vec3 `json:"center"`
	Radius    float64    `json:"radius"`
	Depth     int        `json:"depth"`
	Children  int        `json:"children"`
	EntityIDs []uint32   `json:"entity_ids,omitempty"`
}

// DebugInfo describes a whole tree. Nodes are listed depth-first, children
// in canonical octant order.
type DebugInfo struct {
	Generation uint64      `json:"generation"`
	Options    Options     `json:"options"`
	Stats      BuildStats  `json:"stats"`
	Nodes      []DebugNode `json:"nodes"`
}

// Generation returns the build number of the tree within its index, starting
// at 1. Trees built outside of an index have generation 0.
func (t *Tree) Generation() uint64 {
	return t.generation
}

func (t *Tree) DebugInfo() DebugInfo {
	info := DebugInfo{
		Generation: t.generation,
		Options:    t.opts,
		Stats:      t.stats,
		Nodes:      make([]DebugNode, 0, t.stats.Nodes),
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.root.walk(func(n *Node) bool {
		var ids []uint32
		for _, e := range n.entities {
			if e.Enabled() {
				ids = append(ids, e.ID)
			}
		}

		info.Nodes = append(info.Nodes, DebugNode{
			Center:    n.center,
			Radius:    n.radius,
			Depth:     n.depth,
			Children:  len(n.children),
			EntityIDs: ids,
		})
		return true
	})
	return info
}
