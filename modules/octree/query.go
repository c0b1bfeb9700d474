package octree

import (
	"github.com/roidfield/roidfield/models"
)

// checkCollisions appends to colliders every entity of the node and of its
// intersecting descendants whose bounding sphere overlaps the probe.
//
// Disabled entities met on the way are dropped from the node they are held
// by. The tree shape never changes.
func (n *Node) checkCollisions(probe *models.Entity, colliders []*models.Entity, purged *int) ([]*models.Entity, error) {
	kept := n.entities[:0]
	var err error
	for _, e := range n.entities {
		if e == nil || !e.Enabled() {
			*purged++
			continue
		}
		kept = append(kept, e)

		if err != nil || e == probe {
			continue
		}

		var hit bool
		if hit, err = probe.CheckCollision(e); hit {
			colliders = append(colliders, e)
		}
	}
	clear(n.entities[len(kept):])
	n.entities = kept

	if err != nil {
		return colliders, err
	}

	for _, c := range n.children {
		if !c.Intersects(probe) {
			continue
		}

		if colliders, err = c.checkCollisions(probe, colliders, purged); err != nil {
			return colliders, err
		}
	}
	return colliders, nil
}
