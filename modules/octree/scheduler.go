package octree

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// RebuildReason describes why a tree is rebuilt.
type RebuildReason string

const (
	ReasonNone     RebuildReason = ""
	ReasonInitial  RebuildReason = "initial"
	ReasonInterval RebuildReason = "interval"
	ReasonEscaped  RebuildReason = "escaped"
)

// Scheduler decides when the tree of an index is thrown away and rebuilt.
//
// A tree is rebuilt when there is none yet, when the focal entity left its
// root, or when Interval elapsed since the last rebuild.
type Scheduler struct {
	Interval time.Duration

	// Ignores the focal entity leaving the root.
	DisableEscape bool

	next time.Duration
}

// Evaluate returns the reason to rebuild the given tree at now, or
// ReasonNone when it can be kept. Focal can be nil.
func (s *Scheduler) Evaluate(now time.Duration, tree *Tree, focal *models.Entity) RebuildReason {
	switch {
	case tree == nil:
		return ReasonInitial

	case !s.DisableEscape && focal != nil && focal.Enabled() && !tree.Intersects(focal):
		return ReasonEscaped

	case now >= s.next:
		return ReasonInterval

	default:
		return ReasonNone
	}
}

// Schedule sets the next interval rebuild from a rebuild done at now.
func (s *Scheduler) Schedule(now time.Duration) {
	s.next = now + s.Interval
}

// Next returns the time of the next interval rebuild.
func (s *Scheduler) Next() time.Duration {
	return s.next
}

// FocalCenter returns the center of the next root: the focal entity position
// when there is an enabled one, else the center of the previous tree, else
// the origin.
func FocalCenter(focal *models.Entity, previous *Tree) mgl64.Vec3 {
	if focal != nil && focal.Enabled() {
		return focal.Position()
	}
	if previous != nil {
		return previous.Center()
	}
	return mgl64.Vec3{}
}
