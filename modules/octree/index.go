package octree

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// Index is a SpatialIndex backed by an octree that is rebuilt wholesale.
//
// Each Initialize builds a brand new tree and swaps it in atomically.
// Callers that loaded the previous tree keep using it until they are done;
// nothing is shared between two trees.
type Index struct {
	opts         Options
	instrumented bool
	generations  atomic.Uint64
	current      atomic.Pointer[Tree]
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithMetrics makes the index report its builds and queries to the octree
// metrics. Only the index of the running simulation should use it.
func WithMetrics() IndexOption {
	return func(idx *Index) {
		idx.instrumented = true
	}
}

func NewIndex(opts Options, options ...IndexOption) *Index {
	idx := &Index{opts: opts}
	for _, o := range options {
		o(idx)
	}
	return idx
}

func (idx *Index) Options() Options {
	return idx.opts
}

// Initialize builds a tree from the entities and makes it the current one.
func (idx *Index) Initialize(center mgl64.Vec3, entities []*models.Entity) BuildStats {
	tree, stats := Build(center, entities, idx.opts)
	tree.generation = idx.generations.Add(1)
	tree.instrumented = idx.instrumented
	idx.current.Store(tree)

	if idx.instrumented {
		instrumentBuild(stats)
	}
	return stats
}

// Tree returns the current tree, or nil when Initialize was never called.
func (idx *Index) Tree() *Tree {
	return idx.current.Load()
}

func (idx *Index) CheckCollisions(probe *models.Entity) ([]*models.Entity, error) {
	tree := idx.current.Load()
	if tree == nil {
		return nil, probe.Validate()
	}
	return tree.CheckCollisions(probe)
}

func (idx *Index) Contains(e *models.Entity) bool {
	tree := idx.current.Load()
	return tree != nil && tree.Contains(e)
}

func (idx *Index) Intersects(e *models.Entity) bool {
	tree := idx.current.Load()
	return tree != nil && tree.Intersects(e)
}

func (idx *Index) DebugInfo() DebugInfo {
	tree := idx.current.Load()
	if tree == nil {
		return DebugInfo{Options: idx.opts}
	}
	return tree.DebugInfo()
}
