package models

import (
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
)

// Frame describes one simulation tick.
type Frame struct {
	Number uint64

	// World time of the frame, once advanced by Delta.
	Now time.Duration

	// Time elapsed since the previous frame.
	Delta time.Duration
}

// World is the registry of the entities taking part in a simulation.
//
// Spawns and deletions are queued and applied together by ApplyPending, so
// the set of live entities never changes in the middle of a frame. A world
// is driven by a single goroutine; only module states are safe for
// concurrent use.
type World struct {
	UUID string

	now time.Duration

	entityIDs     SequentialIDGenerator
	entities      []*Entity
	entityIndex   map[uint32]*Entity
	pendingSpawn  []*Entity
	pendingDelete []*Entity
	deleting      map[*Entity]struct{}

	player *Entity

	moduleStates map[string]any
	moduleMutex  sync.RWMutex
}

func NewWorld() *World {
	return &World{
		UUID:         uuid.NewString(),
		entityIndex:  make(map[uint32]*Entity),
		deleting:     make(map[*Entity]struct{}),
		moduleStates: make(map[string]any),
	}
}

// Now returns the world time.
func (w *World) Now() time.Duration {
	return w.now
}

// Advance moves the world time forward.
func (w *World) Advance(d time.Duration) {
	w.now += d
}

// Integrate moves every enabled entity by its velocity over d.
func (w *World) Integrate(d time.Duration) {
	dt := d.Seconds()
	for _, e := range w.entities {
		e.Integrate(dt)
	}
}

// Spawn assigns an id to the entity and queues it. The entity is enabled and
// becomes visible through the world on the next ApplyPending.
func (w *World) Spawn(e *Entity) *Entity {
	e.ID = w.entityIDs.New()
	w.pendingSpawn = append(w.pendingSpawn, e)
	return e
}

// Delete disables the entity right away and queues its removal.
func (w *World) Delete(e *Entity) {
	if _, ok := w.deleting[e]; ok {
		logs.WithTag("entity_id", e.ID).
			WithTag("entity_name", e.Name).
			Warn("entity already queued for delete")
		return
	}

	e.Disable()
	w.deleting[e] = struct{}{}
	w.pendingDelete = append(w.pendingDelete, e)

	if e == w.player {
		w.player = nil
	}
}

// ApplyPending enables queued spawns and removes queued deletions.
func (w *World) ApplyPending() {
	for _, e := range w.pendingSpawn {
		if _, ok := w.deleting[e]; ok {
			w.entityIDs.Reuse(e.ID)
			continue
		}

		e.enable()
		w.entities = append(w.entities, e)
		w.entityIndex[e.ID] = e
		instrumentSpawn(e.Kind)
	}
	clear(w.pendingSpawn)
	w.pendingSpawn = w.pendingSpawn[:0]

	if len(w.pendingDelete) == 0 {
		return
	}

	live := w.entities[:0]
	for _, e := range w.entities {
		if _, ok := w.deleting[e]; !ok {
			live = append(live, e)
		}
	}
	clear(w.entities[len(live):])
	w.entities = live

	for _, e := range w.pendingDelete {
		if w.entityIndex[e.ID] != e {
			continue
		}
		delete(w.entityIndex, e.ID)
		w.entityIDs.Reuse(e.ID)
		instrumentDelete(e.Kind)
	}
	clear(w.pendingDelete)
	w.pendingDelete = w.pendingDelete[:0]
	clear(w.deleting)
}

func (w *World) EntityByID(id uint32) (*Entity, bool) {
	e, ok := w.entityIndex[id]
	return e, ok
}

// Entities returns the live entities in spawn order.
func (w *World) Entities() []*Entity {
	entities := make([]*Entity, len(w.entities))
	copy(entities, w.entities)
	return entities
}

// Collidables returns a snapshot of the enabled entities of the given kind,
// in spawn order.
func (w *World) Collidables(kind EntityKind) []*Entity {
	var entities []*Entity
	for _, e := range w.entities {
		if e.Kind == kind && e.Enabled() {
			entities = append(entities, e)
		}
	}
	return entities
}

// Count returns the number of live and queued entities of the given kind
// that are not being deleted.
func (w *World) Count(kind EntityKind) int {
	count := 0
	for _, e := range w.entities {
		if _, ok := w.deleting[e]; !ok && e.Kind == kind {
			count++
		}
	}
	for _, e := range w.pendingSpawn {
		if _, ok := w.deleting[e]; !ok && e.Kind == kind {
			count++
		}
	}
	return count
}

// Player returns the controlled player, or nil when there is none.
func (w *World) Player() *Entity {
	return w.player
}

// SetPlayer sets the controlled player. Deleting the player clears it.
func (w *World) SetPlayer(e *Entity) {
	w.player = e
}

func (w *World) SetModuleState(moduleName string, state any) {
	w.moduleMutex.Lock()
	defer w.moduleMutex.Unlock()

	w.moduleStates[moduleName] = state
}

func (w *World) ModuleState(moduleName string) (any, bool) {
	w.moduleMutex.RLock()
	defer w.moduleMutex.RUnlock()

	state, ok := w.moduleStates[moduleName]
	return state, ok
}
