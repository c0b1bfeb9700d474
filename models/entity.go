package models

import (
	"math"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ErrTypeInvalidEntity is the error type returned when an entity misses
	// the data required to take part in collision detection.
	ErrTypeInvalidEntity = "invalid_entity"
)

// EntityKind describes what an entity represents in the simulation.
type EntityKind uint8

const (
	KindAsteroid EntityKind = iota + 1
	KindPlayer
	KindShot
)

func (k EntityKind) String() string {
	switch k {
	case KindAsteroid:
		return "asteroid"
	case KindPlayer:
		return "player"
	case KindShot:
		return "shot"
	default:
		return "unknown"
	}
}

// Entity is a spherical object living in a world. Entities are compared by
// reference: two entities at the same position with the same radius are
// still different entities.
//
// An entity is owned by the simulation goroutine and is not safe for
// concurrent use.
type Entity struct {
	ID   uint32
	Kind EntityKind
	Name string

	// Asteroid size, from 1 (smallest) to 3.
	Size int

	// World time after which a shot is removed.
	ExpireAt time.Duration

	position mgl64.Vec3
	velocity mgl64.Vec3
	radius   float64
	enabled  bool
}

// NewEntity returns a disabled entity. Entities are enabled by the world
// they are spawned in.
func NewEntity(kind EntityKind, name string, position, velocity mgl64.Vec3, radius float64) *Entity {
	return &Entity{
		Kind:     kind,
		Name:     name,
		position: position,
		velocity: velocity,
		radius:   radius,
	}
}

// NewDetachedEntity returns an enabled entity with the given id that belongs
// to no world. It is meant for indexes built outside of the simulation.
func NewDetachedEntity(id uint32, kind EntityKind, name string, position, velocity mgl64.Vec3, radius float64) *Entity {
	e := NewEntity(kind, name, position, velocity, radius)
	e.ID = id
	e.enable()
	return e
}

func (e *Entity) Position() mgl64.Vec3 {
	return e.position
}

func (e *Entity) SetPosition(v mgl64.Vec3) {
	e.position = v
}

func (e *Entity) Velocity() mgl64.Vec3 {
	return e.velocity
}

func (e *Entity) SetVelocity(v mgl64.Vec3) {
	e.velocity = v
}

// Radius returns the collision radius.
func (e *Entity) Radius() float64 {
	return e.radius
}

func (e *Entity) Enabled() bool {
	return e.enabled
}

// Disable marks the entity as dead. Spatial structures that still reference
// it drop the reference the next time they look at it.
func (e *Entity) Disable() {
	e.enabled = false
}

func (e *Entity) enable() {
	e.enabled = true
}

// Integrate moves an enabled entity by its velocity over dt seconds.
func (e *Entity) Integrate(dt float64) {
	if !e.enabled {
		return
	}
	e.position = e.position.Add(e.velocity.Mul(dt))
}

// Validate reports whether the entity can take part in collision detection.
func (e *Entity) Validate() error {
	if e == nil {
		return errors.New("entity is nil").WithType(ErrTypeInvalidEntity)
	}

	if math.IsNaN(e.radius) || math.IsInf(e.radius, 0) || e.radius <= 0 {
		return errors.New("entity collision radius is not positive").
			WithType(ErrTypeInvalidEntity).
			WithTag("entity_id", e.ID).
			WithTag("radius", e.radius)
	}

	for _, v := range e.position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("entity position is not finite").
				WithType(ErrTypeInvalidEntity).
				WithTag("entity_id", e.ID).
				WithTag("position", e.position)
		}
	}
	return nil
}

// CheckCollision reports whether the bounding spheres of e and other
// overlap. The test compares the squared distance between both centers with
// the sum of the squared radii.
func (e *Entity) CheckCollision(other *Entity) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	if err := other.Validate(); err != nil {
		return false, err
	}

	d := e.position.Sub(other.position)
	return d.Dot(d) < e.radius*e.radius+other.radius*other.radius, nil
}
