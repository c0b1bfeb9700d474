package asteroids

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/featureflag"
	"github.com/roidfield/roidfield/models"
	"github.com/roidfield/roidfield/modules/octree"
)

const (
	// ErrTypeIndexNotFound is the error type returned when the module runs
	// without a spatial index.
	ErrTypeIndexNotFound = "spatial_index_not_found"

	// ErrTypeInvalidConfig is the error type returned by Config.Validate.
	ErrTypeInvalidConfig = "invalid_asteroids_config"
)

// Config holds the gameplay constants.
type Config struct {
	// The number of asteroids at difficulty 1.
	BaseAsteroids int

	// Difficulty added each 100 points.
	DifficultyScaling float64

	// Distance range from the player where new asteroids appear.
	SpawnMinDistance float64
	SpawnMaxDistance float64

	// Asteroids farther from the player are deleted.
	DespawnDistance float64

	// Speed range of each velocity component of new asteroids.
	MinVelocity float64
	MaxVelocity float64

	Lives int

	// An extra life is earned each time the score crosses a multiple of
	// LifeScore.
	LifeScore int

	RespawnWait  time.Duration
	PlayerRadius float64
}

func DefaultConfig() Config {
	return Config{
		BaseAsteroids:     128,
		DifficultyScaling: 0.25,
		SpawnMinDistance:  5,
		SpawnMaxDistance:  20,
		DespawnDistance:   30,
		MinVelocity:       0.01,
		MaxVelocity:       0.5,
		Lives:             3,
		LifeScore:         1000,
		RespawnWait:       2 * time.Second,
		PlayerRadius:      0.05,
	}
}

func (c Config) Validate() error {
	switch {
	case c.BaseAsteroids < 0:
		return errors.New("base asteroids must not be negative").
			WithType(ErrTypeInvalidConfig).
			WithTag("base_asteroids", c.BaseAsteroids)

	case c.SpawnMinDistance < 0 || c.SpawnMaxDistance < c.SpawnMinDistance:
		return errors.New("invalid spawn distance range").
			WithType(ErrTypeInvalidConfig).
			WithTag("min", c.SpawnMinDistance).
			WithTag("max", c.SpawnMaxDistance)

	case c.MinVelocity < 0 || c.MaxVelocity < c.MinVelocity:
		return errors.New("invalid velocity range").
			WithType(ErrTypeInvalidConfig).
			WithTag("min", c.MinVelocity).
			WithTag("max", c.MaxVelocity)

	case !(c.PlayerRadius > 0):
		return errors.New("player radius must be positive").
			WithType(ErrTypeInvalidConfig).
			WithTag("player_radius", c.PlayerRadius)

	default:
		return nil
	}
}

// Module runs the asteroids game rules: player respawns, shot expiry,
// collisions, score and asteroid spawning.
type Module struct {
	Config       Config
	FeatureFlags featureflag.FeatureFlag

	// The index queried for collisions. The index of the octree module is
	// used when nil.
	Index octree.SpatialIndex

	// The random source for spawns. A randomly seeded one is used when nil.
	Rand *rand.Rand

	world    *models.World
	state    *State
	index    octree.SpatialIndex
	rand     *rand.Rand
	asteroid uint64
}

func (m *Module) Name() string {
	return "asteroids"
}

func (m *Module) Init(w *models.World) {
	m.world = w

	state, ok := w.ModuleState(m.Name())
	if !ok {
		state = newState(m.Config)
		w.SetModuleState(m.Name(), state)
	}
	m.state = state.(*State)
	instrumentScoreboard(m.state.Scoreboard())

	m.index = m.Index
	if m.index == nil {
		if s, ok := w.ModuleState("octree"); ok {
			m.index = s.(*octree.State).Index
		}
	}

	m.rand = m.Rand
	if m.rand == nil {
		m.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// State returns the game state shared with the other modules of the world.
func (m *Module) State() *State {
	return m.state
}

func (m *Module) HandleFrame(ctx context.Context, f models.Frame) error {
	if m.index == nil {
		return errors.New("spatial index not found").
			WithType(ErrTypeIndexNotFound).
			WithTag("world_uuid", m.world.UUID)
	}

	m.respawnPlayer(f)
	m.expireShots(f)
	m.despawnAsteroids()

	if !m.FeatureFlags.Enabled(featureflag.FlagDisablePlayerCollisions) {
		if err := m.handlePlayerCollisions(f); err != nil {
			return err
		}
	}

	if err := m.handleShotCollisions(f); err != nil {
		return err
	}

	m.spawnAsteroids()
	return nil
}

func (m *Module) HandlePostFrame(ctx context.Context, f models.Frame) error {
	instrumentScoreboard(m.state.Scoreboard())
	return nil
}

func (m *Module) respawnPlayer(f models.Frame) {
	if m.world.Player() != nil {
		return
	}

	position, ok := m.state.respawn(f.Now)
	if !ok {
		return
	}

	player := m.world.Spawn(models.NewEntity(
		models.KindPlayer,
		"player",
		position,
		mgl64.Vec3{},
		m.Config.PlayerRadius,
	))
	m.world.SetPlayer(player)

	logs.WithTag("world_uuid", m.world.UUID).
		WithTag("frame", f.Number).
		WithTag("position", position).
		WithTag("lives", m.state.Scoreboard().Lives).
		Info("player spawned")
}

func (m *Module) expireShots(f models.Frame) {
	for _, shot := range m.world.Collidables(models.KindShot) {
		if shot.ExpireAt <= f.Now {
			m.world.Delete(shot)
		}
	}
}

func (m *Module) despawnAsteroids() {
	player := m.world.Player()
	if player == nil || !player.Enabled() {
		return
	}

	for _, a := range m.world.Collidables(models.KindAsteroid) {
		if a.Position().Sub(player.Position()).Len() > m.Config.DespawnDistance {
			m.world.Delete(a)
			asteroidDespawns.Inc()
		}
	}
}

func (m *Module) handlePlayerCollisions(f models.Frame) error {
	player := m.world.Player()
	if player == nil || !player.Enabled() {
		return nil
	}

	colliders, err := m.index.CheckCollisions(player)
	if err != nil {
		return errors.New("checking player collisions failed").
			WithTag("entity_id", player.ID).
			Wrap(err)
	}
	if len(colliders) == 0 {
		return nil
	}

	lives := m.state.loseLife(f.Now, player.Position())
	m.world.Delete(player)
	playerDeaths.Inc()

	entry := logs.WithTag("world_uuid", m.world.UUID).
		WithTag("frame", f.Number).
		WithTag("asteroid_id", colliders[0].ID).
		WithTag("lives", lives)

	if lives == 0 {
		entry.Info("game over")
		return nil
	}
	entry.Info("player died")
	return nil
}

func (m *Module) handleShotCollisions(f models.Frame) error {
	for _, shot := range m.world.Collidables(models.KindShot) {
		if !shot.Enabled() {
			continue
		}

		colliders, err := m.index.CheckCollisions(shot)
		if err != nil {
			return errors.New("checking shot collisions failed").
				WithTag("entity_id", shot.ID).
				Wrap(err)
		}

		// Only the first asteroid hit by a shot is destroyed.
		if len(colliders) != 0 {
			m.destroyAsteroid(f, shot, colliders[0])
		}
	}
	return nil
}

func (m *Module) destroyAsteroid(f models.Frame, shot, asteroid *models.Entity) {
	var points int
	var splits []int

	switch asteroid.Size {
	case 1:
		points = 100

	case 2:
		points = 50
		splits = []int{1, 1}

	default:
		points = 20
		splits = []int{1 + m.rand.IntN(2), 1 + m.rand.IntN(2)}
	}

	if m.state.addKill(points) {
		logs.WithTag("world_uuid", m.world.UUID).
			WithTag("frame", f.Number).
			WithTag("score", m.state.Scoreboard().Score).
			Info("player earned an extra life")
	}

	if !m.FeatureFlags.Enabled(featureflag.FlagDisableAsteroidSplit) {
		for _, size := range splits {
			m.spawnAsteroid(size, asteroid.Position())
		}
	}

	m.world.Delete(shot)
	m.world.Delete(asteroid)
	instrumentHit(asteroid.Size)

	logs.WithTag("world_uuid", m.world.UUID).
		WithTag("frame", f.Number).
		WithTag("shot_id", shot.ID).
		WithTag("asteroid_id", asteroid.ID).
		WithTag("size", asteroid.Size).
		Debug("asteroid destroyed")
}

// spawnAsteroids tops up the asteroids around the player to the difficulty
// target.
func (m *Module) spawnAsteroids() {
	player := m.world.Player()
	if player == nil {
		return
	}

	missing := m.state.target() - m.world.Count(models.KindAsteroid)
	for range missing {
		m.spawnAsteroid(3, m.randomSpawnPosition(player.Position()))
	}
}

func (m *Module) spawnAsteroid(size int, position mgl64.Vec3) *models.Entity {
	m.asteroid++

	e := models.NewEntity(
		models.KindAsteroid,
		fmt.Sprintf("roid_%d", m.asteroid),
		position,
		m.randomVelocity(),
		float64(size)*0.8,
	)
	e.Size = size
	return m.world.Spawn(e)
}

// randomSpawnPosition returns a position at a random distance within the
// spawn range of center, in a random direction.
func (m *Module) randomSpawnPosition(center mgl64.Vec3) mgl64.Vec3 {
	distance := m.randRange(m.Config.SpawnMinDistance, m.Config.SpawnMaxDistance)

	rotation := mgl64.Rotate3DZ(m.randRange(0, 2*math.Pi)).
		Mul3(mgl64.Rotate3DY(m.randRange(0, 2*math.Pi))).
		Mul3(mgl64.Rotate3DX(m.randRange(0, 2*math.Pi)))

	return center.Add(rotation.Mul3x1(mgl64.Vec3{0, 0, distance}))
}

func (m *Module) randomVelocity() mgl64.Vec3 {
	var v mgl64.Vec3
	for i := range v {
		v[i] = m.randRange(m.Config.MinVelocity, m.Config.MaxVelocity)
		if m.rand.IntN(2) == 0 {
			v[i] = -v[i]
		}
	}
	return v
}

func (m *Module) randRange(lo, hi float64) float64 {
	return lo + m.rand.Float64()*(hi-lo)
}
