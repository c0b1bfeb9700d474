package pilot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
)

// Config describes how the player is flown.
type Config struct {
	// Player cruise speed, in units per second.
	Speed float64

	// Heading rotation around the vertical axis, in radians per second.
	TurnRate float64

	// Maximum heading pitch, in radians.
	PitchAmplitude float64

	// Shots fired per second. Zero disables shooting.
	FireRate float64

	ShotSpeed    float64
	ShotRadius   float64
	ShotLifetime time.Duration

	// Distance in front of the player where shots appear.
	ShotOffset float64
}

func DefaultConfig() Config {
	return Config{
		Speed:          2,
		TurnRate:       0.3,
		PitchAmplitude: 0.4,
		FireRate:       7,
		ShotSpeed:      12,
		ShotRadius:     0.05,
		ShotLifetime:   3 * time.Second,
		ShotOffset:     0.25,
	}
}

// Module flies the world player along a slowly turning heading and fires
// shots straight ahead.
type Module struct {
	Config Config

	world    *models.World
	yaw      float64
	nextShot time.Duration
	shots    uint64
}

func (m *Module) Name() string {
	return "pilot"
}

func (m *Module) Init(w *models.World) {
	m.world = w
}

// Heading returns the unit vector the player flies along.
func (m *Module) Heading() mgl64.Vec3 {
	pitch := m.Config.PitchAmplitude * math.Sin(m.yaw/2)

	return mgl64.Rotate3DY(m.yaw).
		Mul3(mgl64.Rotate3DX(pitch)).
		Mul3x1(mgl64.Vec3{0, 0, 1})
}

// Shots returns the number of shots fired.
func (m *Module) Shots() uint64 {
	return m.shots
}

func (m *Module) HandleFrame(ctx context.Context, f models.Frame) error {
	player := m.world.Player()
	if player == nil || !player.Enabled() {
		return nil
	}

	m.yaw = math.Mod(m.yaw+m.Config.TurnRate*f.Delta.Seconds(), 4*math.Pi)
	heading := m.Heading()
	player.SetVelocity(heading.Mul(m.Config.Speed))

	if m.Config.FireRate <= 0 || f.Now < m.nextShot {
		return nil
	}
	m.nextShot = f.Now + time.Duration(float64(time.Second)/m.Config.FireRate)
	m.fire(f, player, heading)
	return nil
}

func (m *Module) HandlePostFrame(ctx context.Context, f models.Frame) error {
	return nil
}

func (m *Module) fire(f models.Frame, player *models.Entity, heading mgl64.Vec3) {
	m.shots++

	shot := models.NewEntity(
		models.KindShot,
		fmt.Sprintf("shot_%d", m.shots),
		player.Position().Add(heading.Mul(m.Config.ShotOffset)),
		heading.Mul(m.Config.ShotSpeed).Add(player.Velocity()),
		m.Config.ShotRadius,
	)
	shot.ExpireAt = f.Now + m.Config.ShotLifetime
	m.world.Spawn(shot)
}
