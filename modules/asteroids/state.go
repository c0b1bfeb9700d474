package asteroids

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Scoreboard is a snapshot of the game progress.
type Scoreboard struct {
	Score      int     `json:"score"`
	Lives      int     `json:"lives"`
	Difficulty float64 `json:"difficulty"`
	Target     int     `json:"target"`
	Kills      int     `json:"kills"`
	Deaths     int     `json:"deaths"`
	GameOver   bool    `json:"game_over"`
}

type State struct {
	mutex           sync.RWMutex
	config          Config
	board           Scoreboard
	respawnAt       time.Duration
	respawnPosition mgl64.Vec3
}

func newState(cfg Config) *State {
	s := &State{
		config: cfg,
		board: Scoreboard{
			Lives: cfg.Lives,
		},
	}
	s.updateDifficulty()
	return s
}

func (s *State) Scoreboard() Scoreboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.board
}

// addKill scores a destroyed asteroid and reports whether it earned an extra
// life.
func (s *State) addKill(points int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	before := s.board.Score
	s.board.Score += points
	s.board.Kills++
	s.updateDifficulty()

	if s.config.LifeScore <= 0 || s.board.Score/s.config.LifeScore <= before/s.config.LifeScore {
		return false
	}
	s.board.Lives++
	return true
}

func (s *State) updateDifficulty() {
	s.board.Difficulty = 1 + math.Floor(float64(s.board.Score)/100)*s.config.DifficultyScaling
	s.board.Target = int(math.Floor(float64(s.config.BaseAsteroids) * s.board.Difficulty))
}

// loseLife records the player death at the given position and returns the
// lives left.
func (s *State) loseLife(now time.Duration, position mgl64.Vec3) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.board.Lives--
	s.board.Deaths++
	if s.board.Lives <= 0 {
		s.board.Lives = 0
		s.board.GameOver = true
		return 0
	}

	s.respawnAt = now + s.config.RespawnWait
	s.respawnPosition = position
	return s.board.Lives
}

// respawn returns where the player respawns when it is due at now.
func (s *State) respawn(now time.Duration) (mgl64.Vec3, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.board.Lives <= 0 || now < s.respawnAt {
		return mgl64.Vec3{}, false
	}
	return s.respawnPosition, true
}

func (s *State) target() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.board.Target
}
