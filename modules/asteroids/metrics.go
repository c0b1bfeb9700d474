package asteroids

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sizeLabel = "size"
)

var (
	scoreGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asteroids_score",
		Help: "The current score.",
	})

	livesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asteroids_lives",
		Help: "The lives the player has left.",
	})

	asteroidTargetGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asteroids_target",
		Help: "The number of asteroids the field is topped up to.",
	})

	asteroidHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asteroids_hits",
		Help: "The number of asteroids destroyed by shots.",
	}, []string{
		sizeLabel,
	})

	playerDeaths = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asteroids_player_deaths",
		Help: "The number of times the player collided with an asteroid.",
	})

	asteroidDespawns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asteroids_despawns",
		Help: "The number of asteroids deleted for being too far from the player.",
	})
)

func instrumentScoreboard(b Scoreboard) {
	scoreGauge.Set(float64(b.Score))
	livesGauge.Set(float64(b.Lives))
	asteroidTargetGauge.Set(float64(b.Target))
}

func instrumentHit(size int) {
	asteroidHits.
		With(prometheus.Labels{sizeLabel: sizeName(size)}).
		Inc()
}

func sizeName(size int) string {
	switch size {
	case 1:
		return "small"
	case 2:
		return "medium"
	default:
		return "large"
	}
}
