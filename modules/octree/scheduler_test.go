package octree

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
	"github.com/stretchr/testify/require"
)

func TestSchedulerEvaluate(t *testing.T) {
	w := models.NewWorld()
	inside := spawnEntity(w, models.KindPlayer, mgl64.Vec3{1, 1, 1}, 0.05)
	outside := spawnEntity(w, models.KindPlayer, mgl64.Vec3{50, 0, 0}, 0.05)
	dead := spawnEntity(w, models.KindPlayer, mgl64.Vec3{50, 0, 0}, 0.05)
	w.Delete(dead)

	tree, _ := Build(mgl64.Vec3{}, nil, DefaultOptions())

	tests := []struct {
		name          string
		tree          *Tree
		focal         *models.Entity
		now           time.Duration
		disableEscape bool
		expected      RebuildReason
	}{
		{
			name:     "no tree",
			focal:    inside,
			expected: ReasonInitial,
		},
		{
			name:     "focal inside before the interval",
			tree:     tree,
			focal:    inside,
			now:      100 * time.Millisecond,
			expected: ReasonNone,
		},
		{
			name:     "focal inside after the interval",
			tree:     tree,
			focal:    inside,
			now:      250 * time.Millisecond,
			expected: ReasonInterval,
		},
		{
			name:     "focal escaped",
			tree:     tree,
			focal:    outside,
			now:      100 * time.Millisecond,
			expected: ReasonEscaped,
		},
		{
			name:          "focal escaped with escape disabled",
			tree:          tree,
			focal:         outside,
			now:           100 * time.Millisecond,
			disableEscape: true,
			expected:      ReasonNone,
		},
		{
			name:     "disabled focal",
			tree:     tree,
			focal:    dead,
			now:      100 * time.Millisecond,
			expected: ReasonNone,
		},
		{
			name:     "no focal",
			tree:     tree,
			now:      300 * time.Millisecond,
			expected: ReasonInterval,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := Scheduler{
				Interval:      250 * time.Millisecond,
				DisableEscape: test.disableEscape,
			}
			s.Schedule(0)
			require.Equal(t, 250*time.Millisecond, s.Next())

			reason := s.Evaluate(test.now, test.tree, test.focal)
			require.Equal(t, test.expected, reason)
		})
	}
}

func TestFocalCenter(t *testing.T) {
	w := models.NewWorld()
	player := spawnEntity(w, models.KindPlayer, mgl64.Vec3{3, 4, 5}, 0.05)
	dead := spawnEntity(w, models.KindPlayer, mgl64.Vec3{6, 7, 8}, 0.05)
	w.Delete(dead)

	previous, _ := Build(mgl64.Vec3{-1, -2, -3}, nil, DefaultOptions())

	require.Equal(t, mgl64.Vec3{3, 4, 5}, FocalCenter(player, previous))
	require.Equal(t, mgl64.Vec3{3, 4, 5}, FocalCenter(player, nil))
	require.Equal(t, mgl64.Vec3{-1, -2, -3}, FocalCenter(dead, previous))
	require.Equal(t, mgl64.Vec3{-1, -2, -3}, FocalCenter(nil, previous))
	require.Equal(t, mgl64.Vec3{}, FocalCenter(nil, nil))
}
