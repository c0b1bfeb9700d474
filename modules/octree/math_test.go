package octree

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func TestCubeBounds(t *testing.T) {
	b := CubeBounds(mgl64.Vec3{1, 2, 3}, 2)
	require.Equal(t, mgl64.Vec3{-1, 0, 1}, b.Min)
	require.Equal(t, mgl64.Vec3{3, 4, 5}, b.Max)
}

func TestBoundsContains(t *testing.T) {
	b := CubeBounds(mgl64.Vec3{}, 1)

	tests := []struct {
		name     string
		bounds   Bounds
		expected bool
	}{
		{
			name:     "inside",
			bounds:   CubeBounds(mgl64.Vec3{0.25, -0.25, 0}, 0.5),
			expected: true,
		},
		{
			name:     "same bounds",
			bounds:   b,
			expected: true,
		},
		{
			name:     "touching the max face",
			bounds:   CubeBounds(mgl64.Vec3{0.5, 0, 0}, 0.5),
			expected: true,
		},
		{
			name:     "touching the min face",
			bounds:   CubeBounds(mgl64.Vec3{0, 0, -0.5}, 0.5),
			expected: true,
		},
		{
			name:     "crossing the max face",
			bounds:   CubeBounds(mgl64.Vec3{0, 0.75, 0}, 0.5),
			expected: false,
		},
		{
			name:     "crossing the min face",
			bounds:   CubeBounds(mgl64.Vec3{-0.75, 0, 0}, 0.5),
			expected: false,
		},
		{
			name:     "bigger",
			bounds:   CubeBounds(mgl64.Vec3{}, 2),
			expected: false,
		},
		{
			name:     "outside",
			bounds:   CubeBounds(mgl64.Vec3{5, 5, 5}, 0.5),
			expected: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, b.Contains(test.bounds))
		})
	}
}

func TestBoundsOverlaps(t *testing.T) {
	b := CubeBounds(mgl64.Vec3{}, 1)

	tests := []struct {
		name     string
		bounds   Bounds
		expected bool
	}{
		{
			name:     "inside",
			bounds:   CubeBounds(mgl64.Vec3{}, 0.5),
			expected: true,
		},
		{
			name:     "enclosing",
			bounds:   CubeBounds(mgl64.Vec3{}, 4),
			expected: true,
		},
		{
			name:     "crossing a face",
			bounds:   CubeBounds(mgl64.Vec3{1.25, 0, 0}, 0.5),
			expected: true,
		},
		{
			name:     "touching a face",
			bounds:   CubeBounds(mgl64.Vec3{2, 0, 0}, 1),
			expected: true,
		},
		{
			name:     "overlapping on x only",
			bounds:   CubeBounds(mgl64.Vec3{0, 3, 0}, 0.5),
			expected: false,
		},
		{
			name:     "overlapping on x and y only",
			bounds:   CubeBounds(mgl64.Vec3{0, 0, -3}, 0.5),
			expected: false,
		},
		{
			name:     "apart",
			bounds:   CubeBounds(mgl64.Vec3{3, 3, 3}, 0.5),
			expected: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, b.Overlaps(test.bounds))
			require.Equal(t, test.expected, test.bounds.Overlaps(b))
		})
	}
}

func TestOctantCenters(t *testing.T) {
	centers := octantCenters(mgl64.Vec3{10, 10, 10}, 4)
	require.Equal(t, [8]mgl64.Vec3{
		{8, 8, 8},
		{8, 8, 12},
		{8, 12, 8},
		{8, 12, 12},
		{12, 8, 8},
		{12, 8, 12},
		{12, 12, 8},
		{12, 12, 12},
	}, centers)
}
