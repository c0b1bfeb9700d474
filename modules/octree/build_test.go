package octree

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/roidfield/roidfield/models"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		valid bool
	}{
		{
			name:  "default",
			opts:  DefaultOptions(),
			valid: true,
		},
		{
			name:  "zero min objects",
			opts:  Options{RootRadius: 1, MinRadius: 0.1},
			valid: true,
		},
		{
			name: "zero root radius",
			opts: Options{MinRadius: 0.1, MinObjects: 1},
		},
		{
			name: "zero min radius",
			opts: Options{RootRadius: 1, MinObjects: 1},
		},
		{
			name: "negative min objects",
			opts: Options{RootRadius: 1, MinRadius: 0.1, MinObjects: -1},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.opts.Validate()
			if test.valid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, ErrTypeInvalidOptions, errors.Type(err))
		})
	}
}

func TestBuildSingleEntity(t *testing.T) {
	w := models.NewWorld()
	e := spawnEntity(w, models.KindAsteroid, mgl64.Vec3{}, 0.1)

	tree, stats := Build(mgl64.Vec3{}, []*models.Entity{e}, DefaultOptions())

	root := tree.Root()
	require.True(t, root.IsLeaf())
	require.Equal(t, []*models.Entity{e}, root.Entities())
	require.Equal(t, mgl64.Vec3{-32, -32, -32}, root.Min())
	require.Equal(t, mgl64.Vec3{32, 32, 32}, root.Max())
	require.Equal(t, 1, stats.Entities)
	require.Equal(t, 1, stats.Nodes)
	require.Equal(t, 1, stats.Leaves)
	require.Zero(t, stats.Depth)

	probe := spawnEntity(w, models.KindShot, mgl64.Vec3{}, 0.05)
	colliders, err := tree.CheckCollisions(probe)
	require.NoError(t, err)
	require.Equal(t, []*models.Entity{e}, colliders)
}

func TestBuildSeparatesFarEntities(t *testing.T) {
	w := models.NewWorld()
	entities := spawnEntities(w, models.KindAsteroid,
		sphere{position: mgl64.Vec3{-10, -10, -10}, radius: 0.1},
		sphere{position: mgl64.Vec3{10, 10, 10}, radius: 0.1},
	)
	near, far := entities[0], entities[1]

	tree, stats := Build(mgl64.Vec3{}, entities, DefaultOptions())

	root := tree.Root()
	require.Empty(t, root.Entities())

	children := root.Children()
	require.Len(t, children, 2)
	require.Equal(t, mgl64.Vec3{-16, -16, -16}, children[0].Center())
	require.Equal(t, []*models.Entity{near}, children[0].Entities())
	require.Equal(t, mgl64.Vec3{16, 16, 16}, children[1].Center())
	require.Equal(t, []*models.Entity{far}, children[1].Entities())
	require.Equal(t, 3, stats.Nodes)
	require.Equal(t, 2, stats.Leaves)
	require.Equal(t, 1, stats.Depth)

	probe := spawnEntity(w, models.KindShot, mgl64.Vec3{-10, -10, -10}, 0.1)
	colliders, err := tree.CheckCollisions(probe)
	require.NoError(t, err)
	require.Equal(t, []*models.Entity{near}, colliders)
}

func TestBuildBoundaryPlanes(t *testing.T) {
	w := models.NewWorld()
	entities := spawnEntities(w, models.KindAsteroid,
		// Max faces on the center planes.
		sphere{position: mgl64.Vec3{-0.5, -0.5, -0.5}, radius: 0.5},
		// Min faces on the center planes.
		sphere{position: mgl64.Vec3{0.5, 0.5, 0.5}, radius: 0.5},
		// Crossing the x center plane.
		sphere{position: mgl64.Vec3{0, 5, 5}, radius: 0.1},
	)
	negative, positive, crossing := entities[0], entities[1], entities[2]

	tree, _ := Build(mgl64.Vec3{}, entities, DefaultOptions())
	root := tree.Root()

	require.Equal(t, []*models.Entity{crossing}, root.Entities())

	children := root.Children()
	require.Len(t, children, 2)
	require.Equal(t, []*models.Entity{negative}, children[0].Entities())
	require.Equal(t, []*models.Entity{positive}, children[1].Entities())

	require.True(t, children[0].Contains(negative))
	require.False(t, children[0].Contains(positive))
	require.True(t, children[0].Intersects(positive))
	require.True(t, children[1].Contains(positive))
	require.True(t, children[1].Intersects(negative))
	require.False(t, children[0].Contains(crossing))
	require.False(t, children[1].Contains(crossing))
}

func TestBuildAssignsFirstContainingOctant(t *testing.T) {
	w := models.NewWorld()
	entities := spawnEntities(w, models.KindAsteroid,
		sphere{position: mgl64.Vec3{-1, -1, -1}, radius: 0.5},
		sphere{position: mgl64.Vec3{-1, -1, 1}, radius: 0.5},
		sphere{position: mgl64.Vec3{1, 1, -1}, radius: 0.5},
		sphere{position: mgl64.Vec3{1, 1, 1}, radius: 0.5},
	)

	tree, _ := Build(mgl64.Vec3{}, entities, DefaultOptions())
	children := tree.Root().Children()
	require.Len(t, children, 4)

	expected := []mgl64.Vec3{
		{-16, -16, -16},
		{-16, -16, 16},
		{16, 16, -16},
		{16, 16, 16},
	}
	for i, c := range children {
		require.Equal(t, expected[i], c.Center())
	}
}

func TestBuildEmpty(t *testing.T) {
	tree, stats := Build(mgl64.Vec3{1, 2, 3}, nil, DefaultOptions())

	require.True(t, tree.Root().IsLeaf())
	require.Empty(t, tree.Root().Entities())
	require.Equal(t, mgl64.Vec3{1, 2, 3}, tree.Center())
	require.Equal(t, BuildStats{Nodes: 1, Leaves: 1, Duration: stats.Duration}, stats)
}

func TestBuildKeepsDisabledEntitiesInPlace(t *testing.T) {
	w := models.NewWorld()
	entities := spawnEntities(w, models.KindAsteroid,
		sphere{position: mgl64.Vec3{-10, -10, -10}, radius: 0.1},
		sphere{position: mgl64.Vec3{10, 10, 10}, radius: 0.1},
	)
	w.Delete(entities[0])

	tree, _ := Build(mgl64.Vec3{}, entities, DefaultOptions())
	root := tree.Root()
	require.Equal(t, []*models.Entity{entities[0]}, root.Entities())
	require.Len(t, root.Children(), 1)
	require.Equal(t, []*models.Entity{entities[1]}, root.Children()[0].Entities())
}

func TestBuildCopiesTheSnapshot(t *testing.T) {
	w := models.NewWorld()
	entities := spawnEntities(w, models.KindAsteroid,
		sphere{position: mgl64.Vec3{1, 1, 1}, radius: 0.1},
	)

	tree, _ := Build(mgl64.Vec3{}, entities, DefaultOptions())
	entities[0] = nil
	require.NotNil(t, tree.Root().Entities()[0])
}

func TestBuildFallsBackToFlatLists(t *testing.T) {
	w := models.NewWorld()

	t.Run("entities fitting no octant", func(t *testing.T) {
		spheres := make([]sphere, 50)
		for i := range spheres {
			spheres[i] = sphere{position: mgl64.Vec3{1, 1, 1}, radius: 0.01}
		}
		entities := spawnEntities(w, models.KindAsteroid, spheres...)

		tree, stats := Build(mgl64.Vec3{}, entities, DefaultOptions())
		require.Equal(t, 5, stats.Depth)

		leaf := nodeOf(tree, entities[0])
		require.NotNil(t, leaf)
		require.True(t, leaf.IsLeaf())
		require.Equal(t, 1.0, leaf.Radius())
		require.ElementsMatch(t, entities, leaf.Entities())

		probe := spawnEntity(w, models.KindShot, mgl64.Vec3{1, 1, 1}, 0.05)
		colliders, err := tree.CheckCollisions(probe)
		require.NoError(t, err)
		require.ElementsMatch(t, entities, colliders)
	})

	t.Run("min radius reached", func(t *testing.T) {
		spheres := make([]sphere, 10)
		for i := range spheres {
			spheres[i] = sphere{position: mgl64.Vec3{0.7, 0.7, 0.7}, radius: 0.001}
		}
		entities := spawnEntities(w, models.KindAsteroid, spheres...)

		opts := DefaultOptions()
		tree, stats := Build(mgl64.Vec3{}, entities, opts)
		require.Equal(t, 9, stats.Depth)

		leaf := nodeOf(tree, entities[0])
		require.NotNil(t, leaf)
		require.True(t, leaf.IsLeaf())
		require.LessOrEqual(t, leaf.Radius(), opts.MinRadius)
		require.ElementsMatch(t, entities, leaf.Entities())
	})
}

func TestBuildInvariants(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 42, 1337} {
		rng := rand.New(rand.NewPCG(seed, seed))
		w := models.NewWorld()

		spheres := make([]sphere, 500)
		for i := range spheres {
			spheres[i] = randomSphere(rng, 30, 0.05, 1.5)
		}
		entities := spawnEntities(w, models.KindAsteroid, spheres...)

		opts := Options{
			RootRadius: 32,
			MinObjects: int(seed % 4),
			MinRadius:  0.1,
		}
		tree, stats := Build(mgl64.Vec3{}, entities, opts)

		placed := make(map[*models.Entity]int, len(entities))
		nodes := 0
		leaves := 0
		tree.Walk(func(n *Node) bool {
			nodes++
			for _, e := range n.entities {
				placed[e]++
			}

			if !n.IsLeaf() {
				require.LessOrEqual(t, len(n.children), 8)
				for _, e := range n.entities {
					require.False(t, fitsAnyOctant(n, e))
				}
				for _, c := range n.children {
					require.Equal(t, n.depth+1, c.depth)
					require.True(t, n.bounds.Contains(c.bounds))
				}
				return true
			}

			leaves++
			if len(n.entities) > opts.MinObjects && n.radius > opts.MinRadius {
				// Only entities that straddle the octants of a leaf can make
				// it hold more than MinObjects.
				for _, e := range n.entities {
					require.False(t, fitsAnyOctant(n, e))
				}
			}
			if n.depth > 0 {
				require.NotEmpty(t, n.entities)
			}
			return true
		})

		require.Len(t, placed, len(entities))
		for _, e := range entities {
			require.Equal(t, 1, placed[e])
		}
		require.Equal(t, nodes, stats.Nodes)
		require.Equal(t, leaves, stats.Leaves)
		require.Equal(t, len(entities), stats.Entities)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	w := models.NewWorld()

	spheres := make([]sphere, 300)
	for i := range spheres {
		spheres[i] = randomSphere(rng, 32, 0.05, 1)
	}
	entities := spawnEntities(w, models.KindAsteroid, spheres...)

	a, _ := Build(mgl64.Vec3{1, 1, 1}, entities, DefaultOptions())

	shuffled := slices.Clone(entities)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	b, _ := Build(mgl64.Vec3{1, 1, 1}, shuffled, DefaultOptions())

	require.Equal(t, partition(a), partition(b))
}

// partition describes the grouping of the tree entities into nodes.
func partition(tree *Tree) []DebugNode {
	nodes := tree.DebugInfo().Nodes
	for _, n := range nodes {
		slices.Sort(n.EntityIDs)
	}
	return nodes
}

func randomSphere(rng *rand.Rand, extent, minRadius, maxRadius float64) sphere {
	return sphere{
		position: mgl64.Vec3{
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
		},
		radius: minRadius + rng.Float64()*(maxRadius-minRadius),
	}
}
