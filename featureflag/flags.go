package featureflag

type Flag string

const (
	// Stops rebuilding the octree when the player leaves its root. Trees are
	// then only rebuilt on the rebuild interval.
	FlagDisableEscapeRebuild Flag = "DISABLE_ESCAPE_REBUILD"

	FlagDisableAsteroidSplit    Flag = "DISABLE_ASTEROID_SPLIT"
	FlagDisablePlayerCollisions Flag = "DISABLE_PLAYER_COLLISIONS"
)
