package modules

import (
	"context"

	"github.com/roidfield/roidfield/models"
)

// Module is the interface that describes a system plugged into the
// simulation frame loop.
//
// Within a frame, entities are moved first, then every module handles the
// frame, then queued spawns and deletions are applied to the world, then
// every module handles the post frame.
type Module interface {
	// Returns the module name.
	Name() string

	// Initializes the module with the world it runs in.
	Init(*models.World)

	// Handles a frame after entities moved. Queries against spatial indexes
	// belong here.
	//
	// Returned errors stop the simulation.
	HandleFrame(context.Context, models.Frame) error

	// Handles a frame after spawns and deletions were applied. Rebuilding
	// spatial indexes belongs here.
	//
	// Returned errors stop the simulation.
	HandlePostFrame(context.Context, models.Frame) error
}
