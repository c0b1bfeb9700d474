package sim

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/roidfield/roidfield/models"
	"github.com/roidfield/roidfield/modules"
)

// Simulation drives a world and its modules frame by frame.
//
// A frame moves the entities, lets the modules handle the frame, applies the
// queued spawns and deletions, then lets the modules handle the post frame.
// Frames never overlap.
type Simulation struct {
	World *models.World

	// The modules that run the world, in the order they handle frames.
	Modules []modules.Module

	// The duration of a frame.
	FrameDuration time.Duration

	// The interval between summary logs. Zero disables them.
	SummaryInterval time.Duration

	frame   uint64
	summary summary
}

// Init initializes the modules with the simulation world. It must be called
// once before the first frame.
func (s *Simulation) Init() {
	for _, m := range s.Modules {
		m.Init(s.World)
	}
}

// Step runs a single frame of dt. It stops at the first module error.
func (s *Simulation) Step(ctx context.Context, dt time.Duration) (models.Frame, error) {
	start := time.Now()

	s.frame++
	s.World.Advance(dt)
	s.World.Integrate(dt)

	f := models.Frame{
		Number: s.frame,
		Now:    s.World.Now(),
		Delta:  dt,
	}

	for _, m := range s.Modules {
		if err := measureModuleLatency(m.Name(), stageFrame, func() error {
			return m.HandleFrame(ctx, f)
		}); err != nil {
			return f, errors.New("handling frame failed").
				WithTag("module", m.Name()).
				WithTag("frame", f.Number).
				Wrap(err)
		}
	}

	s.World.ApplyPending()

	for _, m := range s.Modules {
		if err := measureModuleLatency(m.Name(), stagePostFrame, func() error {
			return m.HandlePostFrame(ctx, f)
		}); err != nil {
			return f, errors.New("handling post frame failed").
				WithTag("module", m.Name()).
				WithTag("frame", f.Number).
				Wrap(err)
		}
	}

	s.summary.record(s.World, f)
	instrumentFrame(time.Since(start))
	return f, nil
}

// Run runs a frame each FrameDuration until the context is done or a frame
// fails. Every frame advances the world by FrameDuration, whatever the time
// it took to run.
func (s *Simulation) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.SummaryInterval > 0 {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.startSummaryWorker(ctx)
		}()

		defer func() {
			cancel()
			wg.Wait()
			s.logSummary()
		}()
	}

	ticker := time.NewTicker(s.FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if _, err := s.Step(ctx, s.FrameDuration); err != nil {
				return err
			}
		}
	}
}
