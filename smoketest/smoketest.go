package smoketest

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"slices"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/roidfield/roidfield/models"
	"github.com/roidfield/roidfield/modules/octree"
	"github.com/segmentio/encoding/json"
)

const (
	ErrTypeInvalidRequest = "invalid_smoke_test_request"

	maxEntities = 100000
	maxProbes   = 100000
)

// Options configure the smoke tests run by a handler.
type Options struct {
	// The options of the octree under test.
	Octree octree.Options

	// Defaults used when a request leaves them unset.
	Entities int
	Probes   int

	// The share of indexed entities deleted before probing.
	DeletedRatio float64

	// Called with each result. Optional.
	SendResult func(context.Context, Result) error
}

// Request describes a smoke test run.
type Request struct {
	Seed     uint64 `json:"seed"`
	Entities int    `json:"entities"`
	Probes   int    `json:"probes"`
}

// Result is the outcome of a smoke test run.
type Result struct {
	RunID      string            `json:"run_id"`
	Seed       uint64            `json:"seed"`
	Entities   int               `json:"entities"`
	Deleted    int               `json:"deleted"`
	Probes     int               `json:"probes"`
	Collisions int               `json:"collisions"`
	Mismatches int               `json:"mismatches"`
	Stats      octree.BuildStats `json:"stats"`
	Duration   time.Duration     `json:"duration"`
	Passed     bool              `json:"passed"`
}

// Run builds an octree and a linear scan index from a random population and
// checks that both answer the same collisions for random probes.
func Run(ctx context.Context, opts Options, req Request) (Result, error) {
	start := time.Now()

	res := Result{
		RunID:    uuid.NewString(),
		Seed:     req.Seed,
		Entities: req.Entities,
		Probes:   req.Probes,
	}

	rng := rand.New(rand.NewPCG(req.Seed, req.Seed^0x9e3779b97f4a7c15))
	extent := opts.Octree.RootRadius * 1.25

	// Entities belong to no world and the index reports no metrics.
	var id uint32
	asteroids := make([]*models.Entity, 0, req.Entities)
	for range req.Entities {
		id++
		asteroids = append(asteroids, randomEntity(rng, id, models.KindAsteroid, extent, 0.05, 2))
	}

	probes := make([]*models.Entity, 0, req.Probes)
	for range req.Probes {
		id++
		probes = append(probes, randomEntity(rng, id, models.KindShot, extent, 0.05, 1))
	}

	idx := octree.NewIndex(opts.Octree)
	res.Stats = idx.Initialize(mgl64.Vec3{}, asteroids)

	scan := &octree.ScanIndex{RootRadius: opts.Octree.RootRadius}
	scan.Initialize(mgl64.Vec3{}, asteroids)

	for _, a := range asteroids {
		if rng.Float64() < opts.DeletedRatio {
			a.Disable()
			res.Deleted++
		}
	}

	for _, p := range probes {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		want, err := scan.CheckCollisions(p)
		if err != nil {
			return res, errors.New("scanning collisions failed").
				WithTag("run_id", res.RunID).
				WithTag("probe_id", p.ID).
				Wrap(err)
		}

		got, err := idx.CheckCollisions(p)
		if err != nil {
			return res, errors.New("checking octree collisions failed").
				WithTag("run_id", res.RunID).
				WithTag("probe_id", p.ID).
				Wrap(err)
		}

		res.Collisions += len(got)
		if !slices.Equal(entityIDs(got), entityIDs(want)) ||
			idx.Contains(p) != scan.Contains(p) ||
			idx.Intersects(p) != scan.Intersects(p) {
			res.Mismatches++
		}
	}

	res.Duration = time.Since(start)
	res.Passed = res.Mismatches == 0
	return res, nil
}

// HandleSmokeTest returns a handler that runs a smoke test described by the
// JSON request body and responds with its result. An empty body runs a test
// with the default sizes and a random seed.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		req, err := parseRequest(r.Body, opts)
		if err != nil {
			logs.Warn(err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		res, err := Run(ctx, opts, req)
		if err != nil {
			logs.Warn(errors.New("running smoke test failed").Wrap(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		entry := logs.WithTag("run_id", res.RunID).
			WithTag("seed", res.Seed).
			WithTag("entities", res.Entities).
			WithTag("probes", res.Probes).
			WithTag("mismatches", res.Mismatches).
			WithTag("duration", res.Duration)
		if !res.Passed {
			entry.Warn("smoke test failed")
		} else {
			entry.Info("smoke test passed")
		}

		if opts.SendResult != nil {
			if err := opts.SendResult(ctx, res); err != nil {
				logs.WithTag("run_id", res.RunID).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}

		b, err := json.Marshal(res)
		if err != nil {
			logs.Warn(errors.New("encoding smoke test result failed").Wrap(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func parseRequest(body io.Reader, opts Options) (Request, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return Request{}, errors.New("reading body failed").
			WithType(ErrTypeInvalidRequest).
			Wrap(err)
	}

	var req Request
	if len(b) != 0 {
		if err := json.Unmarshal(b, &req); err != nil {
			return Request{}, errors.New("decoding smoke test request failed").
				WithType(ErrTypeInvalidRequest).
				Wrap(err)
		}
	}

	if req.Seed == 0 {
		req.Seed = rand.Uint64()
	}
	if req.Entities == 0 {
		req.Entities = opts.Entities
	}
	if req.Probes == 0 {
		req.Probes = opts.Probes
	}

	if req.Entities < 0 || req.Entities > maxEntities ||
		req.Probes < 0 || req.Probes > maxProbes {
		return Request{}, errors.New("smoke test size out of range").
			WithType(ErrTypeInvalidRequest).
			WithTag("entities", req.Entities).
			WithTag("probes", req.Probes)
	}
	return req, nil
}

func randomEntity(rng *rand.Rand, id uint32, kind models.EntityKind, extent, minRadius, maxRadius float64) *models.Entity {
	var position mgl64.Vec3
	for i := range position {
		position[i] = (rng.Float64()*2 - 1) * extent
	}
	radius := minRadius + rng.Float64()*(maxRadius-minRadius)

	return models.NewDetachedEntity(id, kind, kind.String(), position, mgl64.Vec3{}, radius)
}

func entityIDs(entities []*models.Entity) []uint32 {
	ids := make([]uint32, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	slices.Sort(ids)
	return ids
}
