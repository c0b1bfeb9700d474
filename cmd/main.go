package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roidfield/roidfield/featureflag"
	roidhttp "github.com/roidfield/roidfield/http"
	"github.com/roidfield/roidfield/models"
	"github.com/roidfield/roidfield/modules"
	"github.com/roidfield/roidfield/modules/asteroids"
	"github.com/roidfield/roidfield/modules/octree"
	"github.com/roidfield/roidfield/modules/pilot"
	"github.com/roidfield/roidfield/sim"
	"github.com/roidfield/roidfield/smoketest"
	roidwebsocket "github.com/roidfield/roidfield/websocket"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The roidfield version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "roidfield_info",
		Help:        "Roidfield information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	AdminAddr       string          `cli:""        env:"ROIDFIELD_ADMIN_ADDR"       help:"Admin listening address."`
	LogLevel        string          `cli:""        env:"ROIDFIELD_LOG_LEVEL"        help:"Log level (debug|info|warning|error)."`
	LogIndent       bool            `cli:""        env:"ROIDFIELD_LOG_INDENT"       help:"Indent logs."`
	FrameDuration   time.Duration   `cli:",hidden" env:"ROIDFIELD_FRAME_DURATION"   help:"The duration of a simulation frame."`
	SummaryInterval time.Duration   `cli:",hidden" env:"ROIDFIELD_SUMMARY_INTERVAL" help:"The duration between each simulation summary log."`
	Seed            uint64          `cli:""        env:"ROIDFIELD_SEED"             help:"The seed of the asteroid spawns. Random when zero."`
	Octree          octreeConfig    `cli:",hidden" env:"-"                          help:"Octree configuration."`
	Asteroids       asteroidsConfig `cli:",hidden" env:"-"                          help:"Asteroids configuration."`
	Stream          streamConfig    `cli:",hidden" env:"-"                          help:"Octree stream configuration."`
	SmokeTest       smokeConfig     `cli:",hidden" env:"-"                          help:"Smoke test configuration."`
	FeatureFlags    []string        `cli:",hidden" env:"ROIDFIELD_FEATURE_FLAGS"    help:"Comma separated feature flags"`
	Version         bool            `cli:""        env:"-"                          help:"Show version."`
	Help            bool            `cli:""        env:"-"                          help:"Show help."`
}

type octreeConfig struct {
	RootRadius      float64       `cli:",hidden" env:"ROIDFIELD_OCTREE_ROOT_RADIUS"      help:"The half-width of the octree root."`
	MinObjects      int           `cli:",hidden" env:"ROIDFIELD_OCTREE_MIN_OBJECTS"      help:"Nodes holding this many entities or fewer are not subdivided."`
	MinRadius       float64       `cli:",hidden" env:"ROIDFIELD_OCTREE_MIN_RADIUS"       help:"Nodes with a smaller or equal half-width are not subdivided."`
	RebuildInterval time.Duration `cli:",hidden" env:"ROIDFIELD_OCTREE_REBUILD_INTERVAL" help:"The duration between two octree rebuilds."`
}

type asteroidsConfig struct {
	BaseAsteroids int `cli:",hidden" env:"ROIDFIELD_ASTEROIDS_BASE"  help:"The number of asteroids at difficulty 1."`
	Lives         int `cli:",hidden" env:"ROIDFIELD_ASTEROIDS_LIVES" help:"The number of lives of the player."`
}

type streamConfig struct {
	PollInterval time.Duration `cli:",hidden" env:"ROIDFIELD_STREAM_POLL_INTERVAL" help:"The duration between two checks for a new octree."`
	WriteTimeout time.Duration `cli:",hidden" env:"ROIDFIELD_STREAM_WRITE_TIMEOUT" help:"The time allowed to send an octree snapshot."`
}

type smokeConfig struct {
	Entities     int     `cli:",hidden" env:"ROIDFIELD_SMOKE_TEST_ENTITIES"      help:"The default number of entities of a smoke test."`
	Probes       int     `cli:",hidden" env:"ROIDFIELD_SMOKE_TEST_PROBES"        help:"The default number of probes of a smoke test."`
	DeletedRatio float64 `cli:",hidden" env:"ROIDFIELD_SMOKE_TEST_DELETED_RATIO" help:"The share of entities deleted before probing."`
}

func main() {
	octreeOpts := octree.DefaultOptions()
	asteroidsCfg := asteroids.DefaultConfig()

	conf := config{
		AdminAddr:       ":18190",
		LogLevel:        logs.InfoLevel.String(),
		FrameDuration:   time.Millisecond * 16,
		SummaryInterval: time.Minute,
		Octree: octreeConfig{
			RootRadius:      octreeOpts.RootRadius,
			MinObjects:      octreeOpts.MinObjects,
			MinRadius:       octreeOpts.MinRadius,
			RebuildInterval: time.Millisecond * 250,
		},
		Asteroids: asteroidsConfig{
			BaseAsteroids: asteroidsCfg.BaseAsteroids,
			Lives:         asteroidsCfg.Lives,
		},
		Stream: streamConfig{
			PollInterval: time.Millisecond * 100,
			WriteTimeout: time.Second * 5,
		},
		SmokeTest: smokeConfig{
			Entities:     1000,
			Probes:       500,
			DeletedRatio: 0.1,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts a roidfield simulation.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	seed := conf.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	octreeOpts = octree.Options{
		RootRadius: conf.Octree.RootRadius,
		MinObjects: conf.Octree.MinObjects,
		MinRadius:  conf.Octree.MinRadius,
	}
	asteroidsCfg.BaseAsteroids = conf.Asteroids.BaseAsteroids
	asteroidsCfg.Lives = conf.Asteroids.Lives

	featureFlags := featureflag.New(conf.FeatureFlags)
	idx := octree.NewIndex(octreeOpts, octree.WithMetrics())

	asteroidsModule := &asteroids.Module{
		Config:       asteroidsCfg,
		FeatureFlags: featureFlags,
		Rand:         rand.New(rand.NewPCG(seed, seed>>1)),
	}

	simulation := sim.Simulation{
		World: models.NewWorld(),
		Modules: []modules.Module{
			&octree.Module{
				Index:           idx,
				Options:         octreeOpts,
				RebuildInterval: conf.Octree.RebuildInterval,
				FeatureFlags:    featureFlags,
			},
			&pilot.Module{Config: pilot.DefaultConfig()},
			asteroidsModule,
		},
		FrameDuration:   conf.FrameDuration,
		SummaryInterval: conf.SummaryInterval,
	}
	simulation.Init()

	stream := roidwebsocket.OctreeStream{
		Index:        idx,
		PollInterval: conf.Stream.PollInterval,
		WriteTimeout: conf.Stream.WriteTimeout,
	}

	readinessCheck := func() bool {
		return idx.Tree() != nil
	}

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", roidhttp.HandleHealthCheck)
	admin.HandleFunc("/ready", roidhttp.HandleReadyCheck(readinessCheck))
	admin.HandleFunc("/version", roidhttp.HandleVersion(version))
	admin.HandleFunc("/debug/octree", roidhttp.HandleOctreeDebug(idx, asteroidsModule.State().Scoreboard))
	admin.Handle("/debug/octree/stream", websocket.Server{
		Handler: func(conn *websocket.Conn) {
			stream.Handle(ctx, conn)
		},
	})
	admin.HandleFunc("/smoke-test", smoketest.HandleSmokeTest(ctx, smoketest.Options{
		Octree:       octreeOpts,
		Entities:     conf.SmokeTest.Entities,
		Probes:       conf.SmokeTest.Probes,
		DeletedRatio: conf.SmokeTest.DeletedRatio,
	}))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("world_uuid", simulation.World.UUID).
		WithTag("seed", seed).
		WithTag("octree_options", octreeOpts).
		WithTag("feature_flags", featureFlags.List()).
		Info("starting roidfield simulation")

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()

		if err := simulation.Run(ctx); err != nil {
			logs.Warn(errors.New("simulation stopped").Wrap(err))
		}
	}()

	roidhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.AdminAddr, Handler: metrics.HTTPHandler(&admin,
			roidhttp.MetricsPathFormatter)},
	)

	<-done
}

func validateConfig(conf config) error {
	if conf.FrameDuration <= 0 {
		return errors.New("frame duration must be positive").
			WithTag("frame_duration", conf.FrameDuration)
	}

	if conf.Octree.RebuildInterval <= 0 {
		return errors.New("octree rebuild interval must be positive").
			WithTag("rebuild_interval", conf.Octree.RebuildInterval)
	}

	if conf.Stream.PollInterval <= 0 {
		return errors.New("stream poll interval must be positive").
			WithTag("poll_interval", conf.Stream.PollInterval)
	}

	if err := (octree.Options{
		RootRadius: conf.Octree.RootRadius,
		MinObjects: conf.Octree.MinObjects,
		MinRadius:  conf.Octree.MinRadius,
	}).Validate(); err != nil {
		return errors.New("invalid octree configuration").Wrap(err)
	}

	cfg := asteroids.DefaultConfig()
	cfg.BaseAsteroids = conf.Asteroids.BaseAsteroids
	cfg.Lives = conf.Asteroids.Lives
	if err := cfg.Validate(); err != nil {
		return errors.New("invalid asteroids configuration").Wrap(err)
	}

	if conf.SmokeTest.Entities < 0 || conf.SmokeTest.Probes < 0 ||
		conf.SmokeTest.DeletedRatio < 0 || conf.SmokeTest.DeletedRatio > 1 {
		return errors.New("invalid smoke test configuration").
			WithTag("entities", conf.SmokeTest.Entities).
			WithTag("probes", conf.SmokeTest.Probes).
			WithTag("deleted_ratio", conf.SmokeTest.DeletedRatio)
	}

	return nil
}
