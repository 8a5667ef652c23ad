// Command focus-sim runs a synthetic AR session through the focus engine,
// records a per-tick trace to SQLite, and serves dashboards comparing raw
// raycast hits against the smoothed indicator pose.
//
// Usage:
//
//	focus-sim -frames 600 -db focus-trace.db -listen :8080
//	focus-sim -frames 600 -png trajectory.png -listen ""
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/glasshouse-ar/reticle/internal/config"
	"github.com/glasshouse-ar/reticle/internal/focus"
	"github.com/glasshouse-ar/reticle/internal/httputil"
	"github.com/glasshouse-ar/reticle/internal/monitoring"
	"github.com/glasshouse-ar/reticle/internal/sim"
	"github.com/glasshouse-ar/reticle/internal/trace"
	"github.com/glasshouse-ar/reticle/internal/version"
)

var (
	dbPath        = flag.String("db", "focus-trace.db", "Path to the trace database")
	migrationsDir = flag.String("migrations", "internal/trace/migrations", "Path to the trace schema migrations")
	configPath    = flag.String("config", "config/tuning.defaults.json", "Path to the tuning config JSON")
	listen        = flag.String("listen", ":8080", "Listen address for the dashboard (empty to skip serving)")
	frames        = flag.Int("frames", 600, "Number of frames to simulate")
	seed          = flag.Int64("seed", 1, "Random seed for the synthetic session")
	pngPath       = flag.String("png", "", "Write a trajectory PNG to this path")
	label         = flag.String("label", "focus-sim", "Label for the recorded session")
)

// logObserver logs display-state transitions as they happen.
type logObserver struct{}

func (logObserver) DisplayStateChanged(c *focus.Controller, s focus.DisplayState) {
	monitoring.Logf("display state -> %s", s)
}

func run() error {
	monitoring.Logf("focus-sim %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	tuning, err := config.LoadTuningConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading tuning config: %w", err)
	}
	cfg := focus.ConfigFromTuning(tuning)

	store, err := trace.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.MigrateUp(*migrationsDir); err != nil {
		return err
	}

	sessionID, err := store.BeginSession(*label)
	if err != nil {
		return err
	}
	collector := trace.NewCollector(store, sessionID)

	opts := sim.DefaultOptions()
	opts.Seed = *seed
	world := sim.NewWorld(opts)
	node := sim.NewNode()
	scene := sim.NewSceneGraph()

	// Immediate queues keep the run deterministic: every tick completes
	// before the next frame advances.
	ctrl, err := focus.New(focus.Options{
		View:      world,
		Scene:     scene,
		Node:      node,
		Observer:  logObserver{},
		WorkQueue: focus.Immediate(),
		UIQueue:   focus.Immediate(),
		Trace:     collector,
		Config:    &cfg,
	})
	if err != nil {
		return err
	}
	ctrl.Initialize()
	defer ctrl.Close()

	for i := 0; i < *frames; i++ {
		world.Advance()
		ctrl.Tick(nil)
	}
	monitoring.Logf("simulated %d frames into session %s (%d ticks dropped)",
		*frames, sessionID, collector.Dropped())

	ticks, err := store.Ticks(sessionID)
	if err != nil {
		return err
	}

	if *pngPath != "" {
		if err := writeTrajectoryPNG(*pngPath, ticks); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", *pngPath)
	}

	if *listen == "" {
		return nil
	}
	return serveDashboard(*listen, store, ticks)
}

func serveDashboard(addr string, store *trace.Store, ticks []focus.TickTrace) error {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderDashboard(w, ticks); err != nil {
			monitoring.Logf("render dashboard: %v", err)
		}
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/ticks", func(w http.ResponseWriter, req *http.Request) {
		httputil.WriteJSONOK(w, ticks)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", func(w http.ResponseWriter, req *http.Request) {
		sessions, err := store.Sessions()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, sessions)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/ticks", func(w http.ResponseWriter, req *http.Request) {
		sessionTicks, err := store.Ticks(mux.Vars(req)["id"])
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		if len(sessionTicks) == 0 {
			httputil.NotFound(w, "no ticks for session")
			return
		}
		httputil.WriteJSONOK(w, sessionTicks)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/version", func(w http.ResponseWriter, req *http.Request) {
		httputil.WriteJSONOK(w, map[string]string{
			"version":    version.Version,
			"git_sha":    version.GitSHA,
			"build_time": version.BuildTime,
		})
	}).Methods(http.MethodGet)

	monitoring.Logf("dashboard listening on %s", addr)
	return http.ListenAndServe(addr, r)
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("focus-sim: %v", err)
	}
}
