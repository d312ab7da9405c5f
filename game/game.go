// Package game wires the fluid simulation to the window, input, UI and telemetry.
package game

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/sph"
	"github.com/pthm-cable/sph/telemetry"
	"github.com/pthm-cable/sph/ui"
)

// Options configures a Game.
type Options struct {
	Seed            uint64 // 0 = use config
	LogStats        bool
	OutputDir       string
	Headless        bool
	FramesPerUpdate int // frames advanced per UpdateHeadless call

	// Config overrides the global config when set.
	Config *config.Config

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete application state.
type Game struct {
	// Working copy of the config; the controls panel edits it in place
	cfg config.Config
	sim *sph.Simulation

	// Rendering
	camera           *camera.Camera
	particleRenderer *renderer.ParticleRenderer

	// UI
	hud          *ui.HUD
	perfPanel    *ui.PerfPanel
	controls     *ui.ControlsPanel
	overlayPanel *ui.OverlayPanel
	inspector    *ui.Inspector
	overlays     *ui.OverlayRegistry
	hudScratch   telemetry.StatsScratch

	// Telemetry
	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool

	// State
	frame           int32
	started         bool
	headless        bool
	framesPerUpdate int
	showPerf        bool
	selected        int // -1 when nothing is inspected
	lastFrameTime   float64
	mouseWorld      r2.Vec

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game from opts.Config or the global config.
// Headless games start simulating immediately; windowed games wait for Start.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	g := &Game{
		cfg:             *cfg,
		statsCallback:   opts.StatsCallback,
		logStats:        opts.LogStats,
		headless:        opts.Headless,
		framesPerUpdate: max(opts.FramesPerUpdate, 1),
		selected:        -1,
	}
	if opts.Seed != 0 {
		g.cfg.Simulation.Seed = opts.Seed
	}

	anomalies := &telemetry.Anomalies{}
	g.perfCollector = telemetry.NewPerfCollector(g.cfg.Telemetry.PerfWindow)
	g.collector = telemetry.NewCollector(g.cfg.Derived.StatsWindowFrames, anomalies)

	sim, err := newSimulation(&g.cfg, anomalies, g.perfCollector)
	if err != nil {
		return nil, err
	}
	g.sim = sim
	g.sim.ArrangeParticles()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.sim.Close()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if om != nil {
		if err := om.WriteConfig(&g.cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		slog.Info("writing telemetry", "dir", om.Dir())
	}

	if g.headless {
		g.started = true
		return g, nil
	}

	g.screenWidth = float32(g.cfg.Screen.Width)
	g.screenHeight = float32(g.cfg.Screen.Height)
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.sim.BoundingBox())
	g.particleRenderer = renderer.NewParticleRenderer()

	g.overlays = ui.NewOverlayRegistry()
	g.overlays.SetEnabled(ui.OverlayBoundingBox, true)
	g.overlays.SetEnabled(ui.OverlayHandRadius, true)

	g.hud = ui.NewHUD(hudWidth)
	g.perfPanel = ui.NewPerfPanel(0, 0)
	g.controls = ui.NewControlsPanel(10, 10, controlsWidth, g.sim.Capacity())
	g.overlayPanel = ui.NewOverlayPanel(0, 0, hudWidth)
	g.inspector = ui.NewInspector(0, 0, hudWidth)
	g.layout()

	return g, nil
}

// Panel widths in pixels.
const (
	hudWidth      = 220
	controlsWidth = 260
)

// layout positions the panels for the current window size.
func (g *Game) layout() {
	w := int32(g.screenWidth)
	h := int32(g.screenHeight)
	g.perfPanel.SetPosition(controlsWidth+30, 10)
	g.overlayPanel.SetPosition(w-hudWidth-10, 280)
	g.inspector.SetPosition(w-hudWidth-10, h-210)
}

// Unload releases the worker pool and flushes output files.
func (g *Game) Unload() {
	g.sim.Close()
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}

// Frame returns the number of frames simulated since start.
func (g *Game) Frame() int32 {
	return g.frame
}

// Simulation returns the underlying simulation.
func (g *Game) Simulation() *sph.Simulation {
	return g.sim
}

// Started reports whether the simulation has left the arranging state.
func (g *Game) Started() bool {
	return g.started
}
