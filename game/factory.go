package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/sph"
	"github.com/pthm-cable/sph/ui"
)

// newSimulation builds a simulation from the config sections, reporting
// anomalies and phase timings to the given sinks.
func newSimulation(cfg *config.Config, diag sph.Diagnostics, rec sph.PhaseRecorder) (*sph.Simulation, error) {
	opts := append(cfg.Options(), sph.WithDiagnostics(diag), sph.WithPhaseRecorder(rec))
	sim, err := sph.New(cfg.ParticleInfo(), cfg.PhysicsInfo(), cfg.BoundingBox(), cfg.NewHand(), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	return sim, nil
}

// applyControls pushes panel edits into the simulation. Sections the
// simulation rejects are rolled back to prev.
func (g *Game) applyControls(act ui.ControlActions, prev config.Config) {
	if act.ParticlesChanged {
		if err := g.sim.SetParticleInfo(g.cfg.ParticleInfo()); err != nil {
			slog.Warn("rejected particle settings", "error", err)
			g.cfg.Particles = prev.Particles
		}
	}
	if act.PhysicsChanged {
		if err := g.sim.SetPhysicsInfo(g.cfg.PhysicsInfo()); err != nil {
			slog.Warn("rejected physics settings", "error", err)
			g.cfg.Physics = prev.Physics
		}
	}
	if act.HandChanged {
		// Keep position and state; only the shape changes
		h := g.sim.Hand()
		h.Radius = g.cfg.Hand.Radius
		h.Strength = g.cfg.Hand.Strength
		if err := g.sim.SetHand(h); err != nil {
			slog.Warn("rejected hand settings", "error", err)
			g.cfg.Hand = prev.Hand
		}
	}

	switch {
	case act.Start:
		g.start()
	case act.Reset:
		g.reset()
	}
}

// start leaves the arranging state.
func (g *Game) start() {
	if g.started {
		return
	}
	g.started = true
	slog.Info("simulation started", "particles", g.sim.ParticleInfo().Count)
}

// reset returns to the arranging state with the current panel values.
func (g *Game) reset() {
	g.started = false
	g.selected = -1
	g.sim.SetPaused(false)
	g.sim.ArrangeParticles()
	slog.Info("simulation reset", "frame", g.frame)
}
