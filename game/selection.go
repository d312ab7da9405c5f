package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/sph"
	"github.com/pthm-cable/sph/ui"
)

// selectNearest inspects the particle under the cursor, or clears the
// selection when none is within one smoothing radius.
func (g *Game) selectNearest() {
	i, ok := sph.Nearest(g.sim.Particles(), g.mouseWorld, g.sim.PhysicsInfo().SmoothingRadius)
	if !ok {
		g.selected = -1
		return
	}
	g.selected = i
}

// selection returns the inspected index if it still refers to an active particle.
func (g *Game) selection(particles []sph.Particle) (int, bool) {
	if g.selected < 0 || g.selected >= len(particles) {
		return 0, false
	}
	return g.selected, true
}

// inspectorData builds the inspector readout for particle i.
func (g *Game) inspectorData(i int, particles []sph.Particle) ui.InspectorData {
	p := particles[i]
	var density float64
	if d := g.sim.Densities(); i < len(d) {
		density = d[i]
	}
	return ui.InspectorData{
		Index:    i,
		X:        p.Position.X,
		Y:        p.Position.Y,
		VX:       p.Velocity.X,
		VY:       p.Velocity.Y,
		Speed:    r2.Norm(p.Velocity),
		Density:  density,
		Pressure: g.sim.PhysicsInfo().Pressure(density),
		Color:    renderer.ToRL(g.sim.RenderAttrs()[i].Color),
	}
}
