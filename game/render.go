package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/renderer"
	"github.com/pthm-cable/sph/sph"
	"github.com/pthm-cable/sph/telemetry"
	"github.com/pthm-cable/sph/ui"
)

// velocityScale is the world length of a velocity line at unit speed.
const velocityScale = 0.05

const controlsLegend = "LMB pull | RMB push | Space pause | N step | Enter start | R reset | " +
	"I inspect | Tab controls | O overlays | P perf | F11 fullscreen"

var backgroundColor = rl.Color{R: 12, G: 16, B: 24, A: 255}

// Draw renders the current frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	particles := g.sim.Particles()
	physics := g.sim.PhysicsInfo()

	if g.overlays.IsEnabled(ui.OverlayHashGrid) {
		renderer.DrawHashGrid(g.camera, g.sim.BoundingBox(), physics.SmoothingRadius)
	}
	if g.overlays.IsEnabled(ui.OverlayBoundingBox) {
		renderer.DrawBoundingBox(g.camera, g.sim.BoundingBox())
	}

	g.particleRenderer.Mode = g.colorMode()
	g.particleRenderer.Draw(g.camera, particles, g.sim.RenderAttrs(), g.sim.Densities(), physics.RestDensity)

	if g.overlays.IsEnabled(ui.OverlayVelocity) {
		g.particleRenderer.DrawVelocities(g.camera, particles, velocityScale)
	}
	if g.overlays.IsEnabled(ui.OverlayHandRadius) {
		renderer.DrawHand(g.camera, g.sim.Hand())
	}

	sel, hasSel := g.selection(particles)
	if hasSel {
		p := particles[sel].Position
		if g.overlays.IsEnabled(ui.OverlaySmoothing) {
			renderer.DrawSupport(g.camera, p, physics.SmoothingRadius)
		}
		sx, sy := g.camera.WorldToScreen(p)
		size := g.camera.ScaleLength(g.sim.RenderAttrs()[sel].Radius) + 3
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, size, rl.Yellow)
	}

	g.drawUI(particles, sel, hasSel)

	rl.EndDrawing()
}

// colorMode picks the particle coloring from the enabled overlays.
func (g *Game) colorMode() renderer.ColorMode {
	switch {
	case g.overlays.IsEnabled(ui.OverlayDensityColors):
		return renderer.ColorByDensity
	case g.overlays.IsEnabled(ui.OverlaySpeedColors):
		return renderer.ColorBySpeed
	default:
		return renderer.ColorByAttr
	}
}

// drawUI renders the panels. The controls panel is immediate mode, so its
// edits are applied here.
func (g *Game) drawUI(particles []sph.Particle, sel int, hasSel bool) {
	w := int32(g.screenWidth)
	h := int32(g.screenHeight)

	fs := telemetry.ComputeFluidStats(particles, g.sim.Densities(), &g.hudScratch)
	hand := g.sim.Hand()
	g.hud.Draw(w-10, 10, ui.HUDData{
		FrameTime:   time.Duration(g.lastFrameTime * float64(time.Second)),
		FPS:         rl.GetFPS(),
		MouseX:      g.mouseWorld.X,
		MouseY:      g.mouseWorld.Y,
		Particles:   len(particles),
		Capacity:    g.sim.Capacity(),
		Started:     g.started,
		Paused:      g.sim.Paused(),
		HandState:   hand.State.String(),
		DensityMean: fs.DensityMean,
		DensityMax:  fs.DensityMax,
		RestDensity: g.sim.PhysicsInfo().RestDensity,
		SpeedMax:    fs.SpeedMax,
		Anomalies:   g.collector.Anomalies().Counts().Total(),
	})
	g.hud.DrawControls(h, controlsLegend)

	if g.showPerf {
		stats := g.perfCollector.Stats()
		g.perfPanel.Draw(stats.PhaseAvg, stats.AvgUpdate)
	}
	if hasSel {
		g.inspector.Draw(g.inspectorData(sel, particles))
	}
	g.overlayPanel.Draw(g.overlays)

	prev := g.cfg
	act := g.controls.Draw(&g.cfg, g.started)
	g.applyControls(act, prev)
}
