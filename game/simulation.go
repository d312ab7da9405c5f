package game

import rl "github.com/gen2brain/raylib-go/raylib"

// Update processes input and advances one frame at the measured frame time.
func (g *Game) Update() {
	g.handleInput()
	g.step(clampFrameTime(float64(rl.GetFrameTime()), g.cfg.Simulation.MaxFrameTime))
	g.perfCollector.RecordFrame()
}

// UpdateHeadless advances FramesPerUpdate frames at the fixed frame time.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.framesPerUpdate; i++ {
		g.step(g.cfg.Simulation.FrameTime)
	}
}

// step runs one frame. Before Start the particles are re-arranged from the
// live settings every frame instead of simulated.
func (g *Game) step(frameTime float64) {
	if !g.started {
		g.sim.ArrangeParticles()
		return
	}

	g.lastFrameTime = frameTime
	timed := !g.sim.Paused() || g.sim.StepArmed()
	if timed {
		g.perfCollector.BeginUpdate()
	}
	stepped := g.sim.Update(frameTime)
	if timed {
		g.perfCollector.EndUpdate()
	}

	g.collector.RecordFrame(stepped, frameTime, g.sim.Hand().State)
	g.frame++
	g.flushTelemetry()
}

// clampFrameTime bounds a measured frame time so a stall (window drag,
// breakpoint) does not inject one huge step.
func clampFrameTime(dt, limit float64) float64 {
	if limit > 0 && dt > limit {
		return limit
	}
	return dt
}
