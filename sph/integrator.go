package sph

import "gonum.org/v1/gonum/spatial/r2"

// evaluate rebuilds the index over pos and fills dst with accelerations.
// The two parallel stages are separated by a join: every density is written
// before any acceleration reads its neighbors' densities.
func (s *Simulation) evaluate(pos, vel, dst []r2.Vec) {
	n := s.particleInfo.Count

	s.recorder.StartPhase(PhaseSpatialHash)
	s.grid.Build(pos, n, s.physics.SmoothingRadius)

	s.recorder.StartPhase(PhaseDensity)
	s.pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			s.densities[i] = s.density(i, pos)
		}
	})

	s.recorder.StartPhase(PhaseAcceleration)
	s.pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = s.acceleration(i, pos, vel)
		}
	})
}

// substep advances the active particles by dt with a predictor/corrector pair.
func (s *Simulation) substep(dt float64) {
	n := s.particleInfo.Count
	pos, vel := s.positions, s.velocities
	predPos, predVel := s.predPositions, s.predVelocities
	accel, predAccel := s.accel, s.predAccel

	s.evaluate(pos, vel, accel)

	s.recorder.StartPhase(PhaseIntegrate)
	s.pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			predVel[i] = r2.Add(vel[i], r2.Scale(dt, accel[i]))
			predPos[i] = r2.Add(pos[i], r2.Scale(dt, vel[i]))
		}
	})

	s.evaluate(predPos, predVel, predAccel)

	s.recorder.StartPhase(PhaseIntegrate)
	half := dt / 2
	s.pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			v0 := vel[i]
			vel[i] = r2.Add(v0, r2.Scale(half, r2.Add(accel[i], predAccel[i])))
			pos[i] = r2.Add(pos[i], r2.Scale(half, r2.Add(v0, predVel[i])))
		}
	})

	if s.physics.ResolveCollisions {
		s.recorder.StartPhase(PhaseCollisions)
		s.resolveCollisions()
	}

	s.recorder.StartPhase(PhaseBoundary)
	s.pool.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			s.resolveBoundary(i)
		}
	})
}

// resolveBoundary clamps particle i into the box, reflecting the velocity
// component of each violated axis scaled by the boundary damping.
func (s *Simulation) resolveBoundary(i int) {
	p, v := s.positions[i], s.velocities[i]
	if !finite(p) || !finite(v) {
		s.diag.NonFinite(i)
		p, v = s.box.Center(), r2.Vec{}
	}

	r := s.particleInfo.Radius
	damping := s.physics.BoundaryDamping
	box := s.box

	if p.X < box.Left+r {
		p.X = box.Left + r
		v.X = -v.X * damping
	} else if p.X > box.Right-r {
		p.X = box.Right - r
		v.X = -v.X * damping
	}
	if p.Y < box.Bottom+r {
		p.Y = box.Bottom + r
		v.Y = -v.Y * damping
	} else if p.Y > box.Top-r {
		p.Y = box.Top - r
		v.Y = -v.Y * damping
	}

	s.positions[i], s.velocities[i] = p, v
}
