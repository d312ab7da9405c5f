package sph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// resolveCollisions separates every overlapping pair of particles by direct
// position correction and exchanges their normal velocity components, scaled
// by the collision damping. O(n²) and sequential since each pair writes both
// particles. Runs only when PhysicsInfo.ResolveCollisions is set.
func (s *Simulation) resolveCollisions() {
	n := s.particleInfo.Count
	minDist := 2 * s.particleInfo.Radius
	minDistSq := minDist * minDist
	damping := s.physics.CollisionDamping
	pos, vel := s.positions, s.velocities

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := r2.Sub(pos[j], pos[i])
			distSq := r2.Dot(d, d)
			if distSq >= minDistSq {
				continue
			}

			dist := math.Sqrt(distSq)
			var normal r2.Vec
			if dist > 0 {
				normal = r2.Scale(1/dist, d)
			} else {
				s.diag.CoincidentPair(i, j)
				normal = fallbackDirection(s.seed, i, j)
			}

			correction := r2.Scale((minDist-dist)/2, normal)
			pos[i] = r2.Sub(pos[i], correction)
			pos[j] = r2.Add(pos[j], correction)

			vi := r2.Dot(vel[i], normal)
			vj := r2.Dot(vel[j], normal)
			if vi-vj <= 0 {
				continue // separating
			}
			vel[i] = r2.Add(vel[i], r2.Scale(vj*damping-vi, normal))
			vel[j] = r2.Add(vel[j], r2.Scale(vi*damping-vj, normal))
		}
	}
}
