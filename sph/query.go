package sph

import "gonum.org/v1/gonum/spatial/r2"

// Nearest returns the index of the particle closest to p within maxDist.
// Linear scan; meant for pointer picking, not the physics loop.
func Nearest(particles []Particle, p r2.Vec, maxDist float64) (int, bool) {
	best := -1
	bestSq := maxDist * maxDist
	for i := range particles {
		d := r2.Sub(particles[i].Position, p)
		if distSq := r2.Dot(d, d); distSq <= bestSq {
			best, bestSq = i, distSq
		}
	}
	return best, best >= 0
}

// Pressure returns the equation-of-state pressure for a density under the
// given physics settings.
func (p PhysicsInfo) Pressure(density float64) float64 {
	return (density - p.RestDensity) * p.PressureConstant
}
