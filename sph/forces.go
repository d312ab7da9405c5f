package sph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DensityEpsilon replaces a density that would otherwise be zero.
const DensityEpsilon = 1e-6

func (s *Simulation) pressure(density float64) float64 {
	return s.physics.Pressure(density)
}

// density sums the kernel over the neighbors of particle i, itself included.
// The spatial hash must be built over pos.
func (s *Simulation) density(i int, pos []r2.Vec) float64 {
	h := s.physics.SmoothingRadius
	var sum float64
	s.grid.Query(pos[i], h*h, func(rel r2.Vec, _ int) {
		sum += DensityKernel(r2.Dot(rel, rel), h)
	})
	if !(sum > 0) || math.IsInf(sum, 0) {
		s.diag.ZeroDensity(i, sum)
		return DensityEpsilon
	}
	return sum
}

// pressureForce returns the symmetrized pressure force on particle i.
// Densities must be complete for every particle before this is called.
func (s *Simulation) pressureForce(i int, pos []r2.Vec) r2.Vec {
	h := s.physics.SmoothingRadius
	pi := s.pressure(s.densities[i])

	var force r2.Vec
	s.grid.Query(pos[i], h*h, func(rel r2.Vec, j int) {
		if j == i {
			return
		}
		distSq := r2.Dot(rel, rel)
		var dir r2.Vec
		if distSq == 0 {
			s.diag.CoincidentPair(i, j)
			dir = fallbackDirection(s.seed, i, j)
		} else {
			dir = r2.Scale(1/math.Sqrt(distSq), rel)
		}
		dj := s.densities[j]
		shared := (pi + s.pressure(dj)) / 2
		slope := PressureGradientMagnitude(distSq, h)
		force = r2.Add(force, r2.Scale(slope*shared/dj, dir))
	})
	return force
}

// acceleration combines gravity, pressure and the hand for particle i.
func (s *Simulation) acceleration(i int, pos, vel []r2.Vec) r2.Vec {
	a := r2.Vec{Y: -s.physics.Gravity}
	a = r2.Add(a, r2.Scale(1/s.densities[i], s.pressureForce(i, pos)))
	return r2.Add(a, s.hand.Acceleration(pos[i], vel[i]))
}

// fallbackDirection is a reproducible unit vector for a coincident pair.
// It is antisymmetric in (i, j) so pair forces still cancel.
func fallbackDirection(seed uint64, i, j int) r2.Vec {
	sign := 1.0
	if i > j {
		i, j = j, i
		sign = -1
	}
	h := splitmix64(seed ^ uint64(i)<<32 ^ uint64(j))
	angle := float64(h>>11) / (1 << 53) * 2 * math.Pi
	return r2.Vec{X: sign * math.Cos(angle), Y: sign * math.Sin(angle)}
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
