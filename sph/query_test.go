package sph

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNearest(t *testing.T) {
	particles := []Particle{
		{Position: r2.Vec{X: 0, Y: 0}},
		{Position: r2.Vec{X: 0.1, Y: 0}},
		{Position: r2.Vec{X: 0.5, Y: 0.5}},
	}

	tests := []struct {
		name    string
		p       r2.Vec
		maxDist float64
		want    int
		ok      bool
	}{
		{"exact hit", r2.Vec{X: 0.5, Y: 0.5}, 0.01, 2, true},
		{"closest of two", r2.Vec{X: 0.07, Y: 0}, 0.2, 1, true},
		{"out of range", r2.Vec{X: 2, Y: 2}, 0.5, -1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Nearest(particles, tc.p, tc.maxDist)
			if got != tc.want || ok != tc.ok {
				t.Errorf("Nearest(%v, %g) = %d, %v; want %d, %v", tc.p, tc.maxDist, got, ok, tc.want, tc.ok)
			}
		})
	}

	if _, ok := Nearest(nil, r2.Vec{}, 1); ok {
		t.Error("Nearest on empty slice reported a hit")
	}
}
