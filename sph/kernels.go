package sph

import "math"

// DensityKernel is the smoothing kernel used for density estimation.
// It takes the squared distance r2 and smoothing radius h and returns
// 4/(πh⁸)·(h²−r²)³ inside the support, 0 outside.
func DensityKernel(r2, h float64) float64 {
	h2 := h * h
	if r2 > h2 {
		return 0
	}
	d := h2 - r2
	return 4 / (math.Pi * math.Pow(h, 8)) * d * d * d
}

// PressureGradientMagnitude is the slope of the spiky kernel at distance √r2.
// The value is negative inside the support and 0 at and beyond h.
func PressureGradientMagnitude(r2, h float64) float64 {
	r := math.Sqrt(r2)
	if r > h {
		return 0
	}
	d := h - r
	return -30 / (math.Pi * math.Pow(h, 5)) * d * d
}
