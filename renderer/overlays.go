package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/sph"
)

// DrawBoundingBox outlines the simulation box.
func DrawBoundingBox(cam *camera.Camera, box sph.BoundingBox) {
	x0, y0 := cam.WorldToScreen(r2.Vec{X: box.Left, Y: box.Top})
	x1, y1 := cam.WorldToScreen(r2.Vec{X: box.Right, Y: box.Bottom})
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 1, rl.Color{R: 90, G: 100, B: 120, A: 255})
}

// DrawHand draws the interaction radius around the hand, tinted by state.
func DrawHand(cam *camera.Camera, hand sph.Hand) {
	color := rl.Color{R: 160, G: 160, B: 160, A: 90}
	switch hand.State {
	case sph.HandPulling:
		color = rl.Color{R: 90, G: 200, B: 255, A: 200}
	case sph.HandPushing:
		color = rl.Color{R: 255, G: 120, B: 80, A: 200}
	}
	sx, sy := cam.WorldToScreen(hand.Position)
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, cam.ScaleLength(hand.Radius), color)
}

// DrawSupport draws the kernel support circle of radius h around p.
func DrawSupport(cam *camera.Camera, p r2.Vec, h float64) {
	sx, sy := cam.WorldToScreen(p)
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, cam.ScaleLength(h), rl.Color{R: 120, G: 255, B: 120, A: 160})
}

// DrawHashGrid draws the hash cell lines (cell size = h) inside the box.
func DrawHashGrid(cam *camera.Camera, box sph.BoundingBox, h float64) {
	if !(h > 0) {
		return
	}
	color := rl.Color{R: 60, G: 70, B: 80, A: 120}
	for x := math.Floor(box.Left/h) * h; x <= box.Right; x += h {
		if x < box.Left {
			continue
		}
		sx0, sy0 := cam.WorldToScreen(r2.Vec{X: x, Y: box.Bottom})
		sx1, sy1 := cam.WorldToScreen(r2.Vec{X: x, Y: box.Top})
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, color)
	}
	for y := math.Floor(box.Bottom/h) * h; y <= box.Top; y += h {
		if y < box.Bottom {
			continue
		}
		sx0, sy0 := cam.WorldToScreen(r2.Vec{X: box.Left, Y: y})
		sx1, sy1 := cam.WorldToScreen(r2.Vec{X: box.Right, Y: y})
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy1}, color)
	}
}
