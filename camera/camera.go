// Package camera maps the simulation's Y-up world onto screen pixels.
package camera

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/sph"
)

// Camera controls the viewport into the simulation box.
// World Y points up; screen Y points down.
type Camera struct {
	// Position is the camera center in world coordinates
	Center r2.Vec

	// Zoom level (1.0 = world height fills the viewport)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World height shown at zoom 1
	WorldH float64

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera that shows the whole box at zoom 1.
func New(viewportW, viewportH float32, box sph.BoundingBox) *Camera {
	return &Camera{
		Center:    box.Center(),
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldH:    box.Height(),
		MinZoom:   0.5,
		MaxZoom:   8.0,
	}
}

// AspectBox returns the box [-aspect, aspect] x [-1, 1] for a viewport,
// so the simulation fills the window at any aspect ratio.
func AspectBox(viewportW, viewportH float32) sph.BoundingBox {
	aspect := float64(viewportW) / float64(viewportH)
	return sph.BoundingBox{Left: -aspect, Right: aspect, Bottom: -1, Top: 1}
}

// PixelsPerUnit returns the current world-to-screen scale.
func (c *Camera) PixelsPerUnit() float32 {
	return c.ViewportH / float32(c.WorldH) * c.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	scale := c.PixelsPerUnit()
	sx = c.ViewportW/2 + float32(p.X-c.Center.X)*scale
	sy = c.ViewportH/2 - float32(p.Y-c.Center.Y)*scale
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	scale := float64(c.PixelsPerUnit())
	return r2.Vec{
		X: c.Center.X + float64(sx-c.ViewportW/2)/scale,
		Y: c.Center.Y - float64(sy-c.ViewportH/2)/scale,
	}
}

// ScaleLength converts a world distance to pixels.
func (c *Camera) ScaleLength(d float64) float32 {
	return float32(d) * c.PixelsPerUnit()
}

// IsVisible returns true if a circle at p with the given world radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return p.X+radius >= minX && p.X-radius <= maxX &&
		p.Y+radius >= minY && p.Y-radius <= maxY
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	scale := float64(c.PixelsPerUnit())
	c.Center.X -= float64(dx) / scale
	c.Center.Y += float64(dy) / scale
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset frames the given box at zoom 1.
func (c *Camera) Reset(box sph.BoundingBox) {
	c.Center = box.Center()
	c.WorldH = box.Height()
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	scale := float64(c.PixelsPerUnit())
	halfW := float64(c.ViewportW) / (2 * scale)
	halfH := float64(c.ViewportH) / (2 * scale)
	return c.Center.X - halfW, c.Center.Y - halfH, c.Center.X + halfW, c.Center.Y + halfH
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
