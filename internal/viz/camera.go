package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera projects world points (z up) onto a canvas. Pitch 0 looks
// straight down the z axis; pitch π/2 looks along the horizon.
type Camera struct {
	Yaw, Pitch float64
	Distance   float64
	Near       float64
	Zoom       float64
	// Extent is the world radius that fills the shorter canvas side at
	// zoom 1.
	Extent float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: -math.Pi / 8, Pitch: 1.0, Distance: 40, Near: 0.1, Zoom: 1, Extent: 6}
}

func (c *Camera) RotateYaw(a float64)   { c.Yaw += a }
func (c *Camera) RotatePitch(a float64) { c.Pitch = math.Max(0, math.Min(math.Pi/2, c.Pitch+a)) }
func (c *Camera) ZoomIn()               { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()              { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// View returns p in camera coordinates: x right, y up, z towards the
// viewer.
func (c *Camera) View(p r3.Vec) r3.Vec {
	p = r3.Rotate(p, c.Yaw, r3.Vec{Z: 1})
	return r3.Rotate(p, -c.Pitch, r3.Vec{X: 1})
}

// scale returns the dots per world unit at view depth z, or false when z
// is behind the near plane.
func (c *Camera) scale(z float64, w, h int) (float64, bool) {
	if z >= c.Distance-c.Near {
		return 0, false
	}
	minDim := float64(min(w, h))
	return c.Distance / (c.Distance - z) * minDim / (2 * c.Extent) * c.Zoom, true
}

// Project maps p onto a w x h dot grid. ok is false when p is behind the
// camera; points off the grid are still returned.
func (c *Camera) Project(p r3.Vec, w, h int) (x, y int, depth float64, ok bool) {
	q := c.View(p)
	s, ok := c.scale(q.Z, w, h)
	if !ok {
		return 0, 0, 0, false
	}
	x = int(math.Round(q.X*s)) + w/2
	y = int(math.Round(-q.Y*s)) + h/2
	return x, y, q.Z, true
}

// ProjectRadius returns the on-screen radius in dots of a sphere of radius
// r centred at p.
func (c *Camera) ProjectRadius(p r3.Vec, r float64, w, h int) float64 {
	s, ok := c.scale(c.View(p).Z, w, h)
	if !ok {
		return 0
	}
	return r * s
}
