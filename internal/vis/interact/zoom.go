// Package interact handles pan and zoom of the arena view.
package interact

import (
	"gioui.org/f32"
	"gioui.org/io/pointer"
	"github.com/paulmach/orb"
)

const (
	minZoom = 2
	maxZoom = 400
)

// Camera maps the ground plane onto the screen. World +z points up the
// screen, so the view matches a top-down map.
type Camera struct {
	// View transform
	OffsetX float32 // screen position of the world origin
	OffsetY float32
	Zoom    float32 // pixels per metre

	// Interaction state
	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a camera with default settings.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset resets camera to default view.
func (c *Camera) Reset() {
	c.OffsetX = 100
	c.OffsetY = 100
	c.Zoom = 30
}

// WorldToScreen converts a ground-plane point to screen coordinates.
func (c *Camera) WorldToScreen(p orb.Point) f32.Point {
	return f32.Point{
		X: float32(p[0])*c.Zoom + c.OffsetX,
		Y: -float32(p[1])*c.Zoom + c.OffsetY,
	}
}

// ScreenToWorld converts screen coordinates to a ground-plane point.
func (c *Camera) ScreenToWorld(sx, sy float32) orb.Point {
	return orb.Point{
		float64((sx - c.OffsetX) / c.Zoom),
		float64((c.OffsetY - sy) / c.Zoom),
	}
}

// Length converts a world distance to pixels.
func (c *Camera) Length(d float64) float32 {
	return float32(d) * c.Zoom
}

// HandleEvent processes pointer events for pan and zoom.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		c.dragging = true
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Release, pointer.Cancel:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan pans the camera by the given screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by a factor, keeping the world point under the screen point
// fixed.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	anchor := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)

	moved := c.WorldToScreen(anchor)
	c.OffsetX += centerX - moved.X
	c.OffsetY += centerY - moved.Y
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(p orb.Point, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(p[0])*c.Zoom
	c.OffsetY = screenHeight/2 + float32(p[1])*c.Zoom
}

// FitBounds adjusts the camera so the bound fills the screen less a margin.
func (c *Camera) FitBounds(b orb.Bound, screenWidth, screenHeight float32, margin float32) {
	worldW := b.Right() - b.Left()
	worldH := b.Top() - b.Bottom()
	if worldW <= 0 || worldH <= 0 {
		return
	}

	zoomX := (screenWidth - 2*margin) / float32(worldW)
	zoomY := (screenHeight - 2*margin) / float32(worldH)
	c.Zoom = clampZoom(min(zoomX, zoomY))
	c.CenterOn(b.Center(), screenWidth, screenHeight)
}

func clampZoom(z float32) float32 {
	return max(minZoom, min(maxZoom, z))
}
