// Package core provides the fixed-point math, collision geometry, input
// model and screen buffer shared by the simulation, the verifier and the
// terminal client. It has no external dependencies so game logic stays pure
// and testable.
package core

// Rect represents an axis-aligned bounding box used for collision detection.
// The simulation uses fixed-point units; the screen buffer uses cells.
type Rect struct {
	X, Y int // Bottom-left corner in world space, top-left on screen
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// FixedRect builds a rectangle from fixed-point coordinates.
func FixedRect(x, y, w, h Fixed) Rect {
	return Rect{X: int(x), Y: int(y), W: int(w), H: int(h)}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the edge opposite Y.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Intersects returns true if this rectangle overlaps with another.
// Touching edges do not count as overlap.
func (r Rect) Intersects(other Rect) bool {
	if r.W <= 0 || r.H <= 0 || other.W <= 0 || other.H <= 0 {
		return false
	}
	if r.X >= other.Right() || other.X >= r.Right() {
		return false
	}
	if r.Y >= other.Bottom() || other.Y >= r.Bottom() {
		return false
	}
	return true
}

// SpanWithin reports whether [x, x+w) lies entirely inside the rectangle's
// horizontal extent.
func (r Rect) SpanWithin(x, w int) bool {
	return x >= r.X && x+w <= r.Right()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
