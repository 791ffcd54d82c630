// internal/planner/point.go
package planner

import "math"

// Point is a pixel position on the interaction plane.
type Point struct {
	// X is the horizontal coordinate, growing rightward.
	X int
	// Y is the vertical coordinate, growing downward.
	Y int
}

// DistanceTo calculates the Euclidean distance between `p` and `other`.
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(float64(p.X-other.X), float64(p.Y-other.Y))
}

// Add returns the point translated by dx and dy.
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Region is a rectangle on the interaction plane with inclusive bounds.
// Construct through NewRegion so the corner ordering invariant holds.
type Region struct {
	X1, Y1 int
	X2, Y2 int
}

// NewRegion builds a Region from two opposite corners given in any order.
func NewRegion(x1, y1, x2, y2 int) Region {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Region{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent of the region.
func (r Region) Width() int {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the region.
func (r Region) Height() int {
	return r.Y2 - r.Y1
}

// Center returns the geometric center of the region, rounded toward the
// top-left on odd extents.
func (r Region) Center() Point {
	return Point{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Contains reports whether p lies inside the region, edges included.
func (r Region) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

// DistanceTo calculates the distance from the region's center to p.
func (r Region) DistanceTo(p Point) float64 {
	return r.Center().DistanceTo(p)
}
