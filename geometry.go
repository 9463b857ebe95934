package birdtrack

import "math"

// BoundingBox is an axis-aligned detection box in integer pixel coordinates.
// (X, Y) is the top-left corner; W and H are strictly positive.
type BoundingBox struct {
	X, Y, W, H int
}

// Centroid returns the box's geometric center using integer division,
// matching the contour extractor's (x + w/2, y + h/2) convention.
func (b BoundingBox) Centroid() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Point is an integer-pixel 2D coordinate.
type Point struct {
	X, Y int
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(o Point) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// distFloat is Euclidean distance between two float64-valued points, used
// for a probationary candidate's net displacement. Cumulative path length
// is summed with Point.Dist instead.
func distFloat(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}
