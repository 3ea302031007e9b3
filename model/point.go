package model

import "math"

// Point is a 2-D grid coordinate inside the simulated field.
type Point struct {
	X float64
	Y float64
}

// Mul returns the point scaled by k (grid cells to metres).
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Element is a located antenna: a point plus its height above ground in metres.
type Element struct {
	Location Point
	Height   float64
}

// Mul scales the element's location by k. Height is already in metres and is
// left untouched.
func (e Element) Mul(k float64) Element {
	return Element{Location: e.Location.Mul(k), Height: e.Height}
}
