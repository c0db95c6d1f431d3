package delaunay

import (
	"github.com/golang/geo/r2"
)

// Point is a float64 2d point used in Delaunay triangulation.
type Point r2.Point

func (a Point) squaredDistance(b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

func (a Point) sub(b Point) Point {
	return Point{a.X - b.X, a.Y - b.Y}
}

func (a Point) cross(b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}
