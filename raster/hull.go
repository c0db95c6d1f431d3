package raster

import (
	"sort"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/correspond/shape"
)

// MaskFromConvexHull returns a mask with every pixel whose center lies
// inside (or on) the convex hull of the given pixel-space points set true.
// At least 3 non-collinear points are required.
func MaskFromConvexHull(pc *shape.PointCloud, width, height int) (*Mask, error) {
	if pc.Dims() != 2 {
		return nil, errors.Errorf("hull points must be 2D, got %dD", pc.Dims())
	}
	if pc.N() < 3 {
		return nil, errors.Errorf("hull needs at least 3 points, got %d", pc.N())
	}
	pts := make([]r2.Point, pc.N())
	for i := range pts {
		pts[i] = pc.At2(i)
	}
	hull := convexHull(pts)
	if len(hull) < 3 {
		return nil, errors.New("hull points are collinear")
	}

	mask := NewMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			center := r2.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if insideConvex(hull, center) {
				mask.Set(x, y, true)
			}
		}
	}
	return mask, nil
}

// convexHull computes the convex hull of a point set with the monotone
// chain algorithm, returned in counter-clockwise order with collinear
// boundary points dropped.
func convexHull(pts []r2.Point) []r2.Point {
	p := append([]r2.Point(nil), pts...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})

	cross := func(o, a, b r2.Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}
	var lower []r2.Point
	for _, q := range p {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], q) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, q)
	}
	var upper []r2.Point
	for i := len(p) - 1; i >= 0; i-- {
		q := p[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], q) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, q)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// insideConvex reports whether q lies inside or on a counter-clockwise hull.
func insideConvex(hull []r2.Point, q r2.Point) bool {
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		if b.Sub(a).Cross(q.Sub(a)) < 0 {
			return false
		}
	}
	return true
}
