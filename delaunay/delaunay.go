// Package delaunay computes Delaunay triangulations of 2D point sets.
package delaunay

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// triangle is an index triple with its cached circumcircle.
type triangle struct {
	a, b, c int
	center  Point
	rsq     float64
}

// circumcircle returns the center and squared radius of the circle through
// the three points, and false when they are collinear.
func circumcircle(a, b, c Point) (Point, float64, bool) {
	d := 2 * ((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X))
	if d == 0 {
		return Point{}, 0, false
	}
	asq := a.X*a.X + a.Y*a.Y
	bsq := b.X*b.X + b.Y*b.Y
	csq := c.X*c.X + c.Y*c.Y
	center := Point{
		X: (asq*(b.Y-c.Y) + bsq*(c.Y-a.Y) + csq*(a.Y-b.Y)) / d,
		Y: (asq*(c.X-b.X) + bsq*(a.X-c.X) + csq*(b.X-a.X)) / d,
	}
	return center, center.squaredDistance(a), true
}

func makeTriangle(verts []Point, a, b, c int) (triangle, bool) {
	center, rsq, ok := circumcircle(verts[a], verts[b], verts[c])
	if !ok {
		return triangle{}, false
	}
	return triangle{a: a, b: b, c: c, center: center, rsq: rsq}, true
}

// Triangulate computes a Delaunay triangulation of the given points using
// the Bowyer-Watson incremental algorithm. Triangles are returned as index
// triples into the input slice, each oriented counter-clockwise, normalized
// to start at their smallest vertex index and sorted, so the output is a
// pure function of the input.
//
// TODO: point location scans every triangle per insertion; keep a
// last-inserted triangle hint if grids beyond a few thousand samples show up.
func Triangulate(points []Point) ([][3]int, error) {
	n := len(points)
	if n < 3 {
		return nil, errors.Errorf("triangulation needs at least 3 points, got %d", n)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	dmax := math.Max(maxX-minX, maxY-minY)
	if dmax == 0 {
		return nil, errors.New("triangulation points are coincident")
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	// the super-triangle encloses every input point by a wide margin
	verts := make([]Point, n, n+3)
	copy(verts, points)
	verts = append(verts,
		Point{X: midX - 20*dmax, Y: midY - dmax},
		Point{X: midX, Y: midY + 20*dmax},
		Point{X: midX + 20*dmax, Y: midY - dmax},
	)
	super, ok := makeTriangle(verts, n, n+1, n+2)
	if !ok {
		return nil, errors.New("triangulation bounds are degenerate")
	}
	tris := []triangle{super}

	type edge struct{ u, v int }
	norm := func(u, v int) edge {
		if u > v {
			u, v = v, u
		}
		return edge{u, v}
	}

	for i := 0; i < n; i++ {
		p := verts[i]
		var bad, kept []triangle
		for _, t := range tris {
			if p.squaredDistance(t.center) <= t.rsq {
				bad = append(bad, t)
			} else {
				kept = append(kept, t)
			}
		}
		// cavity boundary edges belong to exactly one removed triangle
		counts := make(map[edge]int, 3*len(bad))
		for _, t := range bad {
			counts[norm(t.a, t.b)]++
			counts[norm(t.b, t.c)]++
			counts[norm(t.c, t.a)]++
		}
		for _, t := range bad {
			for _, e := range [3][2]int{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}} {
				if counts[norm(e[0], e[1])] != 1 {
					continue
				}
				if nt, ok := makeTriangle(verts, e[0], e[1], i); ok {
					kept = append(kept, nt)
				}
			}
		}
		tris = kept
	}

	out := make([][3]int, 0, len(tris))
	for _, t := range tris {
		if t.a >= n || t.b >= n || t.c >= n {
			continue
		}
		a, b, c := t.a, t.b, t.c
		if verts[b].sub(verts[a]).cross(verts[c].sub(verts[a])) < 0 {
			b, c = c, b
		}
		out = append(out, rotateToSmallest(a, b, c))
	}
	if len(out) == 0 {
		return nil, errors.New("triangulation points are collinear")
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][2] < out[j][2]
	})
	return out, nil
}

// rotateToSmallest cycles the triple so the smallest index leads, preserving
// orientation.
func rotateToSmallest(a, b, c int) [3]int {
	switch {
	case b < a && b < c:
		return [3]int{b, c, a}
	case c < a && c < b:
		return [3]int{c, a, b}
	default:
		return [3]int{a, b, c}
	}
}
