package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/correspond/shape"
)

// A CylindricalUnwrap maps 3D points into a flattened cylindrical frame:
// azimuth times radius (arc length), height, and radial displacement from
// the cylinder wall. The seam sits at azimuth +-pi, behind the cylinder.
type CylindricalUnwrap struct {
	center r2.Point // cylinder axis position in the x-z plane
	radius float64
}

// NewCylindricalUnwrap builds an unwrap around a known vertical axis.
func NewCylindricalUnwrap(center r2.Point, radius float64) *CylindricalUnwrap {
	return &CylindricalUnwrap{center: center, radius: radius}
}

// FitCylindricalUnwrap fits a vertical cylinder to the target cloud with an
// algebraic least-squares circle fit on its x-z coordinates.
func FitCylindricalUnwrap(target *shape.PointCloud) (*CylindricalUnwrap, error) {
	if target.Dims() != 3 {
		return nil, &DimensionMismatchError{What: "target dimensionality", Want: 3, Got: target.Dims()}
	}
	n := target.N()
	if n < 3 {
		return nil, &SingularSystemError{Op: "cylinder fit", Reason: "need at least 3 points"}
	}

	// (x-cx)^2+(z-cz)^2=r^2 rearranged to 2x*cx + 2z*cz + c = x^2+z^2
	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		p := target.At(i)
		x, z := p[0], p[2]
		a.Set(i, 0, 2*x)
		a.Set(i, 1, 2*z)
		a.Set(i, 2, 1)
		b.SetVec(i, x*x+z*z)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, &SingularSystemError{Op: "cylinder fit", Reason: "x-z positions are degenerate (coincident or collinear)"}
	}
	cx, cz, c := sol.AtVec(0), sol.AtVec(1), sol.AtVec(2)
	rsq := c + cx*cx + cz*cz
	if rsq <= 0 || math.IsNaN(rsq) {
		return nil, &SingularSystemError{Op: "cylinder fit", Reason: "fitted radius is not positive"}
	}
	return &CylindricalUnwrap{center: r2.Point{X: cx, Y: cz}, radius: math.Sqrt(rsq)}, nil
}

// Apply centers every point on the cylinder axis and unwraps it.
func (c *CylindricalUnwrap) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if pc.Dims() != 3 {
		return nil, &DimensionMismatchError{What: "point dimensionality", Want: 3, Got: pc.Dims()}
	}
	out := pc.Clone()
	n := out.N()
	for i := 0; i < n; i++ {
		p := out.At(i)
		x := p[0] - c.center.X
		z := p[2] - c.center.Y
		p[0] = math.Atan2(x, z) * c.radius
		p[2] = math.Hypot(x, z) - c.radius
	}
	return out, nil
}

// Radius returns the fitted cylinder radius.
func (c *CylindricalUnwrap) Radius() float64 {
	return c.radius
}

// Center returns the cylinder axis position in the x-z plane.
func (c *CylindricalUnwrap) Center() r2.Point {
	return c.center
}
