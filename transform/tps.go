package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/correspond/shape"
)

const tpsDims = 2

// tpsKernel is the thin-plate radial basis r^2 log(r^2) on a squared
// distance, with the removable singularity at zero patched out.
func tpsKernel(rsq float64) float64 {
	if rsq == 0 {
		return 0
	}
	return rsq * math.Log(rsq)
}

// A ThinPlateSpline is the 2D biharmonic interpolant that carries its source
// control points onto its targets exactly while minimizing bending energy
// everywhere else.
type ThinPlateSpline struct {
	src  *shape.PointCloud
	coef *mat.Dense // (n+3) x 2: kernel weights then affine rows [1 x y]
}

// FitThinPlateSpline solves for the spline mapping src onto tgt. Both clouds
// must be 2D with equal point counts.
func FitThinPlateSpline(src, tgt *shape.PointCloud) (*ThinPlateSpline, error) {
	if src.Dims() != tpsDims {
		return nil, &DimensionMismatchError{What: "spline source dimensionality", Want: tpsDims, Got: src.Dims()}
	}
	if tgt.Dims() != tpsDims {
		return nil, &DimensionMismatchError{What: "spline target dimensionality", Want: tpsDims, Got: tgt.Dims()}
	}
	if src.N() != tgt.N() {
		return nil, &DimensionMismatchError{What: "control point count", Want: tgt.N(), Got: src.N()}
	}
	n := src.N()
	if n < 3 {
		return nil, &SingularSystemError{
			Op:     "thin plate spline fit",
			Reason: fmt.Sprintf("need at least 3 control points, got %d", n),
		}
	}

	size := n + 3
	l := mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		pi := src.At2(i)
		for j := i + 1; j < n; j++ {
			d := pi.Sub(src.At2(j))
			u := tpsKernel(d.Dot(d))
			l.Set(i, j, u)
			l.Set(j, i, u)
		}
		l.Set(i, n, 1)
		l.Set(i, n+1, pi.X)
		l.Set(i, n+2, pi.Y)
		l.Set(n, i, 1)
		l.Set(n+1, i, pi.X)
		l.Set(n+2, i, pi.Y)
	}
	rhs := mat.NewDense(size, tpsDims, nil)
	for i := 0; i < n; i++ {
		g := tgt.At2(i)
		rhs.Set(i, 0, g.X)
		rhs.Set(i, 1, g.Y)
	}

	var lu mat.LU
	lu.Factorize(l)
	var coef mat.Dense
	if err := lu.SolveTo(&coef, false, rhs); err != nil {
		return nil, &SingularSystemError{
			Op:     "thin plate spline fit",
			Reason: "control points are degenerate (coincident or collinear)",
		}
	}
	return &ThinPlateSpline{src: src.Clone(), coef: &coef}, nil
}

// Apply evaluates the spline at every point of a 2D cloud.
func (t *ThinPlateSpline) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if pc.Dims() != tpsDims {
		return nil, &DimensionMismatchError{What: "point dimensionality", Want: tpsDims, Got: pc.Dims()}
	}
	n := t.src.N()
	out := pc.Clone()
	m := out.N()
	for i := 0; i < m; i++ {
		p := out.At(i)
		x := t.coef.At(n, 0) + t.coef.At(n+1, 0)*p[0] + t.coef.At(n+2, 0)*p[1]
		y := t.coef.At(n, 1) + t.coef.At(n+1, 1)*p[0] + t.coef.At(n+2, 1)*p[1]
		for j := 0; j < n; j++ {
			c := t.src.At2(j)
			dx := p[0] - c.X
			dy := p[1] - c.Y
			u := tpsKernel(dx*dx + dy*dy)
			x += t.coef.At(j, 0) * u
			y += t.coef.At(j, 1) * u
		}
		p[0] = x
		p[1] = y
	}
	return out, nil
}
