package transform

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/correspond/shape"
)

var tpsControlPoints = []r2.Point{
	{X: 0, Y: 0},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: 0.5, Y: 0.5},
}

func TestThinPlateSplineIdentity(t *testing.T) {
	src := shape.NewPointCloud2(tpsControlPoints)
	tps, err := FitThinPlateSpline(src, src)
	test.That(t, err, test.ShouldBeNil)

	queries := shape.NewPointCloud2([]r2.Point{
		{X: 0.25, Y: 0.25}, {X: 0.75, Y: 0.1}, {X: 0.9, Y: 0.9}, {X: -0.5, Y: 2},
	})
	out, err := tps.Apply(queries)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < queries.N(); i++ {
		want := queries.At(i)
		got := out.At(i)
		test.That(t, got[0], test.ShouldAlmostEqual, want[0], 1e-9)
		test.That(t, got[1], test.ShouldAlmostEqual, want[1], 1e-9)
	}
}

func TestThinPlateSplineInterpolatesControlPoints(t *testing.T) {
	src := shape.NewPointCloud2(tpsControlPoints)
	tgt := shape.NewPointCloud2([]r2.Point{
		{X: 0.1, Y: -0.2},
		{X: 1.3, Y: 0.1},
		{X: 0.9, Y: 1.2},
		{X: -0.1, Y: 0.8},
		{X: 0.6, Y: 0.4},
	})
	tps, err := FitThinPlateSpline(src, tgt)
	test.That(t, err, test.ShouldBeNil)

	// a thin plate spline passes through its control points exactly
	out, err := tps.Apply(src)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < tgt.N(); i++ {
		want := tgt.At(i)
		got := out.At(i)
		test.That(t, got[0], test.ShouldAlmostEqual, want[0], 1e-6)
		test.That(t, got[1], test.ShouldAlmostEqual, want[1], 1e-6)
	}
}

func TestThinPlateSplineReproducesAffineMaps(t *testing.T) {
	// affinely related control points have no bending energy, so the spline
	// must act as that affine map everywhere
	affine := func(p r2.Point) r2.Point {
		return r2.Point{X: 2*p.X + 0.5*p.Y - 1, Y: -0.25*p.X + 1.5*p.Y + 2}
	}
	tgtPts := make([]r2.Point, len(tpsControlPoints))
	for i, p := range tpsControlPoints {
		tgtPts[i] = affine(p)
	}
	tps, err := FitThinPlateSpline(shape.NewPointCloud2(tpsControlPoints), shape.NewPointCloud2(tgtPts))
	test.That(t, err, test.ShouldBeNil)

	queries := []r2.Point{{X: 0.3, Y: 0.7}, {X: 2, Y: -1}, {X: -3, Y: 5}}
	out, err := tps.Apply(shape.NewPointCloud2(queries))
	test.That(t, err, test.ShouldBeNil)
	for i, q := range queries {
		want := affine(q)
		got := out.At(i)
		test.That(t, got[0], test.ShouldAlmostEqual, want.X, 1e-6)
		test.That(t, got[1], test.ShouldAlmostEqual, want.Y, 1e-6)
	}
}

func TestFitThinPlateSplineErrors(t *testing.T) {
	flat := shape.NewPointCloud2(tpsControlPoints)
	t.Run("source not 2D", func(t *testing.T) {
		solid := shape.NewPointCloud3(nil)
		_, err := FitThinPlateSpline(solid, flat)
		var dimErr *DimensionMismatchError
		test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	})
	t.Run("count mismatch", func(t *testing.T) {
		_, err := FitThinPlateSpline(flat, shape.NewPointCloud2(tpsControlPoints[:3]))
		var dimErr *DimensionMismatchError
		test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	})
	t.Run("too few control points", func(t *testing.T) {
		two := shape.NewPointCloud2(tpsControlPoints[:2])
		_, err := FitThinPlateSpline(two, two)
		var singErr *SingularSystemError
		test.That(t, errors.As(err, &singErr), test.ShouldBeTrue)
	})
	t.Run("collinear control points", func(t *testing.T) {
		line := shape.NewPointCloud2([]r2.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0},
		})
		_, err := FitThinPlateSpline(line, line)
		var singErr *SingularSystemError
		test.That(t, errors.As(err, &singErr), test.ShouldBeTrue)
	})
	t.Run("apply not 2D", func(t *testing.T) {
		tps, err := FitThinPlateSpline(flat, flat)
		test.That(t, err, test.ShouldBeNil)
		_, err = tps.Apply(shape.NewPointCloud3(nil))
		var dimErr *DimensionMismatchError
		test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	})
}
