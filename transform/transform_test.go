package transform

import (
	"errors"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/correspond/shape"
)

func TestTranslation(t *testing.T) {
	pc := shape.NewPointCloud3([]r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 0, Z: 0.5}})
	out, err := (&Translation{Offset: []float64{10, -2, 0}}).Apply(pc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Data(), test.ShouldResemble, []float64{11, 0, 3, 9, -2, 0.5})
	// the input is untouched
	test.That(t, pc.At(0)[0], test.ShouldEqual, 1.0)

	_, err = (&Translation{Offset: []float64{1, 2}}).Apply(pc)
	var dimErr *DimensionMismatchError
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
}

func TestScale(t *testing.T) {
	pc := shape.NewPointCloud3([]r3.Vector{{X: 1, Y: 2, Z: 3}})
	out, err := (&Scale{Factors: []float64{2, -1, 0.5}}).Apply(pc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Data(), test.ShouldResemble, []float64{2, -2, 1.5})

	_, err = (&Scale{Factors: []float64{2}}).Apply(pc)
	var dimErr *DimensionMismatchError
	test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
}

func TestChain(t *testing.T) {
	pc := shape.NewPointCloud3([]r3.Vector{{X: 1, Y: 1, Z: 1}})

	t.Run("applies in order", func(t *testing.T) {
		chain := &Chain{Transforms: []Transform{
			&Translation{Offset: []float64{1, 0, 0}},
			&Scale{Factors: []float64{10, 10, 10}},
		}}
		out, err := chain.Apply(pc)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.Data(), test.ShouldResemble, []float64{20, 10, 10})
	})

	t.Run("empty chain copies", func(t *testing.T) {
		out, err := (&Chain{}).Apply(pc)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out, test.ShouldNotEqual, pc)
		test.That(t, out.Data(), test.ShouldResemble, pc.Data())
	})

	t.Run("wraps member errors", func(t *testing.T) {
		chain := &Chain{Transforms: []Transform{&Translation{Offset: []float64{1}}}}
		_, err := chain.Apply(pc)
		var dimErr *DimensionMismatchError
		test.That(t, errors.As(err, &dimErr), test.ShouldBeTrue)
	})
}

func TestApplyToMesh(t *testing.T) {
	pts := shape.NewPointCloud3([]r3.Vector{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
	})
	mesh, err := shape.NewTriMesh(pts, [][3]int{{0, 1, 2}})
	test.That(t, err, test.ShouldBeNil)
	lms := shape.NewLandmarkSet()
	err = lms.SetPoints("anchors", shape.NewPointCloud3([]r3.Vector{{X: 0.5, Y: 0.5, Z: 0}}))
	test.That(t, err, test.ShouldBeNil)
	mesh.SetLandmarks(lms)

	moved, err := ApplyToMesh(&Translation{Offset: []float64{0, 0, 5}}, mesh)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, moved.Trilist(), test.ShouldResemble, mesh.Trilist())
	test.That(t, moved.Points().At(0)[2], test.ShouldEqual, 5.0)

	// landmarks ride along with the points
	g, err := moved.Landmarks().Group("anchors")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.All().At(0)[2], test.ShouldEqual, 5.0)

	_, err = ApplyToMesh(&Translation{Offset: []float64{1}}, mesh)
	test.That(t, err, test.ShouldNotBeNil)
}
