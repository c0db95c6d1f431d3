package shape

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func makeLandmarkSet(t *testing.T) *LandmarkSet {
	t.Helper()
	pts := NewPointCloud2([]r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}})
	g, err := NewLandmarkGroupWithLabels(pts, map[string][]int{
		"left":  {0, 2},
		"right": {1, 3},
	})
	test.That(t, err, test.ShouldBeNil)
	ls := NewLandmarkSet()
	test.That(t, ls.Set("corners", g), test.ShouldBeNil)
	return ls
}

func TestLandmarkGroupLabels(t *testing.T) {
	ls := makeLandmarkSet(t)
	g, err := ls.Group("corners")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.N(), test.ShouldEqual, 4)
	test.That(t, g.Labels(), test.ShouldResemble, []string{"left", "right"})

	left, err := g.Subset("left")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, left.N(), test.ShouldEqual, 2)
	test.That(t, left.At2(1), test.ShouldResemble, r2.Point{X: 0, Y: 1})

	all, err := g.Subset(LabelAll)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, all.N(), test.ShouldEqual, 4)

	blank, err := g.Subset("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, blank.N(), test.ShouldEqual, 4)

	_, err = g.Subset("nose")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "nose")
}

func TestLandmarkGroupBadLabels(t *testing.T) {
	pts := NewPointCloud2([]r2.Point{{X: 0, Y: 0}})
	_, err := NewLandmarkGroupWithLabels(pts, map[string][]int{"oops": {0, 1}})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLandmarkSetGroupSelection(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		_, err := NewLandmarkSet().Group("")
		test.That(t, err, test.ShouldNotBeNil)
	})
	t.Run("sole group by empty name", func(t *testing.T) {
		ls := makeLandmarkSet(t)
		g, err := ls.Group("")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g.N(), test.ShouldEqual, 4)
	})
	t.Run("several groups need a name", func(t *testing.T) {
		ls := makeLandmarkSet(t)
		test.That(t, ls.SetPoints("extra", NewPointCloud2([]r2.Point{{X: 9, Y: 9}})), test.ShouldBeNil)
		_, err := ls.Group("")
		test.That(t, err, test.ShouldNotBeNil)
		g, err := ls.Group("extra")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g.N(), test.ShouldEqual, 1)
	})
	t.Run("unknown group", func(t *testing.T) {
		ls := makeLandmarkSet(t)
		_, err := ls.Group("eyebrows")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestLandmarkSetMap(t *testing.T) {
	ls := makeLandmarkSet(t)
	shifted, err := ls.Map(func(pc *PointCloud) (*PointCloud, error) {
		out := pc.Clone()
		for i := 0; i < out.N(); i++ {
			out.At(i)[0] += 10
		}
		return out, nil
	})
	test.That(t, err, test.ShouldBeNil)

	g, err := shifted.Group("corners")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.All().At2(0), test.ShouldResemble, r2.Point{X: 10, Y: 0})
	// labels survive the mapping
	left, err := g.Subset("left")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, left.At2(1), test.ShouldResemble, r2.Point{X: 10, Y: 1})
	// the original set is untouched
	og, err := ls.Group("corners")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, og.All().At2(0), test.ShouldResemble, r2.Point{X: 0, Y: 0})

	_, err = ls.Map(func(*PointCloud) (*PointCloud, error) {
		return nil, errors.New("boom")
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "boom")
}

func TestLandmarkSetClone(t *testing.T) {
	ls := makeLandmarkSet(t)
	cl := ls.Clone()
	g, err := cl.Group("corners")
	test.That(t, err, test.ShouldBeNil)
	g.All().At(0)[0] = 55
	og, err := ls.Group("corners")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, og.All().At2(0).X, test.ShouldEqual, 0)
}
