// Package transform implements the spatial mappings the correspondence
// pipeline is built from: closed-form similarity (Procrustes) and iterative
// closest point alignment, thin-plate-spline warps, cylindrical unwrapping,
// dimension bookkeeping and clip-space projection.
package transform

import (
	"github.com/pkg/errors"

	"go.viam.com/correspond/shape"
)

// A Transform maps every point of a cloud forward, producing a new cloud
// with one output point per input point. Implementations never mutate their
// input.
type Transform interface {
	Apply(pc *shape.PointCloud) (*shape.PointCloud, error)
}

// ApplyToMesh maps a mesh's points and landmarks through t, preserving
// connectivity and texture.
func ApplyToMesh(t Transform, m *shape.TriMesh) (*shape.TriMesh, error) {
	pts, err := t.Apply(m.Points())
	if err != nil {
		return nil, err
	}
	lms, err := m.Landmarks().Map(t.Apply)
	if err != nil {
		return nil, errors.Wrap(err, "transforming mesh landmarks")
	}
	return m.WithPoints(pts, lms)
}

// Translation offsets every point by a fixed vector.
type Translation struct {
	Offset []float64
}

// Apply adds the offset to every point.
func (t *Translation) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if pc.Dims() != len(t.Offset) {
		return nil, &DimensionMismatchError{What: "translation offset dimensionality", Want: len(t.Offset), Got: pc.Dims()}
	}
	out := pc.Clone()
	n := out.N()
	for i := 0; i < n; i++ {
		p := out.At(i)
		for d, off := range t.Offset {
			p[d] += off
		}
	}
	return out, nil
}

// Scale multiplies every point by per-dimension factors.
type Scale struct {
	Factors []float64
}

// Apply multiplies every coordinate by its dimension's factor.
func (s *Scale) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if pc.Dims() != len(s.Factors) {
		return nil, &DimensionMismatchError{What: "scale factor dimensionality", Want: len(s.Factors), Got: pc.Dims()}
	}
	out := pc.Clone()
	n := out.N()
	for i := 0; i < n; i++ {
		p := out.At(i)
		for d, f := range s.Factors {
			p[d] *= f
		}
	}
	return out, nil
}

// Chain applies a sequence of transforms in order.
type Chain struct {
	Transforms []Transform
}

// Apply feeds the cloud through every transform of the chain.
func (c *Chain) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	out := pc
	for i, t := range c.Transforms {
		next, err := t.Apply(out)
		if err != nil {
			return nil, errors.Wrapf(err, "applying chained transform %d", i)
		}
		out = next
	}
	if out == pc {
		out = pc.Clone()
	}
	return out, nil
}
