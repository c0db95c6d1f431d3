// Package shape defines the geometric containers the correspondence pipeline
// passes between stages: ordered point clouds, triangle meshes and landmark
// sets.
package shape

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// A PointCloud is an ordered set of points of uniform dimensionality (2 or
// 3). A point's index is part of its identity: stages that map a cloud
// produce a new cloud whose ith point corresponds to the ith input point.
type PointCloud struct {
	data []float64 // row-major, n*dims
	dims int
}

// NewPointCloud wraps row-major coordinate data as a cloud of
// dims-dimensional points. The data slice is copied.
func NewPointCloud(data []float64, dims int) (*PointCloud, error) {
	if dims != 2 && dims != 3 {
		return nil, errors.Errorf("unsupported point dimensionality %d", dims)
	}
	if len(data)%dims != 0 {
		return nil, errors.Errorf("coordinate slice of length %d does not divide into %d-dimensional points", len(data), dims)
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &PointCloud{data: d, dims: dims}, nil
}

// NewPointCloud2 builds a 2D cloud from r2 points.
func NewPointCloud2(points []r2.Point) *PointCloud {
	data := make([]float64, 0, len(points)*2)
	for _, p := range points {
		data = append(data, p.X, p.Y)
	}
	return &PointCloud{data: data, dims: 2}
}

// NewPointCloud3 builds a 3D cloud from r3 vectors.
func NewPointCloud3(points []r3.Vector) *PointCloud {
	data := make([]float64, 0, len(points)*3)
	for _, p := range points {
		data = append(data, p.X, p.Y, p.Z)
	}
	return &PointCloud{data: data, dims: 3}
}

// N returns the number of points.
func (pc *PointCloud) N() int {
	return len(pc.data) / pc.dims
}

// Dims returns the dimensionality of each point.
func (pc *PointCloud) Dims() int {
	return pc.dims
}

// At returns the coordinates of the ith point. The slice aliases the cloud's
// storage, so writes through it mutate the cloud.
func (pc *PointCloud) At(i int) []float64 {
	return pc.data[i*pc.dims : (i+1)*pc.dims]
}

// At2 returns the ith point of a 2D cloud.
func (pc *PointCloud) At2(i int) r2.Point {
	p := pc.At(i)
	return r2.Point{X: p[0], Y: p[1]}
}

// At3 returns the ith point of a 3D cloud.
func (pc *PointCloud) At3(i int) r3.Vector {
	p := pc.At(i)
	return r3.Vector{X: p[0], Y: p[1], Z: p[2]}
}

// Data returns the underlying row-major coordinate slice. It aliases the
// cloud's storage.
func (pc *PointCloud) Data() []float64 {
	return pc.data
}

// Dense returns an N x Dims matrix view sharing the cloud's storage.
func (pc *PointCloud) Dense() *mat.Dense {
	return mat.NewDense(pc.N(), pc.dims, pc.data)
}

// Clone returns a deep copy of the cloud.
func (pc *PointCloud) Clone() *PointCloud {
	d := make([]float64, len(pc.data))
	copy(d, pc.data)
	return &PointCloud{data: d, dims: pc.dims}
}

// Centroid returns the mean position of the cloud.
func (pc *PointCloud) Centroid() []float64 {
	c := make([]float64, pc.dims)
	n := pc.N()
	for i := 0; i < n; i++ {
		p := pc.At(i)
		for d := range c {
			c[d] += p[d]
		}
	}
	for d := range c {
		c[d] /= float64(n)
	}
	return c
}

// Bounds returns the per-dimension minima and maxima of the cloud.
func (pc *PointCloud) Bounds() (min, max []float64) {
	min = make([]float64, pc.dims)
	max = make([]float64, pc.dims)
	n := pc.N()
	for d := range min {
		min[d] = pc.data[d]
		max[d] = pc.data[d]
	}
	for i := 1; i < n; i++ {
		p := pc.At(i)
		for d := range min {
			if p[d] < min[d] {
				min[d] = p[d]
			}
			if p[d] > max[d] {
				max[d] = p[d]
			}
		}
	}
	return min, max
}

// Range returns the per-dimension extent of the bounding box.
func (pc *PointCloud) Range() []float64 {
	min, max := pc.Bounds()
	for d := range min {
		max[d] -= min[d]
	}
	return max
}

// CenterOfBounds returns the midpoint of the bounding box.
func (pc *PointCloud) CenterOfBounds() []float64 {
	min, max := pc.Bounds()
	for d := range min {
		max[d] = (min[d] + max[d]) / 2
	}
	return max
}
