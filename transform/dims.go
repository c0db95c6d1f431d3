package transform

import (
	"go.viam.com/correspond/shape"
)

// ExtractDims keeps the first N coordinates of every point, taking a 3D
// cloud down to 2D.
type ExtractDims struct {
	N int
}

// Apply drops the trailing coordinates of every point.
func (e *ExtractDims) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if e.N >= pc.Dims() {
		return nil, &DimensionMismatchError{What: "extracted dimensionality", Want: pc.Dims() - 1, Got: e.N}
	}
	n := pc.N()
	data := make([]float64, 0, n*e.N)
	for i := 0; i < n; i++ {
		data = append(data, pc.At(i)[:e.N]...)
	}
	return shape.NewPointCloud(data, e.N)
}

// AppendDims appends N constant coordinates to every point, taking a 2D
// cloud up to 3D.
type AppendDims struct {
	N     int
	Value float64
}

// Apply appends the constant coordinates to every point.
func (a *AppendDims) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if a.N < 1 {
		return nil, &DimensionMismatchError{What: "appended dimensionality", Want: 1, Got: a.N}
	}
	n := pc.N()
	dims := pc.Dims()
	data := make([]float64, 0, n*(dims+a.N))
	for i := 0; i < n; i++ {
		data = append(data, pc.At(i)...)
		for j := 0; j < a.N; j++ {
			data = append(data, a.Value)
		}
	}
	return shape.NewPointCloud(data, dims+a.N)
}
