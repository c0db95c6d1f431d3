package raster

import (
	"go.viam.com/correspond/shape"
	"go.viam.com/correspond/transform"
)

// A Rasterizer renders a triangle mesh through a clip-space projection into
// attribute images. The first return is an rgb image, nil when the mesh
// carries no texture; the second is the shape image holding the
// interpolated per-vertex attributes at every covered pixel. attrs supplies
// one 3D attribute per mesh vertex. Implementations must not retain the
// mesh and must be deterministic; whether one may be called from several
// goroutines at once is implementation-defined.
type Rasterizer interface {
	Rasterize(mesh *shape.TriMesh, clip *transform.Homogeneous, width, height int, attrs *shape.PointCloud) (*Image, *Image, error)
}
