package transform

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"go.viam.com/correspond/shape"
)

// A Homogeneous is a 3D transform in homogeneous coordinates.
type Homogeneous struct {
	m mgl64.Mat4
}

// NewHomogeneous wraps a 4x4 matrix as a transform.
func NewHomogeneous(m mgl64.Mat4) *Homogeneous {
	return &Homogeneous{m: m}
}

// Mat returns the underlying 4x4 matrix.
func (h *Homogeneous) Mat() mgl64.Mat4 {
	return h.m
}

// Apply maps every point of a 3D cloud through the matrix, dividing out the
// homogeneous coordinate.
func (h *Homogeneous) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if pc.Dims() != 3 {
		return nil, &DimensionMismatchError{What: "point dimensionality", Want: 3, Got: pc.Dims()}
	}
	out := pc.Clone()
	n := out.N()
	for i := 0; i < n; i++ {
		p := out.At(i)
		v := h.m.Mul4x1(mgl64.Vec4{p[0], p[1], p[2], 1})
		w := v.W()
		p[0] = v.X() / w
		p[1] = v.Y() / w
		p[2] = v.Z() / w
	}
	return out, nil
}

// ModelToClip builds the projection taking the cloud's bounding box to the
// center of clip space, scaled so the box occupies the given fraction of
// each clip axis. Zero-extent dimensions collapse to the clip origin.
func ModelToClip(pc *shape.PointCloud, scale float64) (*Homogeneous, error) {
	if pc.Dims() != 3 {
		return nil, &DimensionMismatchError{What: "cloud dimensionality", Want: 3, Got: pc.Dims()}
	}
	if pc.N() == 0 {
		return nil, errors.New("cannot frame an empty cloud")
	}
	if scale <= 0 || scale > 1 {
		return nil, errors.Errorf("clip space scale must be in (0, 1], got %v", scale)
	}
	ctr := pc.CenterOfBounds()
	rng := pc.Range()
	fit := func(r float64) float64 {
		if r == 0 {
			return 0
		}
		return 2 / r
	}
	m := mgl64.Scale3D(scale, scale, scale).
		Mul4(mgl64.Scale3D(fit(rng[0]), fit(rng[1]), fit(rng[2]))).
		Mul4(mgl64.Translate3D(-ctr[0], -ctr[1], -ctr[2]))
	return &Homogeneous{m: m}, nil
}

// ClipToImage maps clip-space x-y to continuous pixel coordinates: x to
// [0, width] left to right, y to [0, height] top down (clip +y is image up).
type ClipToImage struct {
	Width  int
	Height int
}

// Apply maps every 2D clip point into pixel space.
func (c *ClipToImage) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if pc.Dims() != 2 {
		return nil, &DimensionMismatchError{What: "point dimensionality", Want: 2, Got: pc.Dims()}
	}
	out := pc.Clone()
	n := out.N()
	w, h := float64(c.Width), float64(c.Height)
	for i := 0; i < n; i++ {
		p := out.At(i)
		p[0] = (p[0] + 1) / 2 * w
		p[1] = (1 - p[1]) / 2 * h
	}
	return out, nil
}

// ModelToImage chains a clip projection, 2D extraction and the pixel
// mapping, taking model-space 3D points to image coordinates.
func ModelToImage(clip *Homogeneous, width, height int) *Chain {
	return &Chain{Transforms: []Transform{
		clip,
		&ExtractDims{N: 2},
		&ClipToImage{Width: width, Height: height},
	}}
}
