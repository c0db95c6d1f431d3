package raster

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/correspond/shape"
	"go.viam.com/correspond/transform"
)

// SoftwareRasterizer is a deterministic CPU implementation of the
// Rasterizer service: barycentric scanline fill with a depth test keeping
// the surface farthest along +z, the outward-facing side of an unwrapped
// cylinder. It holds no state and is safe for concurrent use.
type SoftwareRasterizer struct{}

// Rasterize implements Rasterizer.
func (SoftwareRasterizer) Rasterize(
	mesh *shape.TriMesh,
	clip *transform.Homogeneous,
	width, height int,
	attrs *shape.PointCloud,
) (*Image, *Image, error) {
	if width < 1 || height < 1 {
		return nil, nil, errors.Errorf("invalid raster size %dx%d", width, height)
	}
	pts := mesh.Points()
	if pts.Dims() != 3 {
		return nil, nil, &transform.DimensionMismatchError{What: "mesh dimensionality", Want: 3, Got: pts.Dims()}
	}
	if attrs == nil {
		return nil, nil, errors.New("per-vertex attributes are required")
	}
	if attrs.N() != pts.N() {
		return nil, nil, &transform.DimensionMismatchError{What: "per-vertex attribute count", Want: pts.N(), Got: attrs.N()}
	}
	if attrs.Dims() != 3 {
		return nil, nil, &transform.DimensionMismatchError{What: "per-vertex attribute dimensionality", Want: 3, Got: attrs.Dims()}
	}

	projected, err := clip.Apply(pts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "projecting mesh to clip space")
	}
	n := projected.N()
	px := make([]r2.Point, n)
	pz := make([]float64, n)
	w, h := float64(width), float64(height)
	for i := 0; i < n; i++ {
		c := projected.At(i)
		px[i] = r2.Point{X: (c[0] + 1) / 2 * w, Y: (1 - c[1]) / 2 * h}
		pz[i] = c[2]
	}

	shapeImg := NewImage(width, height)
	var rgbImg *Image
	textured := mesh.HasTexture()
	if textured {
		rgbImg = NewImage(width, height)
	}
	depth := make([]float64, width*height)
	for i := range depth {
		depth[i] = math.Inf(-1)
	}

	for _, tri := range mesh.Trilist() {
		a, b, c := px[tri[0]], px[tri[1]], px[tri[2]]
		area := b.Sub(a).Cross(c.Sub(a))
		if area == 0 {
			continue
		}
		minX := clampInt(int(math.Floor(min3(a.X, b.X, c.X))), 0, width-1)
		maxX := clampInt(int(math.Ceil(max3(a.X, b.X, c.X))), 0, width-1)
		minY := clampInt(int(math.Floor(min3(a.Y, b.Y, c.Y))), 0, height-1)
		maxY := clampInt(int(math.Ceil(max3(a.Y, b.Y, c.Y))), 0, height-1)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				p := r2.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
				w0 := c.Sub(b).Cross(p.Sub(b))
				w1 := a.Sub(c).Cross(p.Sub(c))
				w2 := b.Sub(a).Cross(p.Sub(a))
				if area > 0 {
					if w0 < 0 || w1 < 0 || w2 < 0 {
						continue
					}
				} else if w0 > 0 || w1 > 0 || w2 > 0 {
					continue
				}
				l0 := w0 / area
				l1 := w1 / area
				l2 := w2 / area

				z := l0*pz[tri[0]] + l1*pz[tri[1]] + l2*pz[tri[2]]
				di := y*width + x
				if z <= depth[di] {
					continue
				}
				depth[di] = z

				a0 := attrs.At(tri[0])
				a1 := attrs.At(tri[1])
				a2 := attrs.At(tri[2])
				shapeImg.SetXY(x, y,
					l0*a0[0]+l1*a1[0]+l2*a2[0],
					l0*a0[1]+l1*a1[1]+l2*a2[1],
					l0*a0[2]+l1*a1[2]+l2*a2[2],
				)
				if textured {
					tc := mesh.TCoords()
					t0, t1, t2 := tc.At2(tri[0]), tc.At2(tri[1]), tc.At2(tri[2])
					u := l0*t0.X + l1*t1.X + l2*t2.X
					v := l0*t0.Y + l1*t1.Y + l2*t2.Y
					cr, cg, cb := sampleBilinear(mesh.Texture(), u, v)
					rgbImg.SetXY(x, y, cr, cg, cb)
				}
			}
		}
	}
	return rgbImg, shapeImg, nil
}

// sampleBilinear reads a texture at normalized coordinates, u rightward and
// v downward from the top-left corner, clamping at the edges.
func sampleBilinear(tex image.Image, u, v float64) (float64, float64, float64) {
	bounds := tex.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	var cr, cg, cb float64
	taps := [4]struct {
		dx, dy int
		weight float64
	}{
		{0, 0, (1 - tx) * (1 - ty)},
		{1, 0, tx * (1 - ty)},
		{0, 1, (1 - tx) * ty},
		{1, 1, tx * ty},
	}
	for _, tap := range taps {
		x := clampInt(x0+tap.dx, 0, w-1)
		y := clampInt(y0+tap.dy, 0, h-1)
		r, g, b, _ := tex.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		cr += tap.weight * float64(r) / math.MaxUint16
		cg += tap.weight * float64(g) / math.MaxUint16
		cb += tap.weight * float64(b) / math.MaxUint16
	}
	return cr, cg, cb
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
