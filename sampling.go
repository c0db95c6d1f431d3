package correspond

import (
	"image"

	"github.com/pkg/errors"

	"go.viam.com/correspond/raster"
	"go.viam.com/correspond/shape"
)

// A samplingGrid is the fixed set of pixel locations every correspondence
// output is sampled at, with a triangulation over them. Built once per
// Corresponder and never mutated.
type samplingGrid struct {
	pixels  []image.Point
	trilist [][3]int
	// tcoords are the pixels' centers normalized by the image size, u
	// rightward and v downward, ready to index rendered color output.
	tcoords *shape.PointCloud
}

// buildSamplingGrid collects the mask's set pixels at the given stride in
// row-major order and triangulates them.
func buildSamplingGrid(mask *raster.Mask, stride int) (*samplingGrid, error) {
	w, h := mask.Width(), mask.Height()
	var pixels []image.Point
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			if mask.Get(x, y) {
				pixels = append(pixels, image.Point{X: x, Y: y})
			}
		}
	}
	if len(pixels) < 3 {
		return nil, errors.Errorf("sampling grid has %d pixels, need at least 3 to mesh", len(pixels))
	}

	coords := make([]float64, 0, len(pixels)*2)
	tcoords := make([]float64, 0, len(pixels)*2)
	for _, p := range pixels {
		coords = append(coords, float64(p.X), float64(p.Y))
		tcoords = append(tcoords, (float64(p.X)+0.5)/float64(w), (float64(p.Y)+0.5)/float64(h))
	}
	pc, err := shape.NewPointCloud(coords, 2)
	if err != nil {
		return nil, err
	}
	gridMesh, err := shape.NewTriMesh(pc, nil)
	if err != nil {
		return nil, errors.Wrap(err, "triangulating sampling grid")
	}
	tc, err := shape.NewPointCloud(tcoords, 2)
	if err != nil {
		return nil, err
	}
	return &samplingGrid{pixels: pixels, trilist: gridMesh.Trilist(), tcoords: tc}, nil
}

// sample reads the image's channels at every grid pixel, producing one 3D
// point per grid location. Pixels the mesh never covered read back their
// zero fill.
func (g *samplingGrid) sample(img *raster.Image) (*shape.PointCloud, error) {
	data := make([]float64, 0, len(g.pixels)*3)
	for _, p := range g.pixels {
		c0, c1, c2 := img.GetXY(p.X, p.Y)
		data = append(data, c0, c1, c2)
	}
	return shape.NewPointCloud(data, 3)
}
