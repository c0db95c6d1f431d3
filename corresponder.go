// Package correspond places landmarked triangular surface meshes into dense
// correspondence: every mesh a Corresponder processes comes back with the
// same vertex count, the same triangle connectivity and consistent
// per-vertex meaning, so vertex i of one output and vertex i of another name
// the same surface location.
//
// Each call rigidly aligns the input onto a target landmark configuration,
// unwraps it around a cylinder fitted to that target, warps the unwrapped
// plane so the input's landmarks land exactly on the target's, renders the
// warped surface into a fixed-size attribute image, and resamples the image
// at a pixel grid computed once at construction and shared by every call.
package correspond

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/correspond/raster"
	"go.viam.com/correspond/shape"
	"go.viam.com/correspond/transform"
)

// targetLandmarkName labels the image-space target landmarks attached to
// every rendered shape image.
const targetLandmarkName = "target"

// A Result is the output of one Correspond call.
type Result struct {
	// Mesh is the fixed-topology correspondence mesh: grid-sampled,
	// rigidly-aligned 3D positions with the sampling grid's connectivity
	// and the input mesh's landmark set attached for provenance. For
	// textured input it is textured by RGB with grid tcoords.
	Mesh *shape.TriMesh
	// RGB is the rendered color image, nil for untextured input.
	RGB *raster.Image
	// Shape is the rendered position image the mesh was sampled from, with
	// the image-space target landmarks attached.
	Shape *raster.Image
}

// A Corresponder carries meshes into dense correspondence with a fixed
// target. All state after construction is read-only; calls are independent
// and order-insensitive. Concurrent Correspond calls are safe only if the
// injected rasterizer is itself safe for concurrent use.
type Corresponder struct {
	cfg     Config
	logger  golog.Logger
	rz      raster.Rasterizer
	aligner string

	target   *shape.PointCloud // 3D target landmark configuration
	template *shape.PointCloud // dense template, icp alignment only

	unwrap    *transform.CylindricalUnwrap
	flat      *flattener
	clip      *transform.Homogeneous
	width     int
	height    int
	imgTarget *shape.PointCloud // target landmarks in image space
	grid      *samplingGrid
}

// NewCorresponder builds a Corresponder that aligns each mesh onto the
// target by a similarity fit of its selected landmarks. A nil cfg selects
// DefaultConfig.
func NewCorresponder(
	target *shape.PointCloud,
	rz raster.Rasterizer,
	cfg *Config,
	logger golog.Logger,
) (*Corresponder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Aligner == AlignerICP {
		return nil, errors.New("config selects icp alignment, use NewCorresponderICP with a dense template")
	}
	return newCorresponder(target, nil, AlignerSimilarity, rz, cfg, logger)
}

// NewCorresponderICP builds a Corresponder that aligns each mesh onto a
// dense template cloud by iterative closest point; the target landmarks
// still drive the unwrap and the non-rigid warp. A nil cfg selects
// DefaultConfig with icp alignment.
func NewCorresponderICP(
	target, template *shape.PointCloud,
	rz raster.Rasterizer,
	cfg *Config,
	logger golog.Logger,
) (*Corresponder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
		cfg.Aligner = AlignerICP
	}
	if cfg.Aligner == AlignerSimilarity {
		return nil, errors.New("config selects similarity alignment, use NewCorresponder")
	}
	if template == nil || template.N() == 0 {
		return nil, errors.New("icp alignment needs a non-empty dense template cloud")
	}
	if template.Dims() != 3 {
		return nil, &transform.DimensionMismatchError{What: "template dimensionality", Want: 3, Got: template.Dims()}
	}
	return newCorresponder(target, template, AlignerICP, rz, cfg, logger)
}

func newCorresponder(
	target, template *shape.PointCloud,
	aligner string,
	rz raster.Rasterizer,
	cfg *Config,
	logger golog.Logger,
) (*Corresponder, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	if rz == nil {
		return nil, errors.New("corresponder needs a rasterizer")
	}
	if logger == nil {
		return nil, errors.New("corresponder needs a logger")
	}
	if target == nil {
		return nil, errors.New("corresponder needs a target landmark cloud")
	}
	if target.Dims() != 3 {
		return nil, &transform.DimensionMismatchError{What: "target dimensionality", Want: 3, Got: target.Dims()}
	}
	if target.N() < 3 {
		return nil, errors.Errorf("target needs at least 3 landmarks to span an image, got %d", target.N())
	}

	unwrap, err := transform.FitCylindricalUnwrap(target)
	if err != nil {
		return nil, errors.Wrap(err, "fitting target cylinder")
	}
	flatTarget, err := unwrap.Apply(target)
	if err != nil {
		return nil, err
	}
	rng := flatTarget.Range()
	if rng[0] == 0 {
		return nil, errors.New("flattened target has zero width")
	}
	width := cfg.ImageWidth
	height := int(rng[1] / rng[0] * float64(width))
	if height < 1 {
		return nil, errors.Errorf("flattened target aspect %v yields image height %d", rng[1]/rng[0], height)
	}

	clip, err := transform.ModelToClip(flatTarget, cfg.ClipSpaceScale)
	if err != nil {
		return nil, err
	}
	imgTarget, err := transform.ModelToImage(clip, width, height).Apply(flatTarget)
	if err != nil {
		return nil, err
	}
	mask, err := raster.MaskFromConvexHull(imgTarget, width, height)
	if err != nil {
		return nil, errors.Wrap(err, "masking target landmark hull")
	}
	mask = mask.Dilate(cfg.MaskDilation)
	grid, err := buildSamplingGrid(mask, cfg.SamplingRate)
	if err != nil {
		return nil, err
	}
	flatTarget2, err := (&transform.ExtractDims{N: 2}).Apply(flatTarget)
	if err != nil {
		return nil, err
	}

	c := &Corresponder{
		cfg:       *cfg,
		logger:    logger,
		rz:        rz,
		aligner:   aligner,
		target:    target.Clone(),
		unwrap:    unwrap,
		flat:      newFlattener(unwrap, flatTarget2, cfg.CyDeadZone),
		clip:      clip,
		width:     width,
		height:    height,
		imgTarget: imgTarget,
		grid:      grid,
	}
	if template != nil {
		c.template = template.Clone()
	}
	logger.Debugw("corresponder ready",
		"aligner", aligner,
		"cylinder_radius", unwrap.Radius(),
		"image_width", width,
		"image_height", height,
		"mask_pixels", mask.Count(),
		"grid_points", len(grid.pixels),
		"grid_triangles", len(grid.trilist),
	)
	return c, nil
}

// ImageSize returns the derived atlas dimensions in pixels.
func (c *Corresponder) ImageSize() (int, int) {
	return c.width, c.height
}

// GridSize returns the number of sampling grid points, the vertex count of
// every output mesh.
func (c *Corresponder) GridSize() int {
	return len(c.grid.pixels)
}

// Correspond runs the full pipeline on one mesh: select the landmark cloud
// named by group and label, align, unwrap, warp, render, and resample at the
// fixed grid. An empty group selects the mesh's sole landmark group; an
// empty label selects the whole group. Grid pixels the rendered surface does
// not cover sample as zeros. A failure at any stage aborts the call without
// touching the Corresponder's precomputed state.
func (c *Corresponder) Correspond(mesh *shape.TriMesh, group, label string) (*Result, error) {
	if mesh == nil {
		return nil, errors.New("correspond needs a mesh")
	}
	lmGroup, err := mesh.Landmarks().Group(group)
	if err != nil {
		return nil, err
	}
	lms, err := lmGroup.Subset(label)
	if err != nil {
		return nil, err
	}
	if lms.N() != c.target.N() {
		return nil, &transform.DimensionMismatchError{What: "landmark count", Want: c.target.N(), Got: lms.N()}
	}

	fit, err := c.align(mesh, lms)
	if err != nil {
		return nil, err
	}
	aligned, err := transform.ApplyToMesh(fit, mesh)
	if err != nil {
		return nil, errors.Wrap(err, "aligning mesh")
	}
	alignedLms, err := fit.Apply(lms)
	if err != nil {
		return nil, err
	}

	flatMesh, err := c.flat.flatten(aligned, alignedLms)
	if err != nil {
		return nil, err
	}

	rgbImg, shapeImg, err := c.rz.Rasterize(flatMesh, c.clip, c.width, c.height, aligned.Points())
	if err != nil {
		return nil, errors.Wrap(err, "rasterizing flattened mesh")
	}
	shapeImg.AttachLandmarks(targetLandmarkName, c.imgTarget.Clone())

	points, err := c.grid.sample(shapeImg)
	if err != nil {
		return nil, err
	}
	var out *shape.TriMesh
	if mesh.HasTexture() && rgbImg != nil {
		out, err = shape.NewTexturedTriMesh(points, c.grid.tcoords, rgbImg, c.grid.trilist)
	} else {
		out, err = shape.NewTriMesh(points, c.grid.trilist)
	}
	if err != nil {
		return nil, err
	}
	out.SetLandmarks(mesh.Landmarks().Clone())
	return &Result{Mesh: out, RGB: rgbImg, Shape: shapeImg}, nil
}

// align fits the rigid motion carrying the mesh onto the alignment
// reference: the target landmarks for similarity alignment, the dense
// template for icp.
func (c *Corresponder) align(mesh *shape.TriMesh, lms *shape.PointCloud) (*transform.Similarity, error) {
	if c.aligner == AlignerICP {
		return transform.FitICP(mesh.Points(), c.template, c.cfg.ICP, c.logger)
	}
	return transform.FitSimilarity(lms, c.target)
}
