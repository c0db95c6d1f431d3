// Package raster provides the image-plane side of the correspondence
// pipeline: float attribute images with validity masks, mask morphology and
// convex-hull masking, and the rasterizer service interface with a
// deterministic software implementation.
package raster

import (
	"image"
	"image/color"
	"math"

	"go.viam.com/correspond/shape"
)

const channels = 3

// An Image is a width x height grid of 3-channel float64 attributes, either
// interpolated model-space positions (a shape image) or rgb colors in
// [0, 1], with a per-pixel validity mask marking which pixels were rendered
// to. It implements image.Image with an rgb interpretation so rendered
// color output can serve directly as a mesh texture.
type Image struct {
	width  int
	height int
	data   []float64
	mask   *Mask

	lmName string
	lms    *shape.PointCloud
}

// NewImage returns a zeroed, all-invalid image.
func NewImage(width, height int) *Image {
	return &Image{
		width:  width,
		height: height,
		data:   make([]float64, width*height*channels),
		mask:   NewMask(width, height),
	}
}

// Width returns the image width in pixels.
func (im *Image) Width() int {
	return im.width
}

// Height returns the image height in pixels.
func (im *Image) Height() int {
	return im.height
}

func (im *Image) idx(x, y int) int {
	return (y*im.width + x) * channels
}

// GetXY returns the three attribute channels at a pixel.
func (im *Image) GetXY(x, y int) (float64, float64, float64) {
	i := im.idx(x, y)
	return im.data[i], im.data[i+1], im.data[i+2]
}

// SetXY writes the three attribute channels at a pixel and marks it valid.
func (im *Image) SetXY(x, y int, c0, c1, c2 float64) {
	i := im.idx(x, y)
	im.data[i] = c0
	im.data[i+1] = c1
	im.data[i+2] = c2
	im.mask.Set(x, y, true)
}

// Valid reports whether a pixel has been rendered to.
func (im *Image) Valid(x, y int) bool {
	return im.mask.Get(x, y)
}

// Mask returns the image's validity mask.
func (im *Image) Mask() *Mask {
	return im.mask
}

// Data returns the underlying channel slice, row-major with 3 floats per
// pixel. It aliases the image's storage.
func (im *Image) Data() []float64 {
	return im.data
}

// AttachLandmarks stores a named landmark cloud in pixel coordinates.
func (im *Image) AttachLandmarks(name string, lms *shape.PointCloud) {
	im.lmName = name
	im.lms = lms
}

// Landmarks returns the attached landmark cloud, if any.
func (im *Image) Landmarks() (string, *shape.PointCloud, bool) {
	return im.lmName, im.lms, im.lms != nil
}

// Clone deep-copies the image. Attached landmarks are shared.
func (im *Image) Clone() *Image {
	out := &Image{
		width:  im.width,
		height: im.height,
		data:   append([]float64(nil), im.data...),
		mask:   im.mask.Clone(),
		lmName: im.lmName,
		lms:    im.lms,
	}
	return out
}

// ColorModel implements image.Image.
func (im *Image) ColorModel() color.Model {
	return color.RGBA64Model
}

// Bounds implements image.Image.
func (im *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.width, im.height)
}

// At implements image.Image, reading the channels as rgb in [0, 1].
func (im *Image) At(x, y int) color.Color {
	r, g, b := im.GetXY(x, y)
	return color.RGBA64{R: toUint16(r), G: toUint16(g), B: toUint16(b), A: math.MaxUint16}
}

func toUint16(v float64) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return math.MaxUint16
	default:
		return uint16(v*math.MaxUint16 + 0.5)
	}
}
