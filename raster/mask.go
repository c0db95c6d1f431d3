package raster

// A Mask is a width x height boolean pixel grid.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// NewMask returns an all-false mask.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, bits: make([]bool, width*height)}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the mask height in pixels.
func (m *Mask) Height() int {
	return m.height
}

// Get returns the bit at a pixel.
func (m *Mask) Get(x, y int) bool {
	return m.bits[y*m.width+x]
}

// Set writes the bit at a pixel.
func (m *Mask) Set(x, y int, v bool) {
	m.bits[y*m.width+x] = v
}

// Count returns the number of true pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Clone deep-copies the mask.
func (m *Mask) Clone() *Mask {
	return &Mask{width: m.width, height: m.height, bits: append([]bool(nil), m.bits...)}
}
