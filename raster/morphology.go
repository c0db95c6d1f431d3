package raster

// Dilate returns the mask grown by the given number of binary dilation
// passes with a 4-connected cross structuring element.
func (m *Mask) Dilate(iterations int) *Mask {
	cur := m.Clone()
	for it := 0; it < iterations; it++ {
		next := cur.Clone()
		for y := 0; y < cur.height; y++ {
			for x := 0; x < cur.width; x++ {
				if !cur.Get(x, y) {
					continue
				}
				if x > 0 {
					next.Set(x-1, y, true)
				}
				if x < cur.width-1 {
					next.Set(x+1, y, true)
				}
				if y > 0 {
					next.Set(x, y-1, true)
				}
				if y < cur.height-1 {
					next.Set(x, y+1, true)
				}
			}
		}
		cur = next
	}
	return cur
}
