package chroma

// rgbToHSV converts an RGB pixel to hue/saturation/value. Hue uses the
// half-degree scale [0, 180), saturation and value [0, 255], so preset and
// custom bounds line up with the ranges ffmpeg and OpenCV-based tools use.
func rgbToHSV(r, g, b uint8) (uint8, uint8, uint8) {
	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	min := r
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}

	v := max
	if max == 0 {
		return 0, 0, 0
	}
	delta := int(max) - int(min)
	s := uint8(delta * 255 / int(max))
	if delta == 0 {
		return 0, 0, v
	}

	var h int
	switch max {
	case r:
		h = 30 * (int(g) - int(b)) / delta
	case g:
		h = 60 + 30*(int(b)-int(r))/delta
	default:
		h = 120 + 30*(int(r)-int(g))/delta
	}
	if h < 0 {
		h += 180
	}
	return uint8(h), s, v
}
