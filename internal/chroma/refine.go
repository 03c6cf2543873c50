package chroma

// Refiner turns a hard backdrop mask into a smooth subject alpha ramp and
// optionally suppresses key-color spill on subject edges.
type Refiner struct {
	// blurRadius is the box kernel size in pixels, odd, 0 disables blur.
	blurRadius int
	// spill in [0,1] controls how strongly key-tinted edge pixels are
	// desaturated. 0 disables spill suppression.
	spill float64
	gen   *MaskGenerator

	scratch []uint8
}

// NewRefiner builds a refiner sharing the generator's key bounds for spill
// detection.
func NewRefiner(gen *MaskGenerator, blurRadius int, spill float64) *Refiner {
	return &Refiner{
		blurRadius: blurRadius,
		spill:      spill,
		gen:        gen,
	}
}

// Refine converts backdrop confidence into subject alpha in place:
// alpha = 255-backdrop, blurred into a soft edge ramp. When spill
// suppression is on, pixels in the edge zone still tinted by the key color
// are desaturated in pix proportionally to their backdrop confidence.
// Clearly-subject pixels (full alpha) are never touched.
func (r *Refiner) Refine(pix []uint8, mask []uint8, width, height int) {
	for i := range mask {
		mask[i] = 255 - mask[i]
	}

	if r.blurRadius > 1 {
		r.boxBlur(mask, width, height)
	}

	if r.spill > 0 {
		r.suppressSpill(pix, mask, width, height)
	}
}

// boxBlur applies a separable box filter of the configured kernel size.
// Two cheap passes approximate a Gaussian closely enough for mask edges.
func (r *Refiner) boxBlur(mask []uint8, width, height int) {
	if len(r.scratch) < len(mask) {
		r.scratch = make([]uint8, len(mask))
	}
	half := r.blurRadius / 2

	// Horizontal pass: mask -> scratch.
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			sum, count := 0, 0
			for k := -half; k <= half; k++ {
				xx := x + k
				if xx < 0 || xx >= width {
					continue
				}
				sum += int(mask[row+xx])
				count++
			}
			r.scratch[row+x] = uint8(sum / count)
		}
	}

	// Vertical pass: scratch -> mask.
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			sum, count := 0, 0
			for k := -half; k <= half; k++ {
				yy := y + k
				if yy < 0 || yy >= height {
					continue
				}
				sum += int(r.scratch[yy*width+x])
				count++
			}
			mask[y*width+x] = uint8(sum / count)
		}
	}
}

// suppressSpill desaturates edge pixels whose hue still matches the key
// color. The correction scales with both the configured strength and how
// strongly the pixel leans backdrop, so it fades out toward clean subject.
func (r *Refiner) suppressSpill(pix []uint8, mask []uint8, width, height int) {
	n := width * height
	for i := 0; i < n; i++ {
		a := mask[i]
		if a == 0 || a == 255 {
			continue
		}
		o := i * 4
		if !r.gen.IsKeyHue(pix[o], pix[o+1], pix[o+2]) {
			continue
		}
		gray := (int(pix[o]) + int(pix[o+1]) + int(pix[o+2])) / 3
		amount := r.spill * float64(255-a) / 255
		for c := 0; c < 3; c++ {
			v := float64(pix[o+c])
			pix[o+c] = uint8(v + (float64(gray)-v)*amount)
		}
	}
}
