package chroma

import (
	"fmt"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// MaskGenerator classifies pixels as backdrop or subject for a fixed key
// color. It is a pure per-frame function: same frame and bounds always
// produce the same mask.
type MaskGenerator struct {
	lower models.HSV
	upper models.HSV
	// wraps is true when the hue range crosses the hue origin (e.g. a red
	// key); the test then becomes the union of [lower,180) and [0,upper].
	wraps bool
}

// NewMaskGenerator resolves the key color bounds once up front.
func NewMaskGenerator(key models.KeyColor) (*MaskGenerator, error) {
	lower, upper, err := key.Bounds()
	if err != nil {
		return nil, fmt.Errorf("resolving key color: %w", err)
	}
	if lower.S > upper.S || lower.V > upper.V {
		return nil, fmt.Errorf("key color bounds form an empty interval")
	}
	return &MaskGenerator{
		lower: lower,
		upper: upper,
		wraps: lower.H > upper.H,
	}, nil
}

// Generate writes backdrop confidence into dst: 255 where the pixel matches
// the key color on all three channels, 0 elsewhere. dst must hold
// width*height bytes; pix is the frame's flat RGBA buffer.
func (g *MaskGenerator) Generate(pix []uint8, width, height int, dst []uint8) {
	n := width * height
	for i := 0; i < n; i++ {
		o := i * 4
		h, s, v := rgbToHSV(pix[o], pix[o+1], pix[o+2])
		if g.matches(h, s, v) {
			dst[i] = 255
		} else {
			dst[i] = 0
		}
	}
}

// IsKeyHue reports whether a pixel's hue falls inside the key range,
// ignoring saturation and value. Used by spill suppression, which targets
// key-tinted pixels too desaturated to be classified as backdrop.
func (g *MaskGenerator) IsKeyHue(r, gr, b uint8) bool {
	h, _, _ := rgbToHSV(r, gr, b)
	if g.wraps {
		return h >= g.lower.H || h <= g.upper.H
	}
	return h >= g.lower.H && h <= g.upper.H
}

func (g *MaskGenerator) matches(h, s, v uint8) bool {
	if s < g.lower.S || s > g.upper.S {
		return false
	}
	if v < g.lower.V || v > g.upper.V {
		return false
	}
	if g.wraps {
		return h >= g.lower.H || h <= g.upper.H
	}
	return h >= g.lower.H && h <= g.upper.H
}
