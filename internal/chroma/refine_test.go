package chroma

import (
	"testing"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

func greenGen(t *testing.T) *MaskGenerator {
	t.Helper()
	gen, err := NewMaskGenerator(models.KeyColor{Preset: models.KeyPresetGreen})
	if err != nil {
		t.Fatalf("NewMaskGenerator: %v", err)
	}
	return gen
}

func TestRefine_InvertsMask(t *testing.T) {
	gen := greenGen(t)
	ref := NewRefiner(gen, 0, 0)

	pix := frameOf([3]uint8{0, 255, 0}, [3]uint8{255, 0, 0})
	mask := []uint8{255, 0}
	ref.Refine(pix, mask, 2, 1)

	if mask[0] != 0 {
		t.Errorf("expected backdrop pixel to end at alpha 0, got %d", mask[0])
	}
	if mask[1] != 255 {
		t.Errorf("expected subject pixel to end at alpha 255, got %d", mask[1])
	}
}

func TestRefine_BlurSoftensEdge(t *testing.T) {
	gen := greenGen(t)
	ref := NewRefiner(gen, 3, 0)

	// One row: backdrop on the left half, subject on the right.
	width := 8
	pix := make([]uint8, width*4)
	mask := []uint8{255, 255, 255, 255, 0, 0, 0, 0}
	ref.Refine(pix, mask, width, 1)

	// Far from the edge the mask stays hard.
	if mask[0] != 0 {
		t.Errorf("expected deep backdrop to stay 0, got %d", mask[0])
	}
	if mask[7] != 255 {
		t.Errorf("expected deep subject to stay 255, got %d", mask[7])
	}
	// At the boundary there must be a ramp.
	if mask[3] == 0 || mask[3] == 255 {
		t.Errorf("expected intermediate alpha at edge, got %d", mask[3])
	}
	if mask[4] == 0 || mask[4] == 255 {
		t.Errorf("expected intermediate alpha at edge, got %d", mask[4])
	}
	// Ramp must be monotonic from backdrop toward subject.
	for i := 1; i < width; i++ {
		if mask[i] < mask[i-1] {
			t.Errorf("expected non-decreasing ramp, got %v", mask)
			break
		}
	}
}

func TestRefine_UniformMaskUnchangedByBlur(t *testing.T) {
	gen := greenGen(t)
	ref := NewRefiner(gen, 5, 0)

	width, height := 4, 4
	pix := make([]uint8, width*height*4)
	mask := make([]uint8, width*height)
	for i := range mask {
		mask[i] = 255
	}
	ref.Refine(pix, mask, width, height)

	for i, a := range mask {
		if a != 0 {
			t.Fatalf("pixel %d: uniform backdrop should stay alpha 0 after blur, got %d", i, a)
		}
	}
}

func TestRefine_SpillDesaturatesEdgePixels(t *testing.T) {
	gen := greenGen(t)
	ref := NewRefiner(gen, 0, 1.0)

	// Both pixels are green-tinted subject; only the edge-zone pixel
	// (intermediate alpha) may be recolored.
	pix := frameOf([3]uint8{100, 200, 100}, [3]uint8{100, 200, 100})
	mask := []uint8{128, 0} // inverted below: alpha 127 and 255
	ref.Refine(pix, mask, 2, 1)

	if pix[1] >= 200 {
		t.Errorf("expected green channel of edge pixel reduced, got %d", pix[1])
	}
	if pix[0] <= 100 {
		t.Errorf("expected red channel of edge pixel raised toward gray, got %d", pix[0])
	}
	if pix[4] != 100 || pix[5] != 200 || pix[6] != 100 {
		t.Error("expected clearly-subject pixel to be untouched by spill suppression")
	}
}

func TestRefine_SpillIgnoresNonKeyHues(t *testing.T) {
	gen := greenGen(t)
	ref := NewRefiner(gen, 0, 1.0)

	// Red-tinted edge pixel: hue outside the key range, never recolored.
	pix := frameOf([3]uint8{200, 100, 100})
	mask := []uint8{128}
	ref.Refine(pix, mask, 1, 1)

	if pix[0] != 200 || pix[1] != 100 || pix[2] != 100 {
		t.Error("expected non-key hue to be left alone")
	}
}
