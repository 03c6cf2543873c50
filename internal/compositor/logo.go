package compositor

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// LogoStage blends a static watermark image onto composited frames. The
// logo is loaded and scaled once; per frame only the blend runs. It is
// independent of the composite's active window but honors its own optional
// display window.
type LogoStage struct {
	pix     []uint8
	width   int
	height  int
	x       int
	y       int
	opacity float64
	start   float64
	end     *float64
}

// NewLogoStage loads the logo image, scales it relative to the output video
// width and resolves its placement against the given video dimensions.
func NewLogoStage(opts models.LogoOptions, videoWidth, videoHeight int) (*LogoStage, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("opening logo: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding logo %s: %w", opts.Path, err)
	}

	b := img.Bounds()
	w := int(float64(videoWidth) * opts.Scale)
	if w < 1 {
		w = 1
	}
	h := w * b.Dy() / b.Dx()
	if h < 1 {
		h = 1
	}
	scaled := resize.Resize(uint(w), uint(h), img, resize.Bilinear)

	s := &LogoStage{
		pix:     rgbaPix(scaled, nil),
		width:   w,
		height:  h,
		opacity: opts.Opacity,
		start:   opts.StartTime,
		end:     opts.EndTime,
	}
	s.x, s.y = logoPlacement(opts, videoWidth, videoHeight, w, h)
	return s, nil
}

// logoPlacement resolves a named corner or custom offset to pixel
// coordinates of the logo's top-left corner.
func logoPlacement(opts models.LogoOptions, videoW, videoH, logoW, logoH int) (int, int) {
	m := opts.Margin
	switch opts.Position {
	case models.LogoTopLeft:
		return m, m
	case models.LogoTopRight:
		return videoW - logoW - m, m
	case models.LogoBottomLeft:
		return m, videoH - logoH - m
	case models.LogoBottomRight:
		return videoW - logoW - m, videoH - logoH - m
	case models.LogoCenter:
		return (videoW - logoW) / 2, (videoH - logoH) / 2
	case models.LogoCustom:
		return opts.CustomX, opts.CustomY
	default:
		return m, m
	}
}

// Apply blends the logo into the frame using the logo's own alpha channel
// multiplied by the configured opacity. Outside the logo's display window
// the frame passes through unchanged.
func (s *LogoStage) Apply(frame *models.Frame, t float64) {
	if t < s.start || (s.end != nil && t >= *s.end) {
		return
	}

	opq := int(s.opacity * 255)
	if opq == 0 {
		return
	}

	x, y := s.x, s.y
	srcX, srcY := 0, 0
	if x < 0 {
		srcX = -x
		x = 0
	}
	if y < 0 {
		srcY = -y
		y = 0
	}
	w := s.width - srcX
	if x+w > frame.Width {
		w = frame.Width - x
	}
	h := s.height - srcY
	if y+h > frame.Height {
		h = frame.Height - y
	}
	if w <= 0 || h <= 0 {
		return
	}

	for row := 0; row < h; row++ {
		dstOff := ((y+row)*frame.Width + x) * 4
		srcOff := ((srcY+row)*s.width + srcX) * 4
		for col := 0; col < w; col++ {
			weight := int(s.pix[srcOff+3]) * opq / 255
			if weight > 0 {
				inv := 255 - weight
				frame.Pix[dstOff] = uint8((int(frame.Pix[dstOff])*inv + int(s.pix[srcOff])*weight) / 255)
				frame.Pix[dstOff+1] = uint8((int(frame.Pix[dstOff+1])*inv + int(s.pix[srcOff+1])*weight) / 255)
				frame.Pix[dstOff+2] = uint8((int(frame.Pix[dstOff+2])*inv + int(s.pix[srcOff+2])*weight) / 255)
			}
			dstOff += 4
			srcOff += 4
		}
	}
}
