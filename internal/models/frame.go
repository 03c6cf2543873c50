package models

import "image"

// Frame is one decoded video frame: a flat RGBA pixel buffer plus its
// presentation timestamp. Buffers are reused between loop iterations, so a
// Frame is only valid until the next decoder read.
type Frame struct {
	// Pix holds interleaved RGBA bytes, row-major, Width*Height*4 long.
	Pix    []uint8
	Width  int
	Height int
	// PTS is the presentation timestamp in seconds.
	PTS float64
}

// NewFrame allocates a frame buffer for the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Pix:    make([]uint8, width*height*4),
		Width:  width,
		Height: height,
	}
}

// RGBA wraps the frame buffer as an *image.RGBA without copying.
func (f *Frame) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := NewFrame(f.Width, f.Height)
	copy(c.Pix, f.Pix)
	c.PTS = f.PTS
	return c
}
