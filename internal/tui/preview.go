package tui

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/blacktop/go-termimg"
	"github.com/nfnt/resize"
)

// SupportsPreview reports whether the terminal can display inline images.
func SupportsPreview() bool {
	return termimg.DetectProtocol() == termimg.Kitty
}

// RenderImage renders an image inline using the Kitty graphics protocol,
// scaled to at most widthCells terminal columns. A terminal cell is roughly
// 8x16 pixels, so the image is resized to widthCells*8 before encoding.
func RenderImage(img image.Image, widthCells int) (string, error) {
	if widthCells < 4 {
		widthCells = 4
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return "", fmt.Errorf("empty image")
	}
	aspect := float64(bounds.Dx()) / float64(bounds.Dy())

	pixelWidth := uint(widthCells * 8)
	pixelHeight := uint(float64(pixelWidth) / aspect)
	if pixelHeight < 8 {
		pixelHeight = 8
	}
	scaled := resize.Resize(pixelWidth, pixelHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", err
	}

	ti, err := termimg.From(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}

	heightCells := int(float64(widthCells) / aspect / 2)
	if heightCells < 1 {
		heightCells = 1
	}

	ti.Protocol(termimg.Kitty).
		Width(widthCells).
		Height(heightCells).
		Scale(termimg.ScaleFit)

	return ti.Render()
}
