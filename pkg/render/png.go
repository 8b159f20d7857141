package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// EncodePNG wraps a Rasterize buffer in an image and encodes it as PNG.
// The buffer must be exactly width*height*4 bytes.
func EncodePNG(width, height int, buf []byte) ([]byte, error) {
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer is %d bytes, want %d for %dx%d", len(buf), width*height*4, width, height)
	}
	img := &image.RGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
