// Package assets supplies pixel data to the renderer: PNG loading and the
// raw RGBA8 image capability texture atlases upload from.
package assets

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
)

// RawImage is tightly packed top-to-bottom RGBA8 pixels, width*height*4
// bytes. The wrapped accessors pad a 1px border with the opposite edges'
// pixels so a tiled sprite samples seamlessly across the seam.
type RawImage struct {
	width  int
	height int
	pix    []byte
}

// NewRawImage wraps tightly packed RGBA8 pixels. len(pix) must be w*h*4.
func NewRawImage(w, h int, pix []byte) (*RawImage, error) {
	if len(pix) != w*h*4 {
		return nil, fmt.Errorf("assets: %dx%d image needs %d bytes, got %d",
			w, h, w*h*4, len(pix))
	}
	return &RawImage{width: w, height: h, pix: pix}, nil
}

// Size returns the pixel dimensions.
func (r *RawImage) Size() (int, int) { return r.width, r.height }

// Raw returns the tightly packed RGBA8 pixels.
func (r *RawImage) Raw() []byte { return r.pix }

// WrappedSize returns the dimensions including the 1px wrap border.
func (r *RawImage) WrappedSize() (int, int) { return r.width + 2, r.height + 2 }

// RawWrapped returns the pixels with a 1px border wrapping around: each row
// gains the row's last pixel on the left and first pixel on the right, and
// the image gains the last row on top and the first row on the bottom.
func (r *RawImage) RawWrapped() []byte {
	w, h := r.width, r.height
	rowLen := w * 4
	out := make([]byte, 0, (w+2)*(h+2)*4)
	appendRow := func(y int) {
		base := y * rowLen
		row := r.pix[base : base+rowLen]
		out = append(out, row[rowLen-4:]...)
		out = append(out, row...)
		out = append(out, row[:4]...)
	}
	appendRow(h - 1)
	for y := 0; y < h; y++ {
		appendRow(y)
	}
	appendRow(0)
	return out
}

// LoadPNG decodes a PNG file into a RawImage, repacking into tight rows
// (stride == 4*w), top-to-bottom as the atlas expects.
func LoadPNG(path string) (*RawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode png %q: %w", path, err)
	}

	rgba := imageToRGBA(img)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(out[y*w*4:(y+1)*w*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return &RawImage{width: w, height: h, pix: out}, nil
}

func imageToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Stride == m.Rect.Dx()*4 {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
