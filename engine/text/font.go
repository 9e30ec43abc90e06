// Package text rasterizes TTF glyphs and packs them into the shared sprite
// atlases, so strings render through the same batched sprite path as
// everything else.
package text

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hubastard/bramble/engine/assets"
	"github.com/hubastard/bramble/engine/gfx/twod"
)

// Glyph is one rasterized rune: its metrics in pixels and its placement on
// a sprite atlas. Blank glyphs (space) carry metrics but no image.
type Glyph struct {
	Rune     rune
	Advance  float32
	BearingX float32 // left bearing
	BearingY float32 // distance from baseline up to the glyph top
	W, H     int
	Image    *twod.Image
}

// Font is a TTF face at one pixel size. Glyphs rasterize and upload to the
// sprite shader's atlases lazily, on first use.
type Font struct {
	SizePx  float32
	Ascent  float32
	Descent float32
	LineGap float32

	shader *twod.SpriteShader
	face   font.Face
	glyphs map[rune]Glyph
}

// LoadTTF parses a TTF file and prepares a face at sizePx pixels. Glyph
// bitmaps upload to the shader's atlases as they are first drawn.
func LoadTTF(shader *twod.SpriteShader, path string, sizePx float32) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(sizePx), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}

	m := face.Metrics()
	ascent := float32(m.Ascent.Round())
	descent := float32(-m.Descent.Round())
	return &Font{
		SizePx:  sizePx,
		Ascent:  ascent,
		Descent: descent,
		LineGap: float32(m.Height.Round()) - ascent + descent,
		shader:  shader,
		face:    face,
		glyphs:  map[rune]Glyph{},
	}, nil
}

// Close releases the underlying face. Uploaded glyphs stay usable.
func (f *Font) Close() error { return f.face.Close() }

// LineHeight is the baseline-to-baseline distance.
func (f *Font) LineHeight() float32 { return f.Ascent - f.Descent + f.LineGap }

// Kern returns the kerning adjustment between two runes in pixels.
func (f *Font) Kern(a, b rune) float32 {
	return float32(f.face.Kern(a, b).Round())
}

// Glyph returns the glyph for r, rasterizing and uploading it on first use.
func (f *Font) Glyph(r rune) (Glyph, error) {
	if g, ok := f.glyphs[r]; ok {
		return g, nil
	}
	br, adv, ok := f.face.GlyphBounds(r)
	if !ok {
		return Glyph{}, fmt.Errorf("text: face has no glyph for %q", r)
	}
	g := Glyph{
		Rune:     r,
		Advance:  float32(adv.Round()),
		BearingX: float32(br.Min.X.Round()),
		BearingY: float32(-br.Min.Y.Round()),
		W:        (br.Max.X - br.Min.X).Round(),
		H:        (br.Max.Y - br.Min.Y).Round(),
	}
	if g.W > 0 && g.H > 0 {
		raw, err := f.rasterize(r, g)
		if err != nil {
			return Glyph{}, err
		}
		im, err := f.shader.GetBox(g.W, g.H, false)
		if err != nil {
			return Glyph{}, err
		}
		if err := im.Upload(raw); err != nil {
			return Glyph{}, err
		}
		g.Image = im
	}
	f.glyphs[r] = g
	return g, nil
}

// rasterize draws the rune white-on-transparent into a tight RGBA buffer,
// alpha carrying the coverage.
func (f *Font) rasterize(r rune, g Glyph) (*assets.RawImage, error) {
	dst := image.NewRGBA(image.Rect(0, 0, g.W, g.H))
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: f.face,
		Dot:  fixed.P(-int(g.BearingX), int(g.BearingY)),
	}
	drawer.DrawString(string(r))

	pix := make([]byte, g.W*g.H*4)
	for y := 0; y < g.H; y++ {
		copy(pix[y*g.W*4:(y+1)*g.W*4], dst.Pix[y*dst.Stride:y*dst.Stride+g.W*4])
	}
	return assets.NewRawImage(g.W, g.H, pix)
}
