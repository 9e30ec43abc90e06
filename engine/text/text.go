package text

import (
	"github.com/chewxy/math32"

	"github.com/hubastard/bramble/engine/colors"
	"github.com/hubastard/bramble/engine/gfx/twod"
)

// Text is a rendered string: one sprite per visible glyph, all sharing the
// text's origin position so moving the text is one setter per glyph quad.
// The string itself is fixed at construction.
type Text struct {
	font    *Font
	sprites []*twod.Sprite
	width   float32
	height  float32
}

// New lays out s with its origin at the top-left of the first line and
// creates the glyph sprites on the given layer. Newlines start a new line.
func New(font *Font, s string, layer int) (*Text, error) {
	t := &Text{font: font}
	penX := float32(0)
	baseY := font.Ascent
	prev := rune(-1)
	for _, r := range s {
		if r == '\n' {
			t.width = math32.Max(t.width, penX)
			penX = 0
			baseY += font.LineHeight()
			prev = -1
			continue
		}
		g, err := font.Glyph(r)
		if err != nil {
			t.Destroy()
			return nil, err
		}
		if prev >= 0 {
			penX += font.Kern(prev, r)
		}
		if g.Image != nil {
			sp, err := twod.NewSprite(g.Image, layer)
			if err != nil {
				t.Destroy()
				return nil, err
			}
			left := penX + g.BearingX
			top := baseY - g.BearingY
			right := left + float32(g.W)
			bottom := top + float32(g.H)
			sp.SetOffsets([4][2]float32{
				{left, top}, {right, top}, {right, bottom}, {left, bottom},
			})
			t.sprites = append(t.sprites, sp)
		}
		penX += g.Advance
		prev = r
	}
	t.width = math32.Max(t.width, penX)
	t.height = baseY - font.Descent
	return t, nil
}

// Size returns the laid-out width and height in pixels.
func (t *Text) Size() (float32, float32) { return t.width, t.height }

// SetPosition moves the text's origin.
func (t *Text) SetPosition(x, y float32) {
	for _, sp := range t.sprites {
		sp.SetPosition(x, y)
	}
}

// SetColor tints every glyph.
func (t *Text) SetColor(c colors.Color) {
	for _, sp := range t.sprites {
		sp.SetColor(c)
	}
}

// SetVisible shows or hides the whole string.
func (t *Text) SetVisible(visible bool) error {
	for _, sp := range t.sprites {
		if err := sp.SetVisible(visible); err != nil {
			return err
		}
	}
	return nil
}

// SetLayer moves the text to another draw layer.
func (t *Text) SetLayer(layer int) error {
	for _, sp := range t.sprites {
		if err := sp.SetLayer(layer); err != nil {
			return err
		}
	}
	return nil
}

// Destroy releases every glyph sprite. The glyph images stay cached on the
// font for future strings.
func (t *Text) Destroy() {
	for _, sp := range t.sprites {
		_ = sp.Destroy()
	}
	t.sprites = nil
}

// Measure lays out s without creating sprites and returns its size.
func Measure(font *Font, s string) (width, height float32, err error) {
	penX := float32(0)
	lines := 1
	prev := rune(-1)
	for _, r := range s {
		if r == '\n' {
			width = math32.Max(width, penX)
			penX = 0
			lines++
			prev = -1
			continue
		}
		g, gerr := font.Glyph(r)
		if gerr != nil {
			return 0, 0, gerr
		}
		if prev >= 0 {
			penX += font.Kern(prev, r)
		}
		penX += g.Advance
		prev = r
	}
	width = math32.Max(width, penX)
	height = font.Ascent - font.Descent + float32(lines-1)*font.LineHeight()
	return width, height, nil
}
