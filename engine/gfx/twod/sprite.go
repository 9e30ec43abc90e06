package twod

import (
	"fmt"

	"github.com/hubastard/bramble/engine/gfx/batch"
)

// Corner offset presets: passed to SetOffsets with relative=true, they pin
// the named corner of the sprite to its position.
var (
	TopLeftOffsets     = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	TopRightOffsets    = [4][2]float32{{-1, 1}, {0, 1}, {0, 0}, {-1, 0}}
	BottomLeftOffsets  = [4][2]float32{{0, 0}, {1, 0}, {1, -1}, {0, -1}}
	BottomRightOffsets = [4][2]float32{{-1, 0}, {0, 0}, {0, -1}, {-1, -1}}
	CenterOffsets      = [4][2]float32{{-0.5, 0.5}, {0.5, 0.5}, {0.5, -0.5}, {-0.5, -0.5}}
)

// Sprite is an Image plus everything needed to draw it: four data slots and
// six draw indices forming two triangles on its image's atlas client.
type Sprite struct {
	thing
	image       *Image
	width       int
	height      int
	baseOffsets [4][2]float32
	unmodOffs   [4][2]float32
	relative    bool
	flipx       bool
	flipy       bool
	tiling      [2]float32
}

// NewSprite creates a sprite drawing the given image on the given layer,
// top-left corner at its position, unscaled, unrotated, white, visible,
// using the shader's default filter.
func NewSprite(image *Image, layer int) (*Sprite, error) {
	s := &Sprite{tiling: [2]float32{1, 1}}
	if err := s.lease(image.atlas.Client, 4, 6, layer); err != nil {
		return nil, err
	}
	if err := s.upload(quadPattern(s.slots)); err != nil {
		return nil, err
	}
	return s, s.init(image)
}

// makeAdjacent builds a sprite over pre-leased slots, for adjacent runs.
func makeAdjacent(image *Image, layer int, va *batch.VertexArrays, rslots []int, rindex int) (*Sprite, error) {
	s := &Sprite{tiling: [2]float32{1, 1}}
	s.renderer = image.atlas.Client
	s.layer = layer
	s.visible = true
	s.va = va
	slots, err := va.GetDataSlots(4)
	if err != nil {
		return nil, err
	}
	s.slots = slots
	s.rslots, s.rindex = rslots, rindex
	if err := s.upload(quadPattern(s.slots)); err != nil {
		return nil, err
	}
	return s, s.init(image)
}

func (s *Sprite) init(image *Image) error {
	if err := s.SetImage(image); err != nil {
		return err
	}
	s.SetScale(1)
	s.SetTiling(1, 1)
	s.SetOffsetsRelative(TopLeftOffsets)
	s.SetColorBytes(255, 255, 255, 255)
	s.SetPosition(0, 0)
	s.SetFilter(s.atlas().DefaultFilter())
	return nil
}

func (s *Sprite) atlas() *Atlas { return s.image.atlas }

// Image returns the sprite's current image.
func (s *Sprite) Image() *Image { return s.image }

// SetImage changes the sprite's image. Moving to an image on a different
// atlas re-leases the sprite's slots on that atlas's client.
func (s *Sprite) SetImage(image *Image) error {
	s.image = image
	s.width, s.height = image.Size()
	if s.renderer != image.atlas.Client {
		if err := s.Destroy(); err != nil {
			return err
		}
		if err := s.lease(image.atlas.Client, 4, 6, s.layer); err != nil {
			return err
		}
		pattern := quadPattern(s.slots)
		if s.visible {
			if err := s.upload(pattern); err != nil {
				return err
			}
		} else {
			s.rdata = pattern
		}
	}
	c := image.Coords()
	s.va.SetFloat("texCoord", s.slots, c.Left, c.Top, c.Width, c.Height)
	return nil
}

// SetTiling repeats the image x by y times across the sprite's quad. Tiled
// sprites using bilinear filtering should load their image wrapped.
func (s *Sprite) SetTiling(x, y float32) {
	s.tiling = [2]float32{x, y}
	s.va.SetFloatBatch("texRatio", s.slots, []float32{
		0, y,
		x, y,
		x, 0,
		0, 0,
	})
	s.applyOffsets()
}

// SetFilter picks nearest or bilinear sampling for this sprite.
func (s *Sprite) SetFilter(f Filter) {
	s.va.SetFloat("filterType", s.slots, float32(f))
}

// SetOffsetsRelative positions the four corners as multiples of the image
// size, the usual case with the preset corner tables.
func (s *Sprite) SetOffsetsRelative(offsets [4][2]float32) {
	s.unmodOffs = offsets
	s.relative = true
	s.applyOffsets()
}

// SetOffsets positions the four corners in absolute pixels.
func (s *Sprite) SetOffsets(offsets [4][2]float32) {
	s.unmodOffs = offsets
	s.relative = false
	s.applyOffsets()
}

func (s *Sprite) applyOffsets() {
	base := s.unmodOffs
	if s.relative {
		for i := range base {
			base[i][0] *= float32(s.width)
			base[i][1] *= float32(s.height)
		}
	}
	for i := range base {
		base[i][0] *= s.tiling[0]
		base[i][1] *= s.tiling[1]
	}
	if s.flipx {
		base = [4][2]float32{base[3], base[2], base[1], base[0]}
	}
	if s.flipy {
		base = [4][2]float32{base[1], base[0], base[3], base[2]}
	}
	s.baseOffsets = base
	s.va.SetFloatBatch("offsets", s.slots, []float32{
		base[0][0], base[0][1],
		base[1][0], base[1][1],
		base[2][0], base[2][1],
		base[3][0], base[3][1],
	})
}

// SetFlipX mirrors the sprite horizontally.
func (s *Sprite) SetFlipX(flipped bool) {
	if flipped != s.flipx {
		s.flipx = flipped
		s.applyOffsets()
	}
}

// SetFlipY mirrors the sprite vertically.
func (s *Sprite) SetFlipY(flipped bool) {
	if flipped != s.flipy {
		s.flipy = flipped
		s.applyOffsets()
	}
}

// SetColorBytes colors the sprite from 8-bit channels directly.
func (s *Sprite) SetColorBytes(r, g, b, a byte) {
	s.va.SetBytes("color", s.slots, r, g, b, a)
}

// SetFragCamera sets the nth of the sprite's four fragment-camera bindings.
func (s *Sprite) SetFragCamera(n int, cam CameraRef) {
	ref := float32(0)
	if cam != nil {
		ref = cam.Ref()
	}
	s.va.SetFloatAt("fragCamera", s.slots, n, ref)
}

// MakeAdjacentSprites creates sprites guaranteed to occupy one contiguous
// draw-index run within a layer, so they render back to back. All images
// must live on the same atlas and the sprites may not change layer.
func MakeAdjacentSprites(images []*Image, layer int) ([]*Sprite, error) {
	if len(images) == 0 {
		return nil, nil
	}
	a := images[0].atlas
	for _, im := range images[1:] {
		if im.atlas != a {
			return nil, fmt.Errorf("twod: adjacent sprites need all images on one atlas")
		}
	}
	va := a.GetVertexArrays(4 * len(images))
	rslots, rindex, err := a.GetRenderSlots(6*len(images), layer, va)
	if err != nil {
		return nil, err
	}
	sprites := make([]*Sprite, 0, len(images))
	for i, im := range images {
		sp, err := makeAdjacent(im, layer, va, rslots[6*i:6*i+6], rindex)
		if err != nil {
			return nil, err
		}
		sprites = append(sprites, sp)
	}
	return sprites, nil
}

// quadPattern expands four data slots into the two-triangle index pattern.
func quadPattern(slots []int) []int {
	return []int{slots[0], slots[1], slots[2], slots[0], slots[2], slots[3]}
}
