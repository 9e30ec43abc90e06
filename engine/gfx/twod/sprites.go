package twod

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/hubastard/bramble/engine/gfx/atlas"
	"github.com/hubastard/bramble/engine/gfx/batch"
	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// ErrCannotAllocate is returned when an atlas area cannot be allocated, for
// instance when the requested image is at least as large as a whole atlas.
var ErrCannotAllocate = errors.New("twod: cannot allocate atlas area")

// ErrOversizedUpload is returned when pixel data is larger than the atlas
// region it was allocated. Nothing is uploaded.
var ErrOversizedUpload = errors.New("twod: image larger than its atlas region")

// RawImage is the pixel source capability images upload from: tightly
// packed top-to-bottom RGBA8. The wrapped variant pads a 1px border with the
// opposite edges' pixels so tiled sprites sample seamlessly.
type RawImage interface {
	Size() (w, h int)
	Raw() []byte
	WrappedSize() (w, h int)
	RawWrapped() []byte
}

// Filter selects the sampling mode of a sprite.
type Filter int

const (
	FilterNearest Filter = iota
	FilterBilinear
)

func newSpriteSpec() *batch.ArraySpec {
	s := batch.NewSpec("sprites", 1.5)
	s.AddArray(batch.ArrayDef{Name: "pos"})
	s.AddArray(batch.ArrayDef{Name: "color", Kind: batch.Uint8, Normalized: true})
	s.AddArray(batch.ArrayDef{Name: "cameras1"})
	s.AddArray(batch.ArrayDef{Name: "cameras2"})
	s.AddArray(batch.ArrayDef{Name: "fragCameras"})
	s.AddArray(batch.ArrayDef{Name: "texCoords", Static: true})
	s.AddArray(batch.ArrayDef{Name: "texRatios", Static: true})
	s.AddArray(batch.ArrayDef{Name: "rotozoom"})
	s.AddArray(batch.ArrayDef{Name: "filters"})
	s.AddAttrib("pos", "position", 2, 0, false)
	s.AddAttrib("pos", "offsets", 2, 2, true)
	s.AddAttrib("texCoords", "texCoord", 4, 0, false)
	s.AddAttrib("texRatios", "texRatio", 2, 0, true)
	s.AddAttrib("color", "color", 4, 0, false)
	s.AddAttrib("color", "colors", 4, 0, true)
	s.AddAttrib("cameras1", "camera1", 1, -1, false)
	s.AddAttrib("cameras2", "camera2", 1, -1, false)
	s.AddAttrib("fragCameras", "fragCamera", 1, -1, false)
	s.AddAttrib("rotozoom", "scaleX", 1, 0, false)
	s.AddAttrib("rotozoom", "scaleY", 1, 1, false)
	s.AddAttrib("rotozoom", "rotation", 1, 2, false)
	s.AddAttrib("filters", "filterType", 1, 0, false)
	return s
}

const spriteVertexProg = `
vec2 applyTransform(in vec2 pos, in vec2 origin, in vec2 offset,
           in float xScale, in float yScale, in float rotation);
vec2 applyCameras(in vec4 camera, in vec2 pos);
attribute vec4 pos;       // x,y = position, z,w = offset
attribute vec4 texCoords; // x,y = x0, y0, z,w = x1-x0, y1-y0
attribute vec4 texRatios; // x,y = texture ratio
attribute vec4 color;
attribute vec4 rotozoom;  // x = scaleX, y = scaleY, z = rotation
attribute vec4 cameras1;
attribute vec4 cameras2;
attribute vec4 fragCameras;
attribute vec4 filters;
uniform mat4 projMatrix;
varying vec4 v2fColor;
varying vec4 v2fTex;
varying vec4 v2fTilingPos;
varying vec4 v2fCameras;
varying vec4 v2fFilters;
void main()
{
    vec2 transform = applyTransform(pos.xy, vec2(0, 0),
                     pos.zw, rotozoom.x, rotozoom.y, rotozoom.z);
    transform = applyCameras(cameras1, transform);
    transform = applyCameras(cameras2, transform);
    gl_Position = projMatrix * vec4 (transform.xy, 0, 1);
    v2fTilingPos.zw = gl_Position.xy;
    v2fTex = texCoords;
    v2fTilingPos.xy = texRatios.xy;
    v2fColor = color;
    v2fCameras = fragCameras;
    v2fFilters = filters;
}`

const spriteFragmentProg = `
vec4 applyFragCameras(in vec4 cameras, in vec4 fragColor);
bool drop(in vec2 pos);
uniform sampler2D tex;
uniform float texelSize;
uniform float texSize;
varying vec4 v2fColor;
varying vec4 v2fTex;
varying vec4 v2fTilingPos;
varying vec4 v2fCameras;
varying vec4 v2fFilters; // x = type

void main()
{
    if (drop(v2fTilingPos.zw)) {discard;}
    vec2 texP =
       vec2(v2fTex.x + mod((v2fTilingPos.x * v2fTex.z), v2fTex.z),
            v2fTex.y + mod((v2fTilingPos.y * v2fTex.w), v2fTex.w));
    vec4 texColor;
    if (v2fFilters.x == 0.0) {
        texColor = texture2D(tex, texP);
    }
    else if (v2fFilters.x == 1.0) {
        vec4 tl = texture2D(tex, texP);
        vec4 tr = texture2D(tex, texP + vec2(texelSize, 0));
        vec4 bl = texture2D(tex, texP + vec2(0, texelSize));
        vec4 br = texture2D(tex, texP + vec2(texelSize, texelSize));
        vec2 mixVals = fract( texP * texSize );
        vec4 texColorT = mix( tl, tr, mixVals.x );
        vec4 texColorB = mix( bl, br, mixVals.x );
        texColor = mix(texColorT, texColorB, mixVals.y);
    }

    gl_FragColor = applyFragCameras(v2fCameras,
                  v2fColor * texColor);
}`

// SpriteShader draws textured quads from a growable set of texture atlases.
// Each atlas is its own batch client over the shared sprite region spec.
type SpriteShader struct {
	common        *Common
	shader        *glbackend.Shader
	spec          *batch.ArraySpec
	atlases       []*Atlas
	atlasSize     int
	defaultFilter Filter
}

// NewSpriteShader compiles the sprite shader and probes the atlas size.
func NewSpriteShader(common *Common, defaultFilter Filter) (*SpriteShader, error) {
	cams := common.Cameras()
	sh, err := glbackend.NewShader(common.Context(),
		[]string{applyTransformSource, cams.VertexSource, spriteVertexProg},
		[]string{dropSource, cams.FragmentSource, spriteFragmentProg})
	if err != nil {
		return nil, err
	}
	size, err := glbackend.FindTextureSize(
		glbackend.DefaultMinTextureSize, glbackend.DefaultMaxTextureSize)
	if err != nil {
		return nil, err
	}
	return &SpriteShader{
		common:        common,
		shader:        sh,
		spec:          newSpriteSpec(),
		atlasSize:     size,
		defaultFilter: defaultFilter,
	}, nil
}

// DefaultFilter returns the filter applied to sprites that don't pick one.
func (s *SpriteShader) DefaultFilter() Filter { return s.defaultFilter }

// SetDefaultFilter changes the filter for sprites created afterwards.
func (s *SpriteShader) SetDefaultFilter(f Filter) { s.defaultFilter = f }

func (s *SpriteShader) makeNewAtlas() error {
	a, err := newAtlas(s, s.atlasSize)
	if err != nil {
		return err
	}
	s.atlases = append(s.atlases, a)
	log.Printf("sprites: new %dx%d texture atlas (%d total)", s.atlasSize, s.atlasSize, len(s.atlases))
	return nil
}

// GetBox allocates a width x height region in an atlas, newest atlas first,
// creating a fresh atlas when every existing one is too full. Requests as
// large as a whole atlas are refused outright.
func (s *SpriteShader) GetBox(width, height int, wrapped bool) (*Image, error) {
	if width >= s.atlasSize || height >= s.atlasSize {
		return nil, fmt.Errorf("%w: %dx%d exceeds atlas size %d",
			ErrCannotAllocate, width, height, s.atlasSize)
	}
	for i := len(s.atlases) - 1; i >= 0; i-- {
		if im, ok := s.atlases[i].getBox(width, height, wrapped); ok {
			return im, nil
		}
	}
	if err := s.makeNewAtlas(); err != nil {
		return nil, err
	}
	a := s.atlases[len(s.atlases)-1]
	im, ok := a.getBox(width, height, wrapped)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d", ErrCannotAllocate, width, height)
	}
	return im, nil
}

// Atlas is one shared texture plus the batch client drawing every sprite
// whose image lives on it. A render hook binds the texture before draws.
type Atlas struct {
	*batch.Client
	shader  *SpriteShader
	texture *glbackend.Texture
	packer  *atlas.Packer
	images  map[*Image]struct{}
}

func newAtlas(s *SpriteShader, size int) (*Atlas, error) {
	a := &Atlas{
		Client:  batch.NewClient(s.shader, s.spec, gl.TRIANGLES),
		shader:  s,
		texture: glbackend.NewTexture(size),
		packer:  atlas.NewPacker(size, 1),
		images:  map[*Image]struct{}{},
	}
	a.AddRenderHook(a.texture.Bind)
	a.AddRebindHook(a.reuploadImages)
	a.Uniforms = glbackend.NewUniformStore(
		s.common.ProjMatrix(),
		s.common.Cameras().Uniform(),
		a.texture.TexelUniform,
		a.texture.SizeUniform,
	)
	return a, nil
}

// DefaultFilter returns the owning shader's default filter.
func (a *Atlas) DefaultFilter() Filter { return a.shader.defaultFilter }

func (a *Atlas) getBox(width, height int, wrapped bool) (*Image, bool) {
	region, ok := a.packer.Insert(width, height, wrapped)
	if !ok {
		return nil, false
	}
	im := &Image{atlas: a, region: region}
	a.images[im] = struct{}{}
	return im, true
}

// reuploadImages restores the texture contents after a context loss.
func (a *Atlas) reuploadImages() {
	a.texture.Rebind()
	for im := range a.images {
		if err := im.Reupload(); err != nil {
			log.Printf("sprites: atlas reupload: %v", err)
		}
	}
}

func (a *Atlas) uploadToRegion(raw RawImage, region atlas.Region) error {
	var w, h int
	var data []byte
	if region.Wrapped {
		w, h = raw.WrappedSize()
		data = raw.RawWrapped()
	} else {
		w, h = raw.Size()
		data = raw.Raw()
	}
	if w > region.Rect.W || h > region.Rect.H {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrOversizedUpload,
			w, h, region.Rect.W, region.Rect.H)
	}
	return a.texture.Upload(region.Rect.X, region.Rect.Y, w, h, data)
}

// Image is one placed rectangle on an atlas: the integer rect it occupies
// and the normalized texture coordinates sprites sample from.
type Image struct {
	atlas  *Atlas
	region atlas.Region
	raw    RawImage
}

// Atlas returns the atlas holding this image.
func (im *Image) Atlas() *Atlas { return im.atlas }

// Coords returns the image's normalized texture coordinates.
func (im *Image) Coords() atlas.FloatRect { return im.region.Coords }

// Size returns the size of the uploaded pixels, zero before any upload.
func (im *Image) Size() (int, int) {
	if im.raw == nil {
		return 0, 0
	}
	return im.raw.Size()
}

// Upload places pixel data into the image's atlas region.
func (im *Image) Upload(raw RawImage) error {
	im.raw = raw
	return im.atlas.uploadToRegion(raw, im.region)
}

// Reupload re-sends the last uploaded pixels, used on context loss.
func (im *Image) Reupload() error {
	if im.raw == nil {
		return nil
	}
	return im.atlas.uploadToRegion(im.raw, im.region)
}

// Destroy returns the image's rect to its atlas. The freed rect is not
// merged with neighbours; atlas fragmentation is permanent.
func (im *Image) Destroy() {
	delete(im.atlas.images, im)
	im.atlas.packer.Free(im.region.Rect)
}

// SubImage returns a view onto a sub-rectangle of the image. The child
// shares the parent's pixels and must not be destroyed.
func (im *Image) SubImage(r atlas.Rect) *Image {
	parent := im.region.Rect
	rx, ry := parent.X+r.X, parent.Y+r.Y
	rw := min(r.X+r.W, parent.W) - r.X
	rh := min(r.Y+r.H, parent.H) - r.Y
	size := float32(im.atlas.packer.Size())
	coords := atlas.FloatRect{
		Left:   float32(rx) / size,
		Top:    float32(ry) / size,
		Width:  float32(rw) / size,
		Height: float32(rh) / size,
	}
	return &Image{
		atlas:  im.atlas,
		region: atlas.Region{Rect: atlas.Rect{X: rx, Y: ry, W: rw, H: rh}, Coords: coords},
	}
}

// NewSurface allocates a blank drawable image region on the shader's
// atlases. Upload pixels to it with Image.Upload.
func NewSurface(shader *SpriteShader, width, height int, wrapped bool) (*Image, error) {
	return shader.GetBox(width, height, wrapped)
}
