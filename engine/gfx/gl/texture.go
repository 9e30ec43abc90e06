package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
)

// DefaultMaxTextureSize caps atlas probing; some drivers report sizes they
// cannot actually allocate, and 4096 is plenty for 2D atlases.
const DefaultMaxTextureSize = 4096

// DefaultMinTextureSize is the floor below which hardware texturing is not
// worth it.
const DefaultMinTextureSize = 512

// ErrNoTextureSize is returned when no candidate texture size down to the
// minimum passes the driver probe.
var ErrNoTextureSize = errors.New("glbackend: cannot create a texture of minimum size")

// FindTextureSize probes the driver for the largest usable square RGBA
// texture between min and max, halving on each failure. Passing 0 for either
// bound uses the defaults (max additionally capped by GL_MAX_TEXTURE_SIZE).
func FindTextureSize(minSize, maxSize int) (int, error) {
	if minSize <= 0 {
		minSize = DefaultMinTextureSize
	}
	if maxSize <= 0 {
		var driverMax int32
		gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &driverMax)
		maxSize = DefaultMaxTextureSize
		if int(driverMax) < maxSize {
			maxSize = int(driverMax)
		}
	}
	size := maxSize
	for size > minSize && !probeTextureSize(size) {
		size >>= 1
	}
	if size <= minSize && !probeTextureSize(size) {
		return 0, ErrNoTextureSize
	}
	return size, nil
}

// probeTextureSize dry-runs an allocation against the proxy target and asks
// the driver whether it would have honored it.
func probeTextureSize(size int) bool {
	gl.TexImage2D(gl.PROXY_TEXTURE_2D, 0, gl.RGBA, int32(size), int32(size),
		0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	var width int32
	gl.GetTexLevelParameteriv(gl.PROXY_TEXTURE_2D, 0, gl.TEXTURE_WIDTH, &width)
	return width == int32(size)
}

// Texture is a square RGBA8 GPU texture, typically an atlas surface. It
// carries the texSize/texelSize uniforms the sprite fragment shader needs
// for bilinear filtering.
type Texture struct {
	id   uint32
	size int

	// SizeUniform and TexelUniform expose the edge length and 1/edge to
	// shaders sampling this texture.
	SizeUniform  *Uniform
	TexelUniform *Uniform
}

// NewTexture allocates a size x size RGBA8 texture filled with zeroes.
func NewTexture(size int) *Texture {
	t := &Texture{size: size}
	t.SizeUniform = NewUniform("texSize", func(loc int32) {
		gl.Uniform1f(loc, float32(t.size))
	})
	t.TexelUniform = NewUniform("texelSize", func(loc int32) {
		gl.Uniform1f(loc, 1/float32(t.size))
	})
	t.create()
	return t
}

func (t *Texture) create() {
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	zero := make([]byte, t.size*t.size*4)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(t.size), int32(t.size),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(zero))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// Size returns the edge length in pixels.
func (t *Texture) Size() int { return t.size }

// Upload writes w x h RGBA8 pixels at (x, y). data must be w*h*4 bytes.
func (t *Texture) Upload(x, y, w, h int, data []byte) error {
	if len(data) != w*h*4 {
		return fmt.Errorf("glbackend: upload of %dx%d needs %d bytes, got %d",
			w, h, w*h*4, len(data))
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(w), int32(h),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	return nil
}

// Bind makes this texture current on the 2D target. Signature matches the
// render-hook shape so it can be registered directly.
func (t *Texture) Bind(layer int) {
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

// Unbind destroys the GL texture object. The contents are gone; Rebind
// recreates an empty surface.
func (t *Texture) Unbind() {
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// Rebind recreates the texture after a context loss. Callers re-upload
// contents afterwards.
func (t *Texture) Rebind() {
	t.create()
}
