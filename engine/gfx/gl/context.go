// Package glbackend wraps the OpenGL state the renderer cares about in one
// explicit Context object: redundant-call caches for buffers, programs,
// attribute arrays and uniforms, the sorted layer list, and the shader
// registry used to rebuild GPU objects after a context loss. Nothing in here
// is a global; everything that touches GL goes through a *Context.
package glbackend

import (
	"log"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/hubastard/bramble/engine/colors"
)

// Backend is the boundary with the windowing layer: it creates a drawable
// surface and presents finished frames. Implemented by engine/platform.
type Backend interface {
	Init() error
	CreateContext(width, height int, doubleBuffer, fullscreen bool) error
	Redraw()
}

type shaderKey struct {
	source string
	stage  uint32
}

type arrayBinding struct {
	buffer     uint32
	comps      int32
	xtype      uint32
	normalized bool
}

// Context owns all shared GL state. One Context exists per graphics context
// and is threaded explicitly through every binding operation.
type Context struct {
	backend    Backend
	resolution [2]int

	shaders []*Shader // registry for context-loss rebuild
	layers  []int     // ascending draw order

	boundShader      *Shader
	boundBuffers     map[uint32]uint32
	boundArrays      map[int32]arrayBinding
	boundArraysOwner any // the VertexArrays whose bindings are current
	boundStores      map[*Shader]*UniformStore
	shaderCache      map[shaderKey]uint32
	lineWidth        float32
}

// NewContext creates a Context over the given backend. InitEnvironment must
// be called before any other method.
func NewContext(backend Backend) *Context {
	return &Context{
		backend:      backend,
		boundBuffers: map[uint32]uint32{},
		boundArrays:  map[int32]arrayBinding{},
		boundStores:  map[*Shader]*UniformStore{},
		shaderCache:  map[shaderKey]uint32{},
		lineWidth:    1,
	}
}

// InitEnvironment creates the window/context through the backend and applies
// the GL defaults the renderer relies on (alpha blending, line smoothing).
func (c *Context) InitEnvironment(width, height int, doubleBuffer, fullscreen bool) error {
	if err := c.backend.Init(); err != nil {
		return err
	}
	if err := c.backend.CreateContext(width, height, doubleBuffer, fullscreen); err != nil {
		return err
	}

	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0, 0.5, 1, 1)
	gl.Hint(gl.PERSPECTIVE_CORRECTION_HINT, gl.NICEST)
	gl.Hint(gl.LINE_SMOOTH_HINT, gl.NICEST)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.LINE_SMOOTH)
	gl.Enable(gl.TEXTURE_2D)
	gl.Enable(gl.BLEND)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	c.resolution = [2]int{width, height}
	log.Printf("GL: %s", gl.GoStr(gl.GetString(gl.VERSION)))
	return nil
}

// Resolution returns the drawable size in pixels.
func (c *Context) Resolution() [2]int { return c.resolution }

// SetResolution updates the viewport after a window resize. Projection
// uniforms watch Resolution and recompute on the next frame.
func (c *Context) SetResolution(width, height int) {
	c.resolution = [2]int{width, height}
	gl.Viewport(0, 0, int32(width), int32(height))
}

// AddShader registers a shader so a context-loss rebuild can find it. Called
// by NewShader.
func (c *Context) AddShader(s *Shader) {
	c.shaders = append(c.shaders, s)
}

// AddLayer records a rendering layer, keeping the layer list sorted.
func (c *Context) AddLayer(layer int) {
	i := sort.SearchInts(c.layers, layer)
	if i < len(c.layers) && c.layers[i] == layer {
		return
	}
	c.layers = append(c.layers, 0)
	copy(c.layers[i+1:], c.layers[i:])
	c.layers[i] = layer
}

// BindBuffer binds bufferID to target only if it is not already bound.
func (c *Context) BindBuffer(target, bufferID uint32) {
	if c.boundBuffers[target] != bufferID {
		gl.BindBuffer(target, bufferID)
		c.boundBuffers[target] = bufferID
	}
}

// UseProgram switches the active shader program if necessary.
func (c *Context) UseProgram(s *Shader) {
	if c.boundShader != s {
		c.boundShader = s
		gl.UseProgram(s.program)
	}
}

// BoundShader returns the currently active shader.
func (c *Context) BoundShader() *Shader { return c.boundShader }

// BindArray points the attribute at loc into buffer, skipping the driver
// calls when the binding is unchanged. glVertexAttribPointer captures the
// buffer bound to ARRAY_BUFFER at call time, so the buffer is bound here
// before the pointer is respecified. loc of -1 means the compiler eliminated
// the attribute; the call is a no-op.
func (c *Context) BindArray(loc int32, comps int32, xtype uint32, normalized bool, buffer uint32) {
	if loc == -1 {
		return
	}
	want := arrayBinding{buffer: buffer, comps: comps, xtype: xtype, normalized: normalized}
	if c.boundArrays[loc] == want {
		return
	}
	c.boundArrays[loc] = want
	c.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.DisableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointer(uint32(loc), comps, xtype, normalized, 0, unsafe.Pointer(uintptr(0)))
	gl.EnableVertexAttribArray(uint32(loc))
}

// BoundArraysOwner and SetBoundArraysOwner track which VertexArrays object
// last bound its attribute arrays, so an unchanged region only re-uploads
// dirty arrays.
func (c *Context) BoundArraysOwner() any { return c.boundArraysOwner }

func (c *Context) SetBoundArraysOwner(owner any) { c.boundArraysOwner = owner }

// SetLineWidth changes the GL line width when it differs from the cached
// value.
func (c *Context) SetLineWidth(width float32) {
	if c.lineWidth != width {
		gl.LineWidth(width)
		c.lineWidth = width
	}
}

// SetClearColor sets the color used by Clear.
func (c *Context) SetClearColor(col colors.Color) {
	gl.ClearColor(col[0], col[1], col[2], col[3])
}

// Clear clears the color and depth buffers.
func (c *Context) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DoTasks renders one frame: clear, draw every known layer in ascending
// order through every registered shader, present.
func (c *Context) DoTasks() {
	c.Clear()
	for _, layer := range c.layers {
		for _, s := range c.shaders {
			s.DoTasks(layer)
		}
	}
	c.backend.Redraw()
}

// Rebind rebuilds all GPU objects after a context loss: compiled shader
// objects are discarded and every registered shader relinks and cascades to
// its clients.
func (c *Context) Rebind() error {
	c.shaderCache = map[shaderKey]uint32{}
	c.boundBuffers = map[uint32]uint32{}
	c.boundArrays = map[int32]arrayBinding{}
	c.boundStores = map[*Shader]*UniformStore{}
	c.boundShader = nil
	c.boundArraysOwner = nil
	for _, s := range c.shaders {
		if err := s.rebind(); err != nil {
			return err
		}
	}
	return nil
}

// getShader compiles source for the given stage, caching on (source, stage).
func (c *Context) getShader(source string, stage uint32) (uint32, error) {
	key := shaderKey{source, stage}
	if sh, ok := c.shaderCache[key]; ok {
		return sh, nil
	}
	sh, err := compileShader(source, stage)
	if err != nil {
		return 0, err
	}
	c.shaderCache[key] = sh
	return sh, nil
}
