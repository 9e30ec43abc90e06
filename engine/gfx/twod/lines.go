package twod

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/hubastard/bramble/engine/colors"
	"github.com/hubastard/bramble/engine/gfx/batch"
	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// primitiveSpec is the region layout shared by lines and triangles.
func primitiveSpec(name string) *batch.ArraySpec {
	s := batch.NewSpec(name, 1)
	s.AddArray(batch.ArrayDef{Name: "pos"})
	s.AddArray(batch.ArrayDef{Name: "rotozoom"})
	s.AddArray(batch.ArrayDef{Name: "cameras1"})
	s.AddArray(batch.ArrayDef{Name: "cameras2"})
	s.AddArray(batch.ArrayDef{Name: "color", Kind: batch.Uint8, Normalized: true})
	s.AddAttrib("pos", "position", 2, 0, false)
	s.AddAttrib("pos", "offsets", 2, 2, true)
	s.AddAttrib("color", "color", 4, 0, false)
	s.AddAttrib("color", "colors", 4, 0, true)
	s.AddAttrib("cameras1", "camera1", 1, -1, false)
	s.AddAttrib("cameras2", "camera2", 1, -1, false)
	s.AddAttrib("rotozoom", "scaleX", 1, 0, false)
	s.AddAttrib("rotozoom", "scaleY", 1, 1, false)
	s.AddAttrib("rotozoom", "rotation", 1, 2, false)
	return s
}

const primitiveVertexProg = `
vec2 applyTransform(in vec2 pos, in vec2 origin, in vec2 offset,
            in float xScale, in float yScale, in float rotation);
vec2 applyCameras(in vec4 cameras, in vec2 pos);
attribute vec4 pos;
attribute vec4 rotozoom;
attribute vec4 cameras1;
attribute vec4 cameras2;
attribute vec4 color;
uniform mat4 projMatrix;
varying vec4 v2fColor;
varying vec4 v2fPos;
void main()
{
    vec2 transform = applyTransform(pos.xy, vec2(0.0, 0.0),
                     pos.zw, rotozoom.x, rotozoom.y, rotozoom.z);
    transform = applyCameras(cameras1, transform);
    transform = applyCameras(cameras2, transform);
    gl_Position = projMatrix * vec4(transform.xy, 0.0, 1.0);
    v2fPos.xy = gl_Position.xy;
    v2fColor = color;
}`

const primitiveFragmentProg = `
bool drop(in vec2 pos);
varying vec4 v2fColor;
varying vec4 v2fPos;
void main()
{
    if (drop(v2fPos.xy)) {discard;}
    gl_FragColor = v2fColor;
}`

// LineShader draws polylines. Line width is per draw call, so each distinct
// width gets its own client with a width-setting render hook.
type LineShader struct {
	common    *Common
	shader    *glbackend.Shader
	spec      *batch.ArraySpec
	renderers map[float32]*batch.Client
}

// NewLineShader compiles the line shader.
func NewLineShader(common *Common) (*LineShader, error) {
	cams := common.Cameras()
	sh, err := glbackend.NewShader(common.Context(),
		[]string{applyTransformSource, cams.VertexSource, primitiveVertexProg},
		[]string{dropSource, primitiveFragmentProg})
	if err != nil {
		return nil, err
	}
	return &LineShader{
		common:    common,
		shader:    sh,
		spec:      primitiveSpec("lines"),
		renderers: map[float32]*batch.Client{},
	}, nil
}

// Renderer returns the client drawing lines of the given width, creating it
// on first use.
func (s *LineShader) Renderer(width float32) *batch.Client {
	if c, ok := s.renderers[width]; ok {
		return c
	}
	c := batch.NewClient(s.shader, s.spec, gl.LINES)
	ctx := s.common.Context()
	c.AddRenderHook(func(layer int) { ctx.SetLineWidth(width) })
	c.Uniforms = glbackend.NewUniformStore(
		s.common.ProjMatrix(),
		s.common.Cameras().Uniform(),
	)
	s.renderers[width] = c
	return c
}

// Lines is a connected polyline. The vertex count is fixed at construction;
// vertex positions and colors stay mutable.
type Lines struct {
	thing
	shader    *LineShader
	width     float32
	renderLen int
}

// NewLines creates a polyline through the given vertices, drawn with the
// given width on the given layer. Closed polylines join the last vertex
// back to the first.
func NewLines(shader *LineShader, vertices [][2]float32, layer int, width float32, closed bool) (*Lines, error) {
	l := &Lines{shader: shader, width: width}
	n := len(vertices)
	l.renderLen = lineRenderLength(n, closed)
	if err := l.lease(shader.Renderer(width), n, l.renderLen, layer); err != nil {
		return nil, err
	}
	if err := l.upload(linePattern(l.slots, closed)); err != nil {
		return nil, err
	}
	l.SetVertices(vertices)
	l.SetPosition(0, 0)
	l.SetColor(colors.White)
	l.SetScale(1)
	return l, nil
}

// SetWidth moves the polyline to the renderer for the new width. This
// re-leases its render slots and can be slow.
func (l *Lines) SetWidth(width float32) error {
	if width == l.width {
		return nil
	}
	if err := l.renderer.ReleaseRenderSlots(l.rslots, l.layer, l.rindex, l.va); err != nil {
		return err
	}
	l.width = width
	l.renderer = l.shader.Renderer(width)
	l.renderer.AdoptVertexArrays(l.va)
	rslots, rindex, err := l.renderer.GetRenderSlots(l.renderLen, l.layer, l.va)
	if err != nil {
		return err
	}
	l.rslots, l.rindex = rslots, rindex
	return l.renderer.UploadSlotData(l.rdata, l.rslots, l.layer, l.rindex, l.va)
}

// lineRenderLength is the number of GL_LINES indices for n vertices.
func lineRenderLength(n int, closed bool) int {
	switch {
	case n <= 2:
		return 2
	case closed:
		return 2 * n
	default:
		return 2*n - 2
	}
}

// linePattern expands data slots into GL_LINES segment pairs: each vertex
// connects to the next, and back to the first when closed.
func linePattern(slots []int, closed bool) []int {
	n := len(slots)
	if n == 2 {
		return []int{slots[0], slots[1]}
	}
	segs := n
	if !closed {
		segs = n - 1
	}
	out := make([]int, 0, segs*2)
	for i := 0; i < segs; i++ {
		out = append(out, slots[i], slots[(i+1)%n])
	}
	return out
}
