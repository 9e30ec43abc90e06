package twod

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/hubastard/bramble/engine/colors"
	"github.com/hubastard/bramble/engine/gfx/batch"
	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

func ellipseSpec() *batch.ArraySpec {
	s := primitiveSpec("ellipses")
	s.AddArray(batch.ArrayDef{Name: "dimension"})
	s.AddAttrib("dimension", "dimension", 2, 0, false)
	s.AddAttrib("dimension", "antialiasing", 1, 2, false)
	return s
}

const ellipseVertexProg = `
vec2 applyTransform(in vec2 pos, in vec2 origin, in vec2 offset,
            in float xScale, in float yScale, in float rotation);
vec2 applyCameras(in vec4 cameras, in vec2 pos);
attribute vec4 pos;
attribute vec4 rotozoom;
attribute vec4 cameras1;
attribute vec4 cameras2;
attribute vec4 color;
attribute vec4 dimension;
uniform mat4 projMatrix;
varying vec4 v2fColor;
varying vec4 v2fEllipse;
varying vec4 v2fPos;
void main()
{
    vec2 transform = applyTransform(pos.xy, vec2(0.0, 0.0),
                     pos.zw, rotozoom.x, rotozoom.y, rotozoom.z);
    transform = applyCameras(cameras1, transform);
    transform = applyCameras(cameras2, transform);
    gl_Position = projMatrix * vec4(transform.xy, 0.0, 1.0);
    v2fPos.xy = gl_Position.xy;
    v2fPos.z = dimension.z;
    v2fColor = color;
    v2fEllipse = vec4(pos.zw, dimension.xy);
}`

// The ellipse is evaluated implicitly per fragment: inside draws solid,
// a band near the edge fades out when antialiasing is non-zero.
const ellipseFragmentProg = `
varying vec4 v2fColor;
varying vec4 v2fEllipse;
varying vec4 v2fPos;
bool drop(in vec2 pos);
void main()
{
    if (drop(v2fPos.xy)) {discard;}
    vec2 working = abs(v2fEllipse.xy);
    working = working / v2fEllipse.zw;
    working = working * working;
    float sum = working.x + working.y;
    if (sum <= (1.0 - v2fPos.z)) {
      gl_FragColor = v2fColor;
    }
    else if (sum <= 1.0) {
      gl_FragColor = vec4(v2fColor.xyz, v2fColor.w * (1.0 - (1.0 / v2fPos.z)*(sum - 1.0 + v2fPos.z)));
    }
    else {
      gl_FragColor = vec4(0, 0, 0, 0);
    }
}`

// EllipseShader draws antialiased ellipses as implicit quads.
type EllipseShader struct {
	common   *Common
	shader   *glbackend.Shader
	renderer *batch.Client
}

// NewEllipseShader compiles the ellipse shader and its client.
func NewEllipseShader(common *Common) (*EllipseShader, error) {
	cams := common.Cameras()
	sh, err := glbackend.NewShader(common.Context(),
		[]string{applyTransformSource, cams.VertexSource, ellipseVertexProg},
		[]string{dropSource, ellipseFragmentProg})
	if err != nil {
		return nil, err
	}
	s := &EllipseShader{common: common, shader: sh}
	s.renderer = batch.NewClient(sh, ellipseSpec(), gl.TRIANGLES)
	s.renderer.Uniforms = glbackend.NewUniformStore(
		common.ProjMatrix(),
		common.Cameras().Uniform(),
	)
	return s, nil
}

// Ellipse is one ellipse with half-axes dx and dy, drawn as a quad whose
// fragment shader evaluates the ellipse equation.
type Ellipse struct {
	thing
}

// NewEllipse creates an ellipse with the given half-axes on the given layer.
func NewEllipse(shader *EllipseShader, dx, dy float32, layer int) (*Ellipse, error) {
	e := &Ellipse{}
	if err := e.lease(shader.renderer, 4, 6, layer); err != nil {
		return nil, err
	}
	if err := e.upload(quadPattern(e.slots)); err != nil {
		return nil, err
	}
	e.SetDimensions(dx, dy)
	e.SetPosition(0, 0)
	e.SetColor(colors.White)
	e.SetScale(1)
	e.SetAntialiasing(0)
	return e, nil
}

// SetDimensions resizes the ellipse's half-axes, moving the quad corners
// to match.
func (e *Ellipse) SetDimensions(dx, dy float32) {
	e.SetVertices([][2]float32{{-dx, -dy}, {dx, -dy}, {dx, dy}, {-dx, dy}})
	e.va.SetFloat("dimension", e.slots, dx, dy)
}

// SetAntialiasing sets the fraction of the ellipse, 0 to 1, used as the
// fade-out band.
func (e *Ellipse) SetAntialiasing(amount float32) {
	e.va.SetFloat("antialiasing", e.slots, amount)
}
