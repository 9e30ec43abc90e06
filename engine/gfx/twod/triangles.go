package twod

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/hubastard/bramble/engine/colors"
	"github.com/hubastard/bramble/engine/gfx/batch"
	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// TriangleShader draws filled triangle sets through one shared client.
type TriangleShader struct {
	common   *Common
	shader   *glbackend.Shader
	renderer *batch.Client
}

// NewTriangleShader compiles the triangle shader and its client.
func NewTriangleShader(common *Common) (*TriangleShader, error) {
	cams := common.Cameras()
	sh, err := glbackend.NewShader(common.Context(),
		[]string{applyTransformSource, cams.VertexSource, primitiveVertexProg},
		[]string{dropSource, primitiveFragmentProg})
	if err != nil {
		return nil, err
	}
	s := &TriangleShader{common: common, shader: sh}
	s.renderer = batch.NewClient(sh, primitiveSpec("triangles"), gl.TRIANGLES)
	s.renderer.Uniforms = glbackend.NewUniformStore(
		common.ProjMatrix(),
		common.Cameras().Uniform(),
	)
	return s, nil
}

// Renderer returns the shared triangle client.
func (s *TriangleShader) Renderer() *batch.Client { return s.renderer }

// Triangles is a group of filled triangles sharing one transform. The
// vertex count is fixed at construction and must be a multiple of 3.
type Triangles struct {
	thing
}

// NewTriangles creates triangles through consecutive vertex triples on the
// given layer.
func NewTriangles(shader *TriangleShader, vertices [][2]float32, layer int) (*Triangles, error) {
	n := len(vertices)
	if n%3 != 0 {
		return nil, fmt.Errorf("twod: triangles need a multiple of 3 vertices, got %d", n)
	}
	t := &Triangles{}
	if err := t.lease(shader.renderer, n, n, layer); err != nil {
		return nil, err
	}
	if err := t.upload(append([]int(nil), t.slots...)); err != nil {
		return nil, err
	}
	t.SetVertices(vertices)
	t.SetPosition(0, 0)
	t.SetColor(colors.White)
	t.SetScale(1)
	return t, nil
}
