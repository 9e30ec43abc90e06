// Package twod is the 2D consumer layer over the batching engine: shared
// camera state, sprites drawn from texture atlases, and line, triangle and
// ellipse primitives. Everything funnels through batch.Client, so a scene of
// thousands of shapes still renders in a handful of draw calls.
package twod

import (
	"github.com/go-gl/gl/v2.1/gl"

	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// applyTransformSource is the shared vertex-shader fragment implementing
// scale-then-rotate-then-translate about an origin. Every 2D shader links it.
const applyTransformSource = `
vec2 applyTransform(in vec2 pos, in vec2 origin, in vec2 offset,
                    in float xScale, in float yScale, in float rotation)
{
    vec2 offsets = vec2 ((offset.x - origin.x) * xScale,
                         (offset.y - origin.y) * yScale);
    mat2 rotMatrix = mat2 (cos(rotation), sin(rotation),
                          -sin(rotation), cos(rotation));
    offsets = (rotMatrix * offsets);
    vec2 ret = offsets + pos;
    return ret;
}
`

// dropSource discards fragments outside clip space, shared by all 2D
// fragment shaders.
const dropSource = `
bool drop(in vec2 pos)
{
    return ((pos.x > 1.0) || (pos.x < -1.0) ||
            (pos.y > 1.0) || (pos.y < -1.0));
}`

// DefaultCameraBlock is the float capacity of the shared camera store.
const DefaultCameraBlock = 50 * 8

// Common carries the state every 2D shader shares: the pixel-space
// projection matrix and the camera store. One Common per graphics context.
type Common struct {
	ctx      *glbackend.Context
	cameras  *CameraStore
	projData [16]float32
	projptr  *glbackend.Uniform
	projRes  [2]int
}

// NewCommon builds the shared 2D state for a context.
func NewCommon(ctx *glbackend.Context) *Common {
	c := &Common{
		ctx:     ctx,
		cameras: NewCameraStore(DefaultCameraBlock),
	}
	c.projptr = glbackend.NewUniform("projMatrix", func(loc int32) {
		gl.UniformMatrix4fv(loc, 1, false, &c.projData[0])
	})
	return c
}

// Context returns the graphics context this state belongs to.
func (c *Common) Context() *glbackend.Context { return c.ctx }

// Cameras returns the shared camera store.
func (c *Common) Cameras() *CameraStore { return c.cameras }

// ProjMatrix returns the shared pixel-to-clip-space projection uniform,
// recomputing it when the context resolution has changed. Pixel (0,0) maps
// to the top-left corner, y growing downwards.
func (c *Common) ProjMatrix() *glbackend.Uniform {
	res := c.ctx.Resolution()
	if res != c.projRes {
		c.projRes = res
		c.projData = [16]float32{}
		c.projData[0] = 2 / float32(res[0])
		c.projData[5] = 2 / -float32(res[1])
		c.projData[12] = -1
		c.projData[13] = 1
		c.projData[15] = 1
		c.projptr.Invalidate()
	}
	return c.projptr
}
