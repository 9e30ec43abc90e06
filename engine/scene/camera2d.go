package scene

import (
	"github.com/chewxy/math32"

	"github.com/hubastard/bramble/engine/gfx/twod"
)

// Camera2D is a pannable, zoomable, rotatable view over the pixel-space
// scene. It drives a shader camera block, so moving it is a uniform update;
// no vertex data is touched.
type Camera2D struct {
	cam      *twod.VertexCamera
	x, y     float32
	ox, oy   float32
	zoom     float32
	rotation float32
}

// NewCamera2D allocates a camera block. originX/originY is the pivot the
// zoom and rotation happen around, normally the screen centre.
func NewCamera2D(store *twod.CameraStore, originX, originY float32) (*Camera2D, error) {
	vc, err := twod.NewVertexCamera(store)
	if err != nil {
		return nil, err
	}
	c := &Camera2D{cam: vc, ox: originX, oy: originY, zoom: 1}
	vc.SetOrigin(originX, originY)
	c.SetPosition(0, 0)
	return c, nil
}

// Ref is the camera reference things store in their vertex data.
func (c *Camera2D) Ref() float32 { return c.cam.Ref() }

// SetOrigin moves the zoom/rotation pivot.
func (c *Camera2D) SetOrigin(x, y float32) {
	c.ox, c.oy = x, y
	c.cam.SetOrigin(x, y)
	c.SetPosition(c.x, c.y)
}

func (c *Camera2D) Position() (float32, float32) { return c.x, c.y }

// SetPosition places the camera in world space. The world shifts the
// opposite way on screen. The shader camera's translation includes the
// pivot, so position zero with any pivot is the identity view.
func (c *Camera2D) SetPosition(x, y float32) {
	c.x, c.y = x, y
	c.cam.SetPosition(c.ox-x, c.oy-y)
}

func (c *Camera2D) Move(dx, dy float32) { c.SetPosition(c.x+dx, c.y+dy) }

func (c *Camera2D) Zoom() float32 { return c.zoom }

// SetZoom clamps to a small positive minimum; 1 is no zoom.
func (c *Camera2D) SetZoom(z float32) {
	c.zoom = math32.Max(z, 0.05)
	c.cam.SetScale(c.zoom)
}

func (c *Camera2D) Rotation() float32 { return c.rotation }

func (c *Camera2D) SetRotation(radians float32) {
	c.rotation = radians
	c.cam.SetRotation(radians)
}

func (c *Camera2D) Rotate(dRad float32) { c.SetRotation(c.rotation + dRad) }

// Destroy releases the camera block back to the store.
func (c *Camera2D) Destroy() { c.cam.Destroy() }
