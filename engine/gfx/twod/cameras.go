package twod

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/gl/v2.1/gl"

	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// ErrCameraBlocks is returned when the camera store has no run of free
// blocks large enough for a new camera.
var ErrCameraBlocks = errors.New("twod: out of camera blocks")

// CameraStore owns the shared cameraArray uniform and hands out vec4-sized
// blocks of it to cameras. Camera number 0 is hard-wired to the identity in
// the shaders, so shapes reference a camera as block base + 1.
//
// Layout of a vertex camera (2 blocks): posx posy originx originy
// scalex scaley rotation unused. A fragment camera is 1 block of RGBA.
type CameraStore struct {
	data     []float32
	blockMap []int
	uniform  *glbackend.Uniform

	// GLSL fragments linking against the cameraArray uniform, generated
	// for this store's block count.
	VertexSource   string
	FragmentSource string
}

// NewCameraStore builds a store over blockSize floats.
func NewCameraStore(blockSize int) *CameraStore {
	cs := &CameraStore{
		data:     make([]float32, blockSize),
		blockMap: make([]int, blockSize/4),
	}
	for i := range cs.blockMap {
		cs.blockMap[i] = i
	}
	cameras := blockSize / 8
	cs.VertexSource = fmt.Sprintf(`
uniform vec4 cameraArray[%d];

vec2 applyTransform(in vec2 pos, in vec2 origin, in vec2 offset,
                    in float xScale, in float yScale, in float rotation);
vec2 applyCamera(in float camera, in vec2 pos)
{
  vec2 ret = pos;
  if (camera != 0.0) {
    int camBase = int(camera - 1.0);
    int camBase2 = camBase + 1;
    ret = applyTransform(cameraArray[camBase].xy,
                cameraArray[camBase].zw, pos, cameraArray[camBase2].x,
                cameraArray[camBase2].y, cameraArray[camBase2].z);
  }
  return ret;
}
vec2 applyCameras(in vec4 cameras, in vec2 pos)
{
  vec2 ret = applyCamera(cameras.x, pos);
  ret = applyCamera(cameras.y, ret);
  ret = applyCamera(cameras.z, ret);
  ret = applyCamera(cameras.w, ret);
  return ret;
}
`, cameras*2)
	cs.FragmentSource = fmt.Sprintf(`
uniform vec4 cameraArray[%d];

vec4 applyFragCamera(in float camera, in vec4 fragColor)
{
  vec4 ret = fragColor;
  if (camera != 0.0) {
     int camBase = int(camera - 1.0);
     ret = ret * cameraArray[camBase];
  }
  return ret;
}
vec4 applyFragCameras(in vec4 cameras, in vec4 fragColor)
{
  vec4 ret = applyFragCamera(cameras.x, fragColor);
  ret = applyFragCamera(cameras.y, ret);
  ret = applyFragCamera(cameras.z, ret);
  ret = applyFragCamera(cameras.w, ret);
  return ret;
}
`, cameras*2)
	cs.uniform = glbackend.NewUniform("cameraArray", func(loc int32) {
		gl.Uniform4fv(loc, int32(cameras*2), &cs.data[0])
	})
	return cs
}

// Uniform returns the cameraArray uniform for inclusion in uniform stores.
func (cs *CameraStore) Uniform() *glbackend.Uniform { return cs.uniform }

// GetBlocks finds a consecutive run of n free vec4 blocks and returns the
// base block index. A run is only usable if a block beyond it is also free,
// matching the one-reserved-entry behavior of the slot allocators.
func (cs *CameraStore) GetBlocks(n int) (int, error) {
	sort.Ints(cs.blockMap)
	for x := 0; x+n < len(cs.blockMap); x++ {
		if cs.blockMap[x+n]-cs.blockMap[x] == n {
			base := cs.blockMap[x]
			cs.blockMap = append(cs.blockMap[:x], cs.blockMap[x+n:]...)
			return base, nil
		}
	}
	return 0, ErrCameraBlocks
}

// ReleaseBlocks returns n blocks starting at base to the store.
func (cs *CameraStore) ReleaseBlocks(base, n int) {
	for x := base; x < base+n; x++ {
		cs.blockMap = append(cs.blockMap, x)
	}
}

func (cs *CameraStore) setTuple(pos int, vals ...float32) {
	copy(cs.data[pos:], vals)
	cs.uniform.Invalidate()
}

func (cs *CameraStore) setVal(pos int, val float32) {
	cs.data[pos] = val
	cs.uniform.Invalidate()
}

// FreeBlocks reports how many blocks are currently free.
func (cs *CameraStore) FreeBlocks() int { return len(cs.blockMap) }

// VertexCamera is a hardware transform applied to every shape referencing
// it: scale (x and y independent), then rotate, then translate. It occupies
// two blocks of its store.
type VertexCamera struct {
	store *CameraStore
	base  int
}

// NewVertexCamera allocates a vertex camera from the store.
func NewVertexCamera(store *CameraStore) (*VertexCamera, error) {
	base, err := store.GetBlocks(2)
	if err != nil {
		return nil, err
	}
	c := &VertexCamera{store: store, base: base}
	c.SetScale(1)
	return c, nil
}

// Ref is the value shapes store in their camera attributes.
func (c *VertexCamera) Ref() float32 { return float32(c.base + 1) }

// Destroy returns the camera's blocks to the store.
func (c *VertexCamera) Destroy() { c.store.ReleaseBlocks(c.base, 2) }

func (c *VertexCamera) SetPosition(x, y float32) { c.store.setTuple(c.base*4, x, y) }
func (c *VertexCamera) SetOrigin(x, y float32)   { c.store.setTuple(c.base*4+2, x, y) }
func (c *VertexCamera) SetScale(s float32)       { c.store.setTuple(c.base*4+4, s, s) }
func (c *VertexCamera) SetScaleX(s float32)      { c.store.setVal(c.base*4+4, s) }
func (c *VertexCamera) SetScaleY(s float32)      { c.store.setVal(c.base*4+5, s) }
func (c *VertexCamera) SetRotation(r float32)    { c.store.setVal(c.base*4+6, r) }

// FragmentCamera modulates the color of every fragment of the shapes
// referencing it, one block of RGBA.
type FragmentCamera struct {
	store *CameraStore
	base  int
}

// NewFragmentCamera allocates a fragment camera from the store.
func NewFragmentCamera(store *CameraStore) (*FragmentCamera, error) {
	base, err := store.GetBlocks(1)
	if err != nil {
		return nil, err
	}
	c := &FragmentCamera{store: store, base: base}
	c.SetColor(1, 1, 1, 1)
	return c, nil
}

// Ref is the value shapes store in their fragment-camera attributes.
func (c *FragmentCamera) Ref() float32 { return float32(c.base + 1) }

// Destroy returns the camera's block to the store.
func (c *FragmentCamera) Destroy() { c.store.ReleaseBlocks(c.base, 1) }

func (c *FragmentCamera) SetColor(r, g, b, a float32) {
	c.store.setTuple(c.base*4, r, g, b, a)
}
