package twod

import (
	"github.com/hubastard/bramble/engine/colors"
	"github.com/hubastard/bramble/engine/gfx/batch"
)

// thing is the base embedded by every 2D shape. It holds the shape's leases
// on its renderer (data slots in a vertex-arrays region, draw-index slots on
// a layer) and implements the setters all shapes share.
type thing struct {
	renderer *batch.Client
	va       *batch.VertexArrays
	slots    []int
	rslots   []int
	rindex   int
	rdata    []int
	layer    int
	visible  bool
}

// lease acquires data and render slots and uploads the draw pattern.
func (t *thing) lease(renderer *batch.Client, dataSlots, renderSlots, layer int) error {
	t.renderer = renderer
	t.layer = layer
	t.visible = true
	t.va = renderer.GetVertexArrays(dataSlots)
	slots, err := t.va.GetDataSlots(dataSlots)
	if err != nil {
		return err
	}
	t.slots = slots
	rslots, rindex, err := renderer.GetRenderSlots(renderSlots, layer, t.va)
	if err != nil {
		t.va.ReleaseDataSlots(slots)
		return err
	}
	t.rslots, t.rindex = rslots, rindex
	return nil
}

func (t *thing) upload(rdata []int) error {
	t.rdata = rdata
	return t.renderer.UploadSlotData(rdata, t.rslots, t.layer, t.rindex, t.va)
}

// Destroy releases the shape's slots back to its renderer. The shape must
// not be used afterwards.
func (t *thing) Destroy() error {
	if t.renderer == nil {
		return nil
	}
	err := t.renderer.ReleaseRenderSlots(t.rslots, t.layer, t.rindex, t.va)
	t.va.ReleaseDataSlots(t.slots)
	t.renderer = nil
	return err
}

// Layer reports the draw-order layer the shape renders on.
func (t *thing) Layer() int { return t.layer }

// SetLayer moves the shape to another layer by re-leasing its render slots.
func (t *thing) SetLayer(layer int) error {
	if layer == t.layer {
		return nil
	}
	if err := t.renderer.ReleaseRenderSlots(t.rslots, t.layer, t.rindex, t.va); err != nil {
		return err
	}
	t.layer = layer
	rslots, rindex, err := t.renderer.GetRenderSlots(len(t.rslots), layer, t.va)
	if err != nil {
		return err
	}
	t.rslots, t.rindex = rslots, rindex
	return t.renderer.UploadSlotData(t.rdata, t.rslots, layer, t.rindex, t.va)
}

// SetVisible toggles drawing. Hidden shapes keep their slots but point every
// draw index at vertex 0, degenerate geometry the GPU skips over.
func (t *thing) SetVisible(visible bool) error {
	t.visible = visible
	data := t.rdata
	if !visible {
		data = make([]int, len(t.rdata))
	}
	return t.renderer.UploadSlotData(data, t.rslots, t.layer, t.rindex, t.va)
}

func (t *thing) SetPosition(x, y float32) {
	t.va.SetFloat("position", t.slots, x, y)
}

func (t *thing) SetScale(s float32) {
	t.va.SetFloat("scaleX", t.slots, s)
	t.va.SetFloat("scaleY", t.slots, s)
}

func (t *thing) SetScaleX(s float32) { t.va.SetFloat("scaleX", t.slots, s) }
func (t *thing) SetScaleY(s float32) { t.va.SetFloat("scaleY", t.slots, s) }

func (t *thing) SetRotation(radians float32) {
	t.va.SetFloat("rotation", t.slots, radians)
}

// SetColor colors the whole shape.
func (t *thing) SetColor(c colors.Color) {
	rgba := c.RGBA8()
	t.va.SetBytes("color", t.slots, rgba[0], rgba[1], rgba[2], rgba[3])
}

// SetColors colors each vertex independently; len(cs) must equal the
// shape's vertex count.
func (t *thing) SetColors(cs []colors.Color) {
	vals := make([]byte, 0, len(cs)*4)
	for _, c := range cs {
		rgba := c.RGBA8()
		vals = append(vals, rgba[0], rgba[1], rgba[2], rgba[3])
	}
	t.va.SetByteBatch("colors", t.slots, vals)
}

// SetVertices repositions every vertex relative to the shape's position.
// The vertex count is fixed at construction.
func (t *thing) SetVertices(vertices [][2]float32) {
	vals := make([]float32, 0, len(vertices)*2)
	for _, v := range vertices {
		vals = append(vals, v[0], v[1])
	}
	t.va.SetFloatBatch("offsets", t.slots, vals)
}

// SetVertex repositions the nth vertex.
func (t *thing) SetVertex(n int, x, y float32) {
	t.va.SetFloatBatch("offsets", t.slots[n:n+1], []float32{x, y})
}

// CameraRef is anything that can be stored in a camera attribute slot.
// The zero reference (no camera) is the literal 0.
type CameraRef interface {
	Ref() float32
}

// SetCamera sets the nth of the shape's eight vertex-camera bindings.
func (t *thing) SetCamera(n int, cam CameraRef) {
	ref := float32(0)
	if cam != nil {
		ref = cam.Ref()
	}
	if n < 4 {
		t.va.SetFloatAt("camera1", t.slots, n, ref)
	} else {
		t.va.SetFloatAt("camera2", t.slots, n-4, ref)
	}
}

// SetCameras sets the first len(cams) vertex-camera bindings, at most 8.
func (t *thing) SetCameras(cams []CameraRef) {
	for i, cam := range cams {
		if i >= 8 {
			break
		}
		t.SetCamera(i, cam)
	}
}
