package batch

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/hubastard/bramble/engine/alloc"
	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// ErrInvalidUsage is returned when render slots are addressed through a
// (region, layer, list) triple they were not leased from.
var ErrInvalidUsage = errors.New("batch: slots do not belong to that layer and index list")

// DefaultRegionSize is the slot capacity of newly created regions.
const DefaultRegionSize = 65535

// indexList is one draw-index block of a layer: a flat uint32 index array,
// an allocator over its positions, and the [min, min+length) window that a
// single DrawElements call covers. Released positions are zero-filled and
// the window recomputed lazily, just before the next draw.
type indexList struct {
	indices []uint32
	slots   *alloc.Slices
	min     int
	length  int
	dirty   bool
	pending []int
}

func newIndexList(size int) *indexList {
	return &indexList{
		indices: make([]uint32, size),
		slots:   alloc.New(0, size),
	}
}

// clean zero-fills released positions, compacts the allocator, and
// recomputes the draw window from the leading and trailing free spans.
func (il *indexList) clean() {
	for _, p := range il.pending {
		il.indices[p] = 0
	}
	il.pending = il.pending[:0]
	il.slots.Join()

	n := len(il.indices)
	min, max := 0, n-1
	spans := il.slots.Spans()
	if len(spans) > 0 {
		if spans[0].Begin == 0 {
			min = spans[0].End
		}
		if last := spans[len(spans)-1]; last.End == n {
			max = last.Begin - 1
		}
	}
	if min > max {
		il.min, il.length = 0, 0
	} else {
		il.min, il.length = min, max-min+1
	}
	il.dirty = false
}

// Client draws one family of shapes through one shader: it owns the vertex
// arrays holding the shapes' attribute data and, per (region, layer), the
// index lists that select which slots actually render. One DrawElements
// call is issued per non-empty index list.
type Client struct {
	mode       uint32
	shader     *glbackend.Shader
	spec       *ArraySpec
	regionSize int

	arrays      []*VertexArrays
	layers      map[*VertexArrays]map[int][]*indexList
	hooks       []func(layer int)
	rebindHooks []func()

	// Uniforms, when set, is bound before each layer's draws.
	Uniforms *glbackend.UniformStore
}

// NewClient builds a client over the given shader and region spec drawing
// the given primitive mode (gl.TRIANGLES, gl.LINES and so on). The client
// registers itself with the shader as layers are populated.
func NewClient(shader *glbackend.Shader, spec *ArraySpec, mode uint32) *Client {
	c := &Client{
		mode:       mode,
		shader:     shader,
		spec:       spec,
		regionSize: DefaultRegionSize,
		layers:     map[*VertexArrays]map[int][]*indexList{},
	}
	if shader != nil {
		shader.AddClient(c)
	}
	return c
}

// SetRegionSize overrides the slot capacity of regions created afterwards.
func (c *Client) SetRegionSize(n int) { c.regionSize = n }

// Shader returns the shader this client draws through.
func (c *Client) Shader() *glbackend.Shader { return c.shader }

// AddRenderHook registers a function run at the start of every DoTasks,
// before any drawing. Hooks bind textures, set line widths and the like.
func (c *Client) AddRenderHook(fn func(layer int)) {
	c.hooks = append(c.hooks, fn)
}

// GetVertexArrays returns a region with at least n data slots free, growing
// a new region when every existing one is too fragmented or full.
func (c *Client) GetVertexArrays(n int) *VertexArrays {
	for _, va := range c.arrays {
		if va.CanAllocDataSlots(n) {
			return va
		}
	}
	va := c.spec.MakeArrays(c.regionSize)
	c.arrays = append(c.arrays, va)
	c.layers[va] = map[int][]*indexList{}
	return va
}

// AdoptVertexArrays registers a region created by another client over the
// same spec, letting a shape migrate between clients without re-leasing its
// data slots.
func (c *Client) AdoptVertexArrays(va *VertexArrays) {
	if _, ok := c.layers[va]; ok {
		return
	}
	c.arrays = append(c.arrays, va)
	c.layers[va] = map[int][]*indexList{}
}

func (c *Client) listSize(va *VertexArrays) int {
	return int(c.spec.SlotMultiplier * float64(va.Count()))
}

// GetRenderSlots leases n draw-index positions on the given layer of the
// given region, returning the positions and the index-list id they live in.
// Both are needed to upload or release the slots later.
func (c *Client) GetRenderSlots(n, layer int, va *VertexArrays) ([]int, int, error) {
	tables, ok := c.layers[va]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unknown vertex arrays", ErrInvalidUsage)
	}
	lists, ok := tables[layer]
	if !ok {
		if c.shader != nil {
			c.shader.Context().AddLayer(layer)
			c.shader.AddClientLayer(c, layer)
		}
	}

	list := -1
	for i := 0; i < len(lists); i++ {
		if lists[i].slots.CanAllocate(n) {
			list = i
			break
		}
	}
	if list == -1 {
		il := newIndexList(c.listSize(va))
		lists = append(lists, il)
		list = len(lists) - 1
	}
	tables[layer] = lists

	il := lists[list]
	slots, err := il.slots.Allocate(n)
	if err != nil {
		return nil, 0, err
	}
	il.dirty = true
	return slots, list, nil
}

// UploadSlotData points draw-index positions at data slots: data[i] becomes
// the vertex index drawn at position slots[i]. The draw window widens
// immediately so the new geometry appears on the next frame.
func (c *Client) UploadSlotData(data, slots []int, layer, list int, va *VertexArrays) error {
	il, err := c.findList(layer, list, va)
	if err != nil {
		return err
	}
	if len(data) != len(slots) {
		return fmt.Errorf("%w: %d data values for %d slots", ErrInvalidUsage, len(data), len(slots))
	}
	for i, p := range slots {
		if p < 0 || p >= len(il.indices) {
			return fmt.Errorf("%w: position %d out of range", ErrInvalidUsage, p)
		}
		il.indices[p] = uint32(data[i])
	}
	if len(slots) > 0 {
		lo, hi := slots[0], slots[len(slots)-1]
		if il.length == 0 {
			il.min, il.length = lo, hi-lo+1
		} else {
			max := il.min + il.length - 1
			if lo < il.min {
				il.min = lo
			}
			if hi > max {
				max = hi
			}
			il.length = max - il.min + 1
		}
	}
	return nil
}

// ReleaseRenderSlots returns draw-index positions to their list. The
// positions keep drawing stale indices until the list is cleaned at the
// start of the next DoTasks.
func (c *Client) ReleaseRenderSlots(slots []int, layer, list int, va *VertexArrays) error {
	il, err := c.findList(layer, list, va)
	if err != nil {
		return err
	}
	il.slots.Release(slots)
	il.pending = append(il.pending, slots...)
	il.dirty = true
	return nil
}

func (c *Client) findList(layer, list int, va *VertexArrays) (*indexList, error) {
	tables, ok := c.layers[va]
	if !ok {
		return nil, fmt.Errorf("%w: unknown vertex arrays", ErrInvalidUsage)
	}
	lists, ok := tables[layer]
	if !ok || list < 0 || list >= len(lists) {
		return nil, fmt.Errorf("%w: layer %d list %d", ErrInvalidUsage, layer, list)
	}
	return lists[list], nil
}

// DoTasks draws everything this client has on the given layer: run hooks,
// bind uniforms, then per region bind its arrays and issue one DrawElements
// per non-empty index list. Dirty lists are cleaned first. The shader's
// program is already current when the shader dispatches here.
func (c *Client) DoTasks(layer int) {
	ctx := c.shader.Context()
	for _, hook := range c.hooks {
		hook(layer)
	}
	if c.Uniforms != nil {
		c.Uniforms.Bind(ctx)
	}
	for _, va := range c.arrays {
		lists := c.layers[va][layer]
		if len(lists) == 0 {
			continue
		}
		va.Bind(ctx, c.shader)
		for _, il := range lists {
			if il.dirty {
				il.clean()
			}
			if il.length == 0 {
				continue
			}
			gl.DrawElements(c.mode, int32(il.length), gl.UNSIGNED_INT, gl.Ptr(il.indices[il.min:]))
		}
	}
}

// AddRebindHook registers a function run after the client's regions have
// been reset following a context loss, for owners with extra GPU state to
// rebuild (texture atlases and the like).
func (c *Client) AddRebindHook(fn func()) {
	c.rebindHooks = append(c.rebindHooks, fn)
}

// Rebind re-marks every region for full re-upload after a context loss.
func (c *Client) Rebind() {
	for _, va := range c.arrays {
		va.Rebind()
	}
	for _, fn := range c.rebindHooks {
		fn()
	}
}
