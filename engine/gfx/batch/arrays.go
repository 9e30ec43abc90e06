package batch

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/hubastard/bramble/engine/alloc"
	glbackend "github.com/hubastard/bramble/engine/gfx/gl"
)

// arrayData is one backing array of a region plus its GL buffer object and
// dirty-range bookkeeping. Exactly one of f32/u8 is non-nil depending on the
// declared Kind. The VBO is created lazily on first Bind so all slot and
// setter bookkeeping stays testable without a GL context.
type arrayData struct {
	def     ArrayDef
	f32     []float32
	u8      []byte
	vbo     uint32
	created bool
	dirty   bool
	// dirty element range, min inclusive, max exclusive
	dirtyMin int
	dirtyMax int
}

func (a *arrayData) elemSize() int {
	if a.def.Kind == Uint8 {
		return 1
	}
	return 4
}

func (a *arrayData) glType() uint32 {
	if a.def.Kind == Uint8 {
		return gl.UNSIGNED_BYTE
	}
	return gl.FLOAT
}

func (a *arrayData) length() int {
	if a.def.Kind == Uint8 {
		return len(a.u8)
	}
	return len(a.f32)
}

func (a *arrayData) markDirty(min, max int) {
	if !a.dirty {
		a.dirty = true
		a.dirtyMin = min
		a.dirtyMax = max
		return
	}
	if min < a.dirtyMin {
		a.dirtyMin = min
	}
	if max > a.dirtyMax {
		a.dirtyMax = max
	}
}

// shaderBinding is the cached (array, attribute location) pairing for one
// shader, resolved once per shader per region.
type shaderBinding struct {
	arr *arrayData
	loc int32
}

// VertexArrays is a fixed-capacity block of per-slot attribute data shared by
// many shapes. Slots are leased with GetDataSlots and written through the
// named setters; Bind uploads only what changed since the last frame.
type VertexArrays struct {
	spec   *ArraySpec
	count  int
	arrays map[string]*arrayData
	order  []*arrayData
	slots  *alloc.Slices

	bindCache map[*glbackend.Shader][]shaderBinding
}

func newVertexArrays(spec *ArraySpec, slots int) *VertexArrays {
	va := &VertexArrays{
		spec:      spec,
		count:     slots,
		arrays:    map[string]*arrayData{},
		slots:     alloc.New(0, slots),
		bindCache: map[*glbackend.Shader][]shaderBinding{},
	}
	for _, def := range spec.arrays {
		a := &arrayData{def: def}
		n := slots * def.Comps
		if def.Kind == Uint8 {
			a.u8 = make([]byte, n)
		} else {
			a.f32 = make([]float32, n)
		}
		va.arrays[def.Name] = a
		va.order = append(va.order, a)
	}
	return va
}

// Count reports the slot capacity of the region.
func (va *VertexArrays) Count() int { return va.count }

// Spec returns the spec this region was built from.
func (va *VertexArrays) Spec() *ArraySpec { return va.spec }

// CanAllocDataSlots reports whether n contiguous-or-fragmented slots are
// available, caching the candidate for the following GetDataSlots.
func (va *VertexArrays) CanAllocDataSlots(n int) bool {
	return va.slots.CanAllocate(n)
}

// GetDataSlots leases n slots from the region.
func (va *VertexArrays) GetDataSlots(n int) ([]int, error) {
	return va.slots.Allocate(n)
}

// ReleaseDataSlots returns slots to the region for reuse.
func (va *VertexArrays) ReleaseDataSlots(slots []int) {
	va.slots.Release(slots)
}

func (va *VertexArrays) attrib(name string) (AttribDef, *arrayData) {
	def, ok := va.spec.attribs[name]
	if !ok {
		panic("batch: unknown attrib " + name)
	}
	return def, va.arrays[def.Array]
}

// SetFloat writes the same vals (len == attrib size) into every given slot.
func (va *VertexArrays) SetFloat(name string, slots []int, vals ...float32) {
	def, a := va.attrib(name)
	if def.Batched {
		panic("batch: attrib " + name + " is batched, use SetFloatBatch")
	}
	if len(vals) != def.Size {
		panic(fmt.Sprintf("batch: attrib %s takes %d values, got %d", name, def.Size, len(vals)))
	}
	comps := a.def.Comps
	for _, slot := range slots {
		copy(a.f32[slot*comps+def.Offset:], vals)
	}
	va.dirtySlots(a, def, slots)
}

// SetFloatBatch writes one group of attrib-size values per slot; vals must
// hold size*len(slots) floats in slot order.
func (va *VertexArrays) SetFloatBatch(name string, slots []int, vals []float32) {
	def, a := va.attrib(name)
	if len(vals) != def.Size*len(slots) {
		panic(fmt.Sprintf("batch: attrib %s batch takes %d values for %d slots, got %d",
			name, def.Size*len(slots), len(slots), len(vals)))
	}
	comps := a.def.Comps
	for i, slot := range slots {
		copy(a.f32[slot*comps+def.Offset:slot*comps+def.Offset+def.Size], vals[i*def.Size:])
	}
	va.dirtySlots(a, def, slots)
}

// SetFloatAt writes a single float at a per-call component offset, for
// attribs declared with offset -1.
func (va *VertexArrays) SetFloatAt(name string, slots []int, offset int, val float32) {
	def, a := va.attrib(name)
	if def.Offset != -1 {
		panic("batch: attrib " + name + " has a fixed offset")
	}
	comps := a.def.Comps
	for _, slot := range slots {
		a.f32[slot*comps+offset] = val
	}
	if len(slots) > 0 {
		a.markDirty(slots[0]*comps+offset, slots[len(slots)-1]*comps+offset+1)
	}
}

// SetBytes writes the same byte vals into every given slot.
func (va *VertexArrays) SetBytes(name string, slots []int, vals ...byte) {
	def, a := va.attrib(name)
	if len(vals) != def.Size {
		panic(fmt.Sprintf("batch: attrib %s takes %d values, got %d", name, def.Size, len(vals)))
	}
	comps := a.def.Comps
	for _, slot := range slots {
		copy(a.u8[slot*comps+def.Offset:], vals)
	}
	va.dirtySlots(a, def, slots)
}

// SetByteBatch writes one group of attrib-size bytes per slot.
func (va *VertexArrays) SetByteBatch(name string, slots []int, vals []byte) {
	def, a := va.attrib(name)
	if len(vals) != def.Size*len(slots) {
		panic(fmt.Sprintf("batch: attrib %s batch takes %d values for %d slots, got %d",
			name, def.Size*len(slots), len(slots), len(vals)))
	}
	comps := a.def.Comps
	for i, slot := range slots {
		copy(a.u8[slot*comps+def.Offset:slot*comps+def.Offset+def.Size], vals[i*def.Size:])
	}
	va.dirtySlots(a, def, slots)
}

// dirtySlots widens the array's dirty range to cover the touched slots.
// Slots arrive in ascending order from the allocator, so first and last
// bound the whole write.
func (va *VertexArrays) dirtySlots(a *arrayData, def AttribDef, slots []int) {
	if len(slots) == 0 {
		return
	}
	comps := a.def.Comps
	a.markDirty(slots[0]*comps+def.Offset, slots[len(slots)-1]*comps+def.Offset+def.Size)
}

// Bind makes the region's arrays current for the given shader, creating
// buffer objects on first use and uploading dirty ranges. Dynamic arrays
// upload only the dirty sub-range; static arrays re-upload whole.
func (va *VertexArrays) Bind(ctx *glbackend.Context, shader *glbackend.Shader) {
	binds, ok := va.bindCache[shader]
	if !ok {
		for _, a := range va.order {
			loc, found := shader.ArrayLocs[a.def.Name]
			if !found {
				continue
			}
			binds = append(binds, shaderBinding{arr: a, loc: loc})
		}
		va.bindCache[shader] = binds
	}

	rebindAll := ctx.BoundArraysOwner() != va
	for _, b := range binds {
		a := b.arr
		if !rebindAll && !a.dirty && a.created {
			continue
		}
		if !a.created {
			gl.GenBuffers(1, &a.vbo)
			a.created = true
			ctx.BindBuffer(gl.ARRAY_BUFFER, a.vbo)
			gl.BufferData(gl.ARRAY_BUFFER, a.length()*a.elemSize(), va.ptr(a, 0), usage(a.def.Static))
			a.dirty = false
		} else if a.dirty {
			ctx.BindBuffer(gl.ARRAY_BUFFER, a.vbo)
			if a.def.Static {
				gl.BufferData(gl.ARRAY_BUFFER, a.length()*a.elemSize(), va.ptr(a, 0), usage(true))
			} else {
				off := a.dirtyMin * a.elemSize()
				size := (a.dirtyMax - a.dirtyMin) * a.elemSize()
				gl.BufferSubData(gl.ARRAY_BUFFER, off, size, va.ptr(a, a.dirtyMin))
			}
			a.dirty = false
		}
		ctx.BindArray(b.loc, int32(a.def.Comps), a.glType(), a.def.Normalized, a.vbo)
	}
	ctx.SetBoundArraysOwner(va)
}

// Rebind drops buffer objects and cached attribute locations after a context
// loss; the next Bind recreates and re-uploads everything.
func (va *VertexArrays) Rebind() {
	for _, a := range va.order {
		a.created = false
		a.vbo = 0
		a.markDirty(0, a.length())
	}
	va.bindCache = map[*glbackend.Shader][]shaderBinding{}
}

func (va *VertexArrays) ptr(a *arrayData, elem int) unsafe.Pointer {
	if a.def.Kind == Uint8 {
		return gl.Ptr(a.u8[elem:])
	}
	return gl.Ptr(a.f32[elem:])
}

func usage(static bool) uint32 {
	if static {
		return gl.STATIC_DRAW
	}
	return gl.DYNAMIC_DRAW
}

// floatAt reads back one component, for tests and debugging.
func (va *VertexArrays) floatAt(array string, slot, comp int) float32 {
	a := va.arrays[array]
	return a.f32[slot*a.def.Comps+comp]
}

// byteAt reads back one byte component.
func (va *VertexArrays) byteAt(array string, slot, comp int) byte {
	a := va.arrays[array]
	return a.u8[slot*a.def.Comps+comp]
}
