// Package batch implements the buffer-region and draw-index machinery that
// keeps thousands of independently mutating shapes down to a handful of GL
// calls per frame: fixed-capacity vertex arrays with per-array dirty ranges
// and partial re-upload, and per-layer index tables with deferred compaction.
package batch

import "fmt"

// Kind selects the scalar type backing an attribute array.
type Kind int

const (
	// Float32 arrays upload as gl.FLOAT.
	Float32 Kind = iota
	// Uint8 arrays upload as gl.UNSIGNED_BYTE, usually normalized colors.
	Uint8
)

// ArrayDef declares one attribute array of a region. The zero value of
// Static means dynamic: dirty writes re-upload only the touched sub-range.
// Static arrays re-upload whole when dirty.
type ArrayDef struct {
	Name       string
	Comps      int // scalar components per slot; 0 means vec4
	Kind       Kind
	Normalized bool
	Static     bool
}

// AttribDef declares a named setter over a sub-span of an array's components.
// Offset of -1 means the offset is supplied per call. Batched attribs take
// one value per slot instead of one value for all slots.
type AttribDef struct {
	Name    string
	Array   string
	Size    int
	Offset  int
	Batched bool
}

// ArraySpec is the declarative description of a class of vertex arrays: the
// backing arrays, the attribute setters over them, and the render-slot
// multiplier (e.g. 1.5 for quads: 4 data slots, 6 draw indices). The spec
// freezes on first MakeArrays; mutating a frozen spec is a programming error.
type ArraySpec struct {
	Name           string
	SlotMultiplier float64

	arrays  []ArrayDef
	attribs map[string]AttribDef
	frozen  bool
}

// NewSpec creates an empty spec. slotMultiplier <= 0 defaults to 1.
func NewSpec(name string, slotMultiplier float64) *ArraySpec {
	if slotMultiplier <= 0 {
		slotMultiplier = 1
	}
	return &ArraySpec{
		Name:           name,
		SlotMultiplier: slotMultiplier,
		attribs:        map[string]AttribDef{},
	}
}

// AddArray declares a backing array.
func (s *ArraySpec) AddArray(def ArrayDef) {
	if s.frozen {
		panic("batch: ArraySpec " + s.Name + " has been frozen")
	}
	if def.Comps == 0 {
		def.Comps = 4
	}
	s.arrays = append(s.arrays, def)
}

// AddAttrib declares a setter named name over size components of the given
// array starting at offset (-1 for per-call offsets).
func (s *ArraySpec) AddAttrib(array, name string, size, offset int, batched bool) {
	if s.frozen {
		panic("batch: ArraySpec " + s.Name + " has been frozen")
	}
	found := false
	for _, a := range s.arrays {
		if a.Name == array {
			found = true
			break
		}
	}
	if !found {
		panic(fmt.Sprintf("batch: attrib %s references unknown array %s", name, array))
	}
	s.attribs[name] = AttribDef{Name: name, Array: array, Size: size, Offset: offset, Batched: batched}
}

// MakeArrays freezes the spec and builds a region with the given slot count.
func (s *ArraySpec) MakeArrays(slots int) *VertexArrays {
	s.frozen = true
	return newVertexArrays(s, slots)
}
