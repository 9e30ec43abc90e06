package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadSpec() *ArraySpec {
	s := NewSpec("quads", 1.5)
	s.AddArray(ArrayDef{Name: "pos"})
	s.AddArray(ArrayDef{Name: "color", Kind: Uint8, Normalized: true})
	s.AddAttrib("pos", "position", 2, 0, true)
	s.AddAttrib("pos", "rotation", 1, 2, false)
	s.AddAttrib("color", "color", 4, 0, false)
	return s
}

func TestDataSlotAllocationOrder(t *testing.T) {
	va := quadSpec().MakeArrays(16)

	require.True(t, va.CanAllocDataSlots(4))
	slots, err := va.GetDataSlots(4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, slots)

	va.ReleaseDataSlots(slots)
	// The allocator scans its free list in insertion order, so the still
	// untouched span after the release wins over the freed one.
	again, err := va.GetDataSlots(4)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6, 7}, again)
}

func TestSetFloatWritesEverySlot(t *testing.T) {
	va := quadSpec().MakeArrays(16)
	slots, err := va.GetDataSlots(4)
	require.NoError(t, err)

	va.SetFloat("rotation", slots, 1.5)
	for _, s := range slots {
		assert.Equal(t, float32(1.5), va.floatAt("pos", s, 2))
	}
}

func TestSetFloatBatchWritesPerSlot(t *testing.T) {
	va := quadSpec().MakeArrays(16)
	slots, err := va.GetDataSlots(2)
	require.NoError(t, err)

	va.SetFloatBatch("position", slots, []float32{1, 2, 3, 4})
	assert.Equal(t, float32(1), va.floatAt("pos", slots[0], 0))
	assert.Equal(t, float32(2), va.floatAt("pos", slots[0], 1))
	assert.Equal(t, float32(3), va.floatAt("pos", slots[1], 0))
	assert.Equal(t, float32(4), va.floatAt("pos", slots[1], 1))
}

func TestSetBytesWritesColorComponents(t *testing.T) {
	va := quadSpec().MakeArrays(16)
	slots, err := va.GetDataSlots(3)
	require.NoError(t, err)

	va.SetBytes("color", slots, 255, 128, 0, 255)
	for _, s := range slots {
		assert.Equal(t, byte(255), va.byteAt("color", s, 0))
		assert.Equal(t, byte(128), va.byteAt("color", s, 1))
		assert.Equal(t, byte(0), va.byteAt("color", s, 2))
	}
}

func TestDirtyRangeCoversTouchedElements(t *testing.T) {
	va := quadSpec().MakeArrays(16)
	slots, err := va.GetDataSlots(8)
	require.NoError(t, err)

	pos := va.arrays["pos"]
	require.False(t, pos.dirty)

	va.SetFloat("rotation", slots[2:4], 0.5)
	require.True(t, pos.dirty)
	assert.Equal(t, 2*4+2, pos.dirtyMin)
	assert.Equal(t, 3*4+2+1, pos.dirtyMax)

	// further writes widen, never shrink
	va.SetFloatBatch("position", slots[6:8], []float32{1, 1, 2, 2})
	assert.Equal(t, 2*4+2, pos.dirtyMin)
	assert.Equal(t, 7*4+0+2, pos.dirtyMax)
}

func TestVariableOffsetSetter(t *testing.T) {
	s := NewSpec("fans", 1)
	s.AddArray(ArrayDef{Name: "pos", Comps: 2})
	s.AddAttrib("pos", "component", 1, -1, false)
	va := s.MakeArrays(8)
	slots, err := va.GetDataSlots(2)
	require.NoError(t, err)

	va.SetFloatAt("component", slots, 1, 9)
	assert.Equal(t, float32(9), va.floatAt("pos", slots[0], 1))
	assert.Equal(t, float32(9), va.floatAt("pos", slots[1], 1))
	assert.Equal(t, float32(0), va.floatAt("pos", slots[0], 0))
}

func TestSetterPanicsOnSizeMismatch(t *testing.T) {
	va := quadSpec().MakeArrays(8)
	slots, err := va.GetDataSlots(1)
	require.NoError(t, err)

	assert.Panics(t, func() { va.SetFloat("rotation", slots, 1, 2) })
	assert.Panics(t, func() { va.SetFloat("unknown", slots, 1) })
	assert.Panics(t, func() { va.SetFloatAt("rotation", slots, 0, 1) })
}

func TestFrozenSpecRejectsChanges(t *testing.T) {
	s := quadSpec()
	s.MakeArrays(8)
	assert.Panics(t, func() { s.AddArray(ArrayDef{Name: "late"}) })
	assert.Panics(t, func() { s.AddAttrib("pos", "late", 1, 0, false) })
}
