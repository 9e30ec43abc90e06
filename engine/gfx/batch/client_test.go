package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, regionSize int) (*Client, *VertexArrays) {
	t.Helper()
	c := NewClient(nil, quadSpec(), 0)
	c.SetRegionSize(regionSize)
	va := c.GetVertexArrays(1)
	return c, va
}

func TestRenderSlotsLeaseAndUpload(t *testing.T) {
	c, va := testClient(t, 8)

	slots, list, err := c.GetRenderSlots(6, 0, va)
	require.NoError(t, err)
	assert.Equal(t, 0, list)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, slots)

	err = c.UploadSlotData([]int{0, 1, 2, 2, 1, 3}, slots, 0, list, va)
	require.NoError(t, err)

	il, err := c.findList(0, list, va)
	require.NoError(t, err)
	assert.Equal(t, 0, il.min)
	assert.Equal(t, 6, il.length)
	assert.Equal(t, uint32(3), il.indices[5])
}

func TestUploadWidensDrawWindow(t *testing.T) {
	c, va := testClient(t, 8)

	first, list, err := c.GetRenderSlots(3, 0, va)
	require.NoError(t, err)
	require.NoError(t, c.UploadSlotData([]int{0, 1, 2}, first, 0, list, va))

	second, list2, err := c.GetRenderSlots(3, 0, va)
	require.NoError(t, err)
	require.Equal(t, list, list2)
	require.NoError(t, c.UploadSlotData([]int{4, 5, 6}, second, 0, list, va))

	il, err := c.findList(0, list, va)
	require.NoError(t, err)
	assert.Equal(t, 0, il.min)
	assert.Equal(t, 6, il.length)
}

func TestReleaseDefersZeroFillUntilClean(t *testing.T) {
	c, va := testClient(t, 8)

	slots, list, err := c.GetRenderSlots(6, 0, va)
	require.NoError(t, err)
	require.NoError(t, c.UploadSlotData([]int{1, 2, 3, 4, 5, 6}, slots, 0, list, va))

	il, err := c.findList(0, list, va)
	require.NoError(t, err)

	require.NoError(t, c.ReleaseRenderSlots(slots[:3], 0, list, va))
	// released positions still hold stale indices until the next clean
	assert.Equal(t, uint32(1), il.indices[0])
	assert.True(t, il.dirty)

	il.clean()
	assert.Equal(t, uint32(0), il.indices[0])
	assert.Equal(t, uint32(0), il.indices[2])
	assert.Equal(t, 3, il.min)
	assert.Equal(t, 3, il.length)
}

func TestCleanEmptiesWindowWhenAllReleased(t *testing.T) {
	c, va := testClient(t, 8)

	slots, list, err := c.GetRenderSlots(6, 0, va)
	require.NoError(t, err)
	require.NoError(t, c.UploadSlotData([]int{1, 2, 3, 4, 5, 6}, slots, 0, list, va))
	require.NoError(t, c.ReleaseRenderSlots(slots, 0, list, va))

	il, err := c.findList(0, list, va)
	require.NoError(t, err)
	il.clean()
	assert.Equal(t, 0, il.length)
	for _, v := range il.indices {
		assert.Equal(t, uint32(0), v)
	}
}

func TestSecondIndexListGrowsWhenFirstIsFull(t *testing.T) {
	c, va := testClient(t, 8)
	size := c.listSize(va) // 12 for the 1.5 quad multiplier

	_, list, err := c.GetRenderSlots(size-1, 0, va)
	require.NoError(t, err)
	assert.Equal(t, 0, list)

	_, list, err = c.GetRenderSlots(6, 0, va)
	require.NoError(t, err)
	assert.Equal(t, 1, list)
}

func TestLayersKeepIndependentIndexLists(t *testing.T) {
	c, va := testClient(t, 8)

	a, listA, err := c.GetRenderSlots(6, 0, va)
	require.NoError(t, err)
	b, listB, err := c.GetRenderSlots(6, 5, va)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, listA, listB)

	require.NoError(t, c.UploadSlotData([]int{1, 1, 1, 1, 1, 1}, a, 0, listA, va))
	ilB, err := c.findList(5, listB, va)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), ilB.indices[0])
}

func TestInvalidUsageErrors(t *testing.T) {
	c, va := testClient(t, 8)
	slots, list, err := c.GetRenderSlots(3, 0, va)
	require.NoError(t, err)

	err = c.UploadSlotData([]int{0, 1, 2}, slots, 0, list+1, va)
	assert.ErrorIs(t, err, ErrInvalidUsage)

	err = c.UploadSlotData([]int{0, 1}, slots, 0, list, va)
	assert.ErrorIs(t, err, ErrInvalidUsage)

	err = c.ReleaseRenderSlots(slots, 9, list, va)
	assert.ErrorIs(t, err, ErrInvalidUsage)

	other := quadSpec().MakeArrays(8)
	err = c.UploadSlotData([]int{0, 1, 2}, slots, 0, list, other)
	assert.ErrorIs(t, err, ErrInvalidUsage)
}

func TestGetVertexArraysGrowsNewRegion(t *testing.T) {
	c, va := testClient(t, 8)
	_, err := va.GetDataSlots(7)
	require.NoError(t, err)

	va2 := c.GetVertexArrays(4)
	assert.NotSame(t, va, va2)
	assert.True(t, va2.CanAllocDataSlots(4))
}
