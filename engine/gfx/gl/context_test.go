package glbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Two attribute bindings that differ only in normalization must not be
// treated as equal by the redundant-call cache, or a normalized byte array
// sharing a location with an unnormalized one would keep the stale pointer.
func TestArrayBindingKeyIncludesNormalized(t *testing.T) {
	a := arrayBinding{buffer: 1, comps: 4, xtype: 0x1401, normalized: true}
	b := arrayBinding{buffer: 1, comps: 4, xtype: 0x1401, normalized: false}
	assert.NotEqual(t, a, b)

	c := NewContext(nil)
	c.boundArrays[3] = a
	assert.NotEqual(t, c.boundArrays[3], b)
}

func TestAddLayerKeepsSortedUniqueOrder(t *testing.T) {
	c := NewContext(nil)
	for _, l := range []int{5, -1, 5, 0, 100, -1} {
		c.AddLayer(l)
	}
	assert.Equal(t, []int{-1, 0, 5, 100}, c.layers)
}
