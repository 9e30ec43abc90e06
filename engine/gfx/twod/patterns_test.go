package twod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuadPattern(t *testing.T) {
	assert.Equal(t, []int{4, 5, 6, 4, 6, 7}, quadPattern([]int{4, 5, 6, 7}))
}

func TestLinePatternOpen(t *testing.T) {
	got := linePattern([]int{0, 1, 2, 3}, false)
	assert.Equal(t, []int{0, 1, 1, 2, 2, 3}, got)
	assert.Len(t, got, lineRenderLength(4, false))
}

func TestLinePatternClosed(t *testing.T) {
	got := linePattern([]int{0, 1, 2, 3}, true)
	assert.Equal(t, []int{0, 1, 1, 2, 2, 3, 3, 0}, got)
	assert.Len(t, got, lineRenderLength(4, true))
}

func TestLinePatternSegment(t *testing.T) {
	assert.Equal(t, []int{7, 8}, linePattern([]int{7, 8}, false))
	assert.Equal(t, 2, lineRenderLength(2, true))
}

func TestSpecsBuildWithoutPanic(t *testing.T) {
	assert.NotNil(t, newSpriteSpec())
	assert.NotNil(t, primitiveSpec("lines"))
	assert.NotNil(t, ellipseSpec())
}
