package twod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraBlocksAreConsecutive(t *testing.T) {
	cs := NewCameraStore(DefaultCameraBlock)

	a, err := cs.GetBlocks(2)
	require.NoError(t, err)
	b, err := cs.GetBlocks(2)
	require.NoError(t, err)
	c, err := cs.GetBlocks(1)
	require.NoError(t, err)

	assert.Equal(t, 0, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 4, c)
}

func TestCameraBlocksReleaseAndReuse(t *testing.T) {
	cs := NewCameraStore(DefaultCameraBlock)

	a, err := cs.GetBlocks(2)
	require.NoError(t, err)
	_, err = cs.GetBlocks(2)
	require.NoError(t, err)

	free := cs.FreeBlocks()
	cs.ReleaseBlocks(a, 2)
	assert.Equal(t, free+2, cs.FreeBlocks())

	// The run finder wants a free block just past the run, so the freed
	// pair at 0 sitting against an allocated block is passed over and the
	// fresh run at 4 wins.
	again, err := cs.GetBlocks(2)
	require.NoError(t, err)
	assert.Equal(t, 4, again)

	// Free the neighbor and the low run becomes usable again.
	cs.ReleaseBlocks(2, 2)
	low, err := cs.GetBlocks(2)
	require.NoError(t, err)
	assert.Equal(t, a, low)
}

func TestCameraBlocksExhaustion(t *testing.T) {
	cs := NewCameraStore(32) // 8 blocks
	for i := 0; i < 3; i++ {
		_, err := cs.GetBlocks(2)
		require.NoError(t, err)
	}
	// 2 blocks left but a run needs a free block beyond it
	_, err := cs.GetBlocks(2)
	assert.ErrorIs(t, err, ErrCameraBlocks)
}

func TestVertexCameraLayout(t *testing.T) {
	cs := NewCameraStore(DefaultCameraBlock)
	cam, err := NewVertexCamera(cs)
	require.NoError(t, err)

	assert.Equal(t, float32(1), cam.Ref())

	cam.SetPosition(10, 20)
	cam.SetOrigin(3, 4)
	cam.SetScaleX(2)
	cam.SetScaleY(3)
	cam.SetRotation(0.5)

	base := (int(cam.Ref()) - 1) * 4
	assert.Equal(t, []float32{10, 20, 3, 4, 2, 3, 0.5, 0}, cs.data[base:base+8])

	cam.Destroy()
	again, err := NewVertexCamera(cs)
	require.NoError(t, err)
	assert.Equal(t, cam.Ref(), again.Ref())
}

func TestFragmentCameraDefaultsToWhite(t *testing.T) {
	cs := NewCameraStore(DefaultCameraBlock)
	cam, err := NewFragmentCamera(cs)
	require.NoError(t, err)

	base := (int(cam.Ref()) - 1) * 4
	assert.Equal(t, []float32{1, 1, 1, 1}, cs.data[base:base+4])

	cam.SetColor(1, 0.5, 0, 1)
	assert.Equal(t, []float32{1, 0.5, 0, 1}, cs.data[base:base+4])
}

func TestCameraSourcesNameTheArray(t *testing.T) {
	cs := NewCameraStore(DefaultCameraBlock)
	assert.Contains(t, cs.VertexSource, "uniform vec4 cameraArray[100]")
	assert.Contains(t, cs.FragmentSource, "uniform vec4 cameraArray[100]")
}
