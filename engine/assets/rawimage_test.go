package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// px builds a solid RGBA pixel.
func px(v byte) []byte { return []byte{v, v, v, 255} }

func TestNewRawImageValidatesLength(t *testing.T) {
	_, err := NewRawImage(2, 2, make([]byte, 15))
	assert.Error(t, err)

	im, err := NewRawImage(2, 2, make([]byte, 16))
	require.NoError(t, err)
	w, h := im.Size()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
}

func TestRawWrappedLayout(t *testing.T) {
	// 2x2 image: row 1 2, row 3 4
	pix := append(append(append(append([]byte{}, px(1)...), px(2)...), px(3)...), px(4)...)
	im, err := NewRawImage(2, 2, pix)
	require.NoError(t, err)

	w, h := im.WrappedSize()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)

	wrapped := im.RawWrapped()
	require.Len(t, wrapped, 4*4*4)

	row := func(vals ...byte) []byte {
		var out []byte
		for _, v := range vals {
			out = append(out, px(v)...)
		}
		return out
	}
	want := append([]byte{}, row(4, 3, 4, 3)...) // bottom row wrapped to top
	want = append(want, row(2, 1, 2, 1)...)      // first image row
	want = append(want, row(4, 3, 4, 3)...)      // second image row
	want = append(want, row(2, 1, 2, 1)...)      // top row wrapped to bottom
	assert.Equal(t, want, wrapped)
}
