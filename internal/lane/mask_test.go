package lane

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lane-finder/pkg/geometry"
)

func TestMaskSetAndAt(t *testing.T) {
	m := NewMask(4, 3)
	require.Len(t, m.Pix, 12)

	m.Set(1, 2, true)
	m.Set(3, 0, true)
	m.Set(-1, 0, true) // ignored
	m.Set(4, 0, true)  // ignored

	assert.True(t, m.At(1, 2))
	assert.True(t, m.At(3, 0))
	assert.False(t, m.At(0, 0))
	assert.False(t, m.At(10, 10))
	assert.Equal(t, 2, m.Count())

	m.Set(1, 2, false)
	assert.False(t, m.At(1, 2))
	assert.Equal(t, 1, m.Count())

	for _, v := range m.Pix {
		assert.LessOrEqual(t, v, uint8(1))
	}
}

func TestMaskNonZeroRowMajor(t *testing.T) {
	m := NewMask(5, 5)
	m.Set(4, 1, true)
	m.Set(0, 3, true)
	m.Set(2, 1, true)

	assert.Equal(t, []geometry.PointInt{{X: 2, Y: 1}, {X: 4, Y: 1}, {X: 0, Y: 3}}, m.NonZero())
}

func TestMaskFromImage(t *testing.T) {
	t.Run("gray", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 3, 2))
		img.SetGray(2, 1, color.Gray{Y: 255})
		img.SetGray(0, 0, color.Gray{Y: 1})

		m := MaskFromImage(img)
		assert.Equal(t, 3, m.Width)
		assert.Equal(t, 2, m.Height)
		assert.True(t, m.At(2, 1))
		assert.True(t, m.At(0, 0))
		assert.Equal(t, 2, m.Count())
	})

	t.Run("gray sub-image", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 10, 10))
		img.SetGray(5, 6, color.Gray{Y: 200})
		sub := img.SubImage(image.Rect(4, 4, 8, 8)).(*image.Gray)

		m := MaskFromImage(sub)
		assert.Equal(t, 4, m.Width)
		assert.True(t, m.At(1, 2))
		assert.Equal(t, 1, m.Count())
	})

	t.Run("rgba", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		img.Set(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

		m := MaskFromImage(img)
		assert.True(t, m.At(1, 0))
		assert.Equal(t, 1, m.Count())
	})
}

func TestMaskToGray(t *testing.T) {
	m := NewMask(3, 3)
	m.Set(1, 1, true)
	g := m.ToGray()
	assert.Equal(t, uint8(255), g.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), g.GrayAt(0, 0).Y)

	back := MaskFromImage(g)
	assert.Equal(t, m.Pix, back.Pix)
}
