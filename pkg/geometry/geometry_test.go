package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	roadSrc = Quad{{800, 510}, {1150, 700}, {270, 700}, {510, 510}}
	roadDst = Quad{{650, 470}, {640, 700}, {270, 700}, {270, 510}}
)

func TestPerspectiveTransformMapsCorners(t *testing.T) {
	h, err := PerspectiveTransform(roadSrc, roadDst)
	require.NoError(t, err)

	for i := range roadSrc {
		got := h.Apply(roadSrc[i])
		assert.InDelta(t, roadDst[i].X, got.X, 1e-4, "corner %d", i)
		assert.InDelta(t, roadDst[i].Y, got.Y, 1e-4, "corner %d", i)
	}
}

func TestHomographyInverse(t *testing.T) {
	h, err := PerspectiveTransform(roadSrc, roadDst)
	require.NoError(t, err)
	inv, err := h.Inverse()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, inv[8], 1e-12)

	for _, p := range []Point2D{{640, 600}, {300, 690}, {900, 520}} {
		back := inv.Apply(h.Apply(p))
		assert.InDelta(t, p.X, back.X, 1e-4)
		assert.InDelta(t, p.Y, back.Y, 1e-4)
	}

	direct, err := PerspectiveTransform(roadDst, roadSrc)
	require.NoError(t, err)
	for i := range direct {
		assert.InDelta(t, direct[i], inv[i], 1e-4*(1+abs(direct[i])))
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestPerspectiveTransformDegenerate(t *testing.T) {
	line := Quad{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	_, err := PerspectiveTransform(line, roadDst)
	assert.Error(t, err)
}

func TestIdentity(t *testing.T) {
	p := NewPoint2D(12.5, -3)
	assert.Equal(t, p, Identity().Apply(p))
	assert.Equal(t, [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, Identity().Rows())
}

func TestQuadArea(t *testing.T) {
	sq := Quad{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.Equal(t, 100.0, sq.Area())
	assert.Greater(t, roadSrc.Area(), 0.0)
}

func TestRectInt(t *testing.T) {
	r := RectInt{X: 10, Y: 20, Width: 5, Height: 3}
	assert.Equal(t, image.Rect(10, 20, 15, 23), r.ToImage())
}
