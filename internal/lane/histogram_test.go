package lane

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnHistogramBottomHalfOnly(t *testing.T) {
	m := NewMask(10, 10)
	for y := 0; y < 10; y++ {
		m.Set(3, y, true)
	}
	m.Set(7, 2, true) // top half
	m.Set(7, 5, true) // first row of bottom half

	hist := ColumnHistogram(m)
	assert.Len(t, hist, 10)
	assert.Equal(t, 5, hist[3])
	assert.Equal(t, 1, hist[7])
	assert.Equal(t, 0, hist[0])
}

func TestLocateBases(t *testing.T) {
	zones := DefaultParams().Zones

	t.Run("empty mask returns zone starts", func(t *testing.T) {
		m := NewMask(testWidth, testHeight)
		bases := LocateBases(m, zones)
		assert.Equal(t, Bases{Left: 150, Right: 320}, bases)
	})

	t.Run("peaks in each zone", func(t *testing.T) {
		m := twoLaneMask()
		bases := LocateBases(m, zones)
		// Both curves run between x≈C-5 and x≈C+16 over the bottom half
		assert.GreaterOrEqual(t, bases.Left, 200)
		assert.LessOrEqual(t, bases.Left, 230)
		assert.GreaterOrEqual(t, bases.Right, 750)
		assert.LessOrEqual(t, bases.Right, 780)
	})

	t.Run("top half is ignored", func(t *testing.T) {
		m := NewMask(testWidth, testHeight)
		for y := 0; y < 360; y++ {
			m.Set(250, y, true)
		}
		for y := 600; y < 620; y++ {
			m.Set(200, y, true)
		}
		assert.Equal(t, 200, LocateBases(m, zones).Left)
	})

	t.Run("ties resolve to leftmost column", func(t *testing.T) {
		m := NewMask(testWidth, testHeight)
		for y := 400; y < 410; y++ {
			m.Set(500, y, true)
			m.Set(600, y, true)
		}
		assert.Equal(t, 500, LocateBases(m, zones).Right)
	})

	t.Run("peaks outside zones are ignored", func(t *testing.T) {
		m := NewMask(testWidth, testHeight)
		for y := 360; y < 720; y++ {
			m.Set(100, y, true)  // left of the left zone
			m.Set(1000, y, true) // right of the right zone
		}
		assert.Equal(t, Bases{Left: 150, Right: 320}, LocateBases(m, zones))
	})

	t.Run("right zone clipped to width", func(t *testing.T) {
		m := NewMask(400, 100)
		m.Set(399, 99, true)
		assert.Equal(t, 399, LocateBases(m, Zones{LeftStart: 10, SplitDivisor: 4, RightWidth: 500}).Right)
	})
}
