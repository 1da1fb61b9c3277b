package lane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lane-finder/pkg/geometry"
)

func TestBandsTileHeight(t *testing.T) {
	for _, height := range []int{720, 725, 728, 9, 10, 100, 17} {
		bands := Bands(height, 9)
		require.Len(t, bands, 9)

		// Bottom band first, each band directly above the previous one
		assert.Equal(t, height, bands[0].High, "height %d", height)
		for i := 1; i < len(bands); i++ {
			assert.Equal(t, bands[i-1].Low, bands[i].High, "height %d band %d", height, i)
		}
		assert.Equal(t, 0, bands[len(bands)-1].Low, "height %d", height)

		covered := 0
		for _, b := range bands {
			assert.Greater(t, b.High, b.Low)
			covered += b.High - b.Low
		}
		assert.Equal(t, height, covered)
	}
}

func TestBandsTopAbsorbsRemainder(t *testing.T) {
	bands := Bands(725, 9)
	for _, b := range bands[:8] {
		assert.Equal(t, 80, b.High-b.Low)
	}
	assert.Equal(t, Band{Low: 0, High: 85}, bands[8])

	assert.Nil(t, Bands(720, 0))
}

func TestSearchWindowsEmptyMask(t *testing.T) {
	m := NewMask(testWidth, testHeight)
	p := DefaultParams()

	res := SearchWindows(m, LocateBases(m, p.Zones), p)
	assert.Empty(t, res.Left)
	assert.Empty(t, res.Right)
	assert.Len(t, res.Windows, 18)
	for _, w := range res.Windows {
		assert.Zero(t, w.Count)
		assert.False(t, w.Recentered)
	}

	assert.False(t, FitPixels(res.Left).Valid())
	assert.False(t, FitPixels(res.Right).Valid())
}

func TestSearchWindowsCollectsBothLanes(t *testing.T) {
	m := twoLaneMask()
	m.Set(1200, 10, true) // noise far from both lanes
	p := DefaultParams()

	res := SearchWindows(m, LocateBases(m, p.Zones), p)
	assert.Len(t, res.Left, 720*5)
	assert.Len(t, res.Right, 720*5)
	assert.NotContains(t, res.Left, geometry.PointInt{X: 1200, Y: 10})
	assert.NotContains(t, res.Right, geometry.PointInt{X: 1200, Y: 10})

	for _, px := range res.Left {
		assert.Less(t, px.X, 640)
	}
	for _, px := range res.Right {
		assert.Greater(t, px.X, 640)
	}
}

func TestSearchWindowsFollowsSlantedLane(t *testing.T) {
	m := NewMask(testWidth, testHeight)
	for y := 0; y < testHeight; y++ {
		m.Set(300+(719-y)/4, y, true)
		m.Set(700, y, true)
	}
	p := DefaultParams()

	bases := LocateBases(m, p.Zones)
	require.Equal(t, Bases{Left: 300, Right: 700}, bases)

	res := SearchWindows(m, bases, p)
	assert.Len(t, res.Left, 720, "every row of the slanted lane should be collected")
	assert.Len(t, res.Right, 720)

	// Each band holds 80 rows > 70, so every left window recenters
	for _, w := range res.Windows {
		if w.Side == SideLeft {
			assert.True(t, w.Recentered, "band %+v", w.Band)
		}
	}

	poly, ok := FitPixels(res.Left).Poly()
	require.True(t, ok)
	assert.InDelta(t, -0.25, poly.B, 0.01)
	assert.InDelta(t, 0, poly.A, 1e-5)
}

func TestSearchWindowsBoxBoundaries(t *testing.T) {
	m := NewMask(testWidth, testHeight)
	for y := 640; y < 720; y++ {
		m.Set(300, y, true)
	}
	for y := 0; y < testHeight; y++ {
		m.Set(700, y, true)
	}
	m.Set(220, 700, true) // center - margin: inside
	m.Set(380, 700, true) // center + margin: outside
	p := DefaultParams()

	res := SearchWindows(m, LocateBases(m, p.Zones), p)
	assert.Contains(t, res.Left, geometry.PointInt{X: 220, Y: 700})
	assert.NotContains(t, res.Left, geometry.PointInt{X: 380, Y: 700})
	assert.NotContains(t, res.Right, geometry.PointInt{X: 380, Y: 700})
	assert.Len(t, res.Left, 81)

	first := res.Windows[0]
	assert.Equal(t, SideLeft, first.Side)
	assert.Equal(t, Band{Low: 640, High: 720}, first.Band)
	assert.Equal(t, geometry.RectInt{X: 220, Y: 640, Width: 160, Height: 80}, first.Rect)
	assert.Equal(t, 81, first.Count)
	assert.True(t, first.Recentered)
	assert.Equal(t, SideRight, res.Windows[1].Side)
}

func TestSearchWindowsNoRecenterBelowThreshold(t *testing.T) {
	m := NewMask(testWidth, testHeight)
	// 70 pixels in the bottom band is not more than MinPixels
	for y := 650; y < 720; y++ {
		m.Set(250, y, true)
	}
	p := DefaultParams()

	res := SearchWindows(m, Bases{Left: 200, Right: 700}, p)
	assert.Len(t, res.Left, 70)
	assert.False(t, res.Windows[0].Recentered)
	// The next left window keeps the base center
	assert.Equal(t, 200-80, res.Windows[2].Rect.X)
}
