package lane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 9, p.Windows)
	assert.Equal(t, 80, p.Margin)
	assert.Equal(t, 70, p.MinPixels)
	assert.Equal(t, 50.0, p.PriorMargin)
	assert.Equal(t, Zones{LeftStart: 150, SplitDivisor: 4, RightWidth: 500}, p.Zones)
	require.NoError(t, p.Validate(testWidth, testHeight))

	left, split, right := p.Zones.Bounds(testWidth)
	assert.Equal(t, 150, left)
	assert.Equal(t, 320, split)
	assert.Equal(t, 820, right)
}

func TestParamsWithCopies(t *testing.T) {
	base := DefaultParams()
	p := base.WithWindows(12).WithMargin(60).WithMinPixels(30).WithPriorMargin(40)

	assert.Equal(t, 12, p.Windows)
	assert.Equal(t, 60, p.Margin)
	assert.Equal(t, 30, p.MinPixels)
	assert.Equal(t, 40.0, p.PriorMargin)
	assert.Equal(t, 9, base.Windows, "receiver must be unchanged")

	z := Zones{LeftStart: 0, SplitDivisor: 2, RightWidth: 100}
	assert.Equal(t, z, base.WithZones(z).Zones)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		width  int
		height int
	}{
		{"zero windows", DefaultParams().WithWindows(0), testWidth, testHeight},
		{"zero-height bands", DefaultParams().WithWindows(9), testWidth, 8},
		{"zero margin", DefaultParams().WithMargin(0), testWidth, testHeight},
		{"negative min pixels", DefaultParams().WithMinPixels(-1), testWidth, testHeight},
		{"zero prior margin", DefaultParams().WithPriorMargin(0), testWidth, testHeight},
		{"zero split divisor", DefaultParams().WithZones(Zones{LeftStart: 150, RightWidth: 500}), testWidth, testHeight},
		{"inverted left zone", DefaultParams().WithZones(Zones{LeftStart: 400, SplitDivisor: 4, RightWidth: 500}), testWidth, testHeight},
		{"negative left start", DefaultParams().WithZones(Zones{LeftStart: -1, SplitDivisor: 4, RightWidth: 500}), testWidth, testHeight},
		{"empty right zone", DefaultParams().WithZones(Zones{LeftStart: 0, SplitDivisor: 1, RightWidth: 500}), testWidth, testHeight},
		{"zero right width", DefaultParams().WithZones(Zones{LeftStart: 150, SplitDivisor: 4}), testWidth, testHeight},
		{"empty frame", DefaultParams(), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate(tt.width, tt.height)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
