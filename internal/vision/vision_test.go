package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"lane-finder/internal/config"
	"lane-finder/internal/lane"
	"lane-finder/internal/threshold"
)

func TestMaskMatRoundTrip(t *testing.T) {
	m := lane.NewMask(40, 30)
	m.Set(3, 4, true)
	m.Set(39, 29, true)

	mat, err := MatFromMask(m)
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, uint8(255), mat.GetUCharAt(4, 3))

	back, err := MaskFromMat(mat)
	require.NoError(t, err)
	assert.Equal(t, m.Pix, back.Pix)
}

func TestMaskFromMatRejectsColor(t *testing.T) {
	mat := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer mat.Close()
	_, err := MaskFromMat(mat)
	assert.Error(t, err)

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = MaskFromMat(empty)
	assert.Error(t, err)
}

func TestWarperMapsRoadQuad(t *testing.T) {
	cfg := config.Default()
	w, err := NewWarper(cfg.Perspective, cfg.Frame.Width, cfg.Frame.Height)
	require.NoError(t, err)
	defer w.Close()

	// A solid patch around the bottom-left source corner lands near the
	// bottom-left destination corner.
	m := lane.NewMask(cfg.Frame.Width, cfg.Frame.Height)
	for y := 680; y < 700; y++ {
		for x := 270; x < 300; x++ {
			m.Set(x, y, true)
		}
	}
	mat, err := MatFromMask(m)
	require.NoError(t, err)
	defer mat.Close()

	warped, err := w.WarpMask(mat)
	require.NoError(t, err)
	assert.True(t, warped.At(275, 695))
	assert.False(t, warped.At(1000, 100))
}

func TestBinarizeFindsColoredLine(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 120, 200, gocv.MatTypeCV8UC3)
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(90, 0, 100, 120), color.RGBA{R: 255, G: 220, B: 0, A: 255}, -1)

	bin, err := Binarize(frame, threshold.DefaultParams())
	require.NoError(t, err)
	defer bin.Close()

	m, err := MaskFromMat(bin)
	require.NoError(t, err)
	assert.True(t, m.At(95, 60))
	assert.False(t, m.At(20, 60))
	assert.False(t, m.At(180, 60))
}

func TestLanePolygon(t *testing.T) {
	poly := LanePolygon(lane.Polynomial{C: 100}, lane.Polynomial{C: 300}, 4)
	assert.Equal(t, []image.Point{
		{X: 100, Y: 0}, {X: 100, Y: 1}, {X: 100, Y: 2}, {X: 100, Y: 3},
		{X: 300, Y: 3}, {X: 300, Y: 2}, {X: 300, Y: 1}, {X: 300, Y: 0},
	}, poly)
}

func TestMeasurementText(t *testing.T) {
	lines := MeasurementText(lane.Measurement{
		LeftRadius:    812.4,
		RightRadius:   100000,
		RightStraight: true,
		Offset:        -0.234,
	})
	assert.Equal(t, []string{
		"Left radius: 812 m",
		"Right radius: straight",
		"Vehicle is 0.23 m right of center",
	}, lines)
}

func TestDrawLaneRequiresBothFits(t *testing.T) {
	cfg := config.Default()
	w, err := NewWarper(cfg.Perspective, cfg.Frame.Width, cfg.Frame.Height)
	require.NoError(t, err)
	defer w.Close()

	frame := gocv.NewMatWithSize(cfg.Frame.Height, cfg.Frame.Width, gocv.MatTypeCV8UC3)
	defer frame.Close()

	_, err = DrawLane(frame, lane.FrameResult{}, w)
	assert.ErrorIs(t, err, lane.ErrEmptySignal)
}

func TestDebugImage(t *testing.T) {
	m := lane.NewMask(10, 10)
	m.Set(1, 1, true)
	m.Set(8, 8, true)
	res := lane.FrameResult{LeftPixels: lane.PixelSet{{X: 1, Y: 1}}}

	img := DebugImage(m, res)
	assert.Equal(t, uint8(255), img.RGBAAt(1, 1).R)
	assert.Equal(t, uint8(0), img.RGBAAt(1, 1).G)
	assert.Equal(t, uint8(255), img.RGBAAt(8, 8).G)
	assert.Equal(t, uint8(0), img.RGBAAt(5, 5).R)
}
