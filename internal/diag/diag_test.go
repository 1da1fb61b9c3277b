package diag

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"lane-finder/internal/lane"
	"lane-finder/internal/pipeline"
)

func detected(t *testing.T) lane.FrameResult {
	t.Helper()
	m := lane.NewMask(1280, 720)
	for y := 0; y < 720; y++ {
		for dx := -2; dx <= 2; dx++ {
			m.Set(300+dx, y, true)
			m.Set(700+dx+y/20, y, true)
		}
	}
	res, err := lane.Detect(m, lane.DefaultParams(), lane.DefaultCalibration())
	require.NoError(t, err)
	require.NotNil(t, res.Measurement)
	return res
}

func TestPlotFit(t *testing.T) {
	res := detected(t)
	p, err := PlotFit(res, 1280, 720)
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, "Frame 0")
	assert.Contains(t, p.Title.Text, "window")
	assert.IsType(t, plot.InvertedScale{}, p.Y.Scale)

	var buf bytes.Buffer
	require.NoError(t, WriteFit(&buf, res, 1280, 720))
	_, err = png.Decode(&buf)
	assert.NoError(t, err)
}

func TestSaveFit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.png")
	require.NoError(t, SaveFit(path, detected(t), 1280, 720))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPlotFitAbsentSides(t *testing.T) {
	p, err := PlotFit(lane.FrameResult{}, 1280, 720)
	require.NoError(t, err)
	assert.Contains(t, p.Title.Text, "absent")
}

func TestScatterStride(t *testing.T) {
	px := make(lane.PixelSet, 10000)
	pts := scatterXYs(px)
	assert.LessOrEqual(t, len(pts), maxScatter)
	assert.Len(t, scatterXYs(px[:10]), 10)
}

func TestCurveIncludesLastRow(t *testing.T) {
	pts := curveXYs(lane.Polynomial{B: 1}, 10)
	last := pts[len(pts)-1]
	assert.Equal(t, plotter.XY{X: 9, Y: 9}, last)
	assert.Empty(t, curveXYs(lane.Polynomial{}, 0))
}

func TestSeriesSplitsOnGaps(t *testing.T) {
	samples := []Sample{
		{Frame: 0, Measured: true, Offset: 0.1},
		{Frame: 1, Measured: true, Offset: 0.2},
		{Frame: 2},
		{Frame: 3, Measured: true, Offset: 0.3},
	}
	runs := series(samples, func(s Sample) float64 { return s.Offset })
	require.Len(t, runs, 2)
	assert.Equal(t, plotter.XYs{{X: 0, Y: 0.1}, {X: 1, Y: 0.2}}, runs[0])
	assert.Equal(t, plotter.XYs{{X: 3, Y: 0.3}}, runs[1])
}

func TestRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	rec, err := NewRecorder(dir)
	require.NoError(t, err)

	n, err := rec.GeneratePlots()
	require.NoError(t, err)
	assert.Zero(t, n)

	res := detected(t)
	for i := 0; i < 5; i++ {
		res.Index = i
		meas := *res.Measurement
		meas.LeftRadius = 500 + 100*float64(i)
		meas.RightRadius = 800 + 50*float64(i)
		res.Measurement = &meas
		if i == 2 {
			res.Measurement = nil
		}
		rec.Record(res)
	}

	samples := rec.Samples()
	require.Len(t, samples, 5)
	assert.False(t, samples[2].Measured)
	assert.Equal(t, 600.0, samples[1].LeftRadius)
	assert.Equal(t, lane.ModeWindow, samples[0].LeftMode)

	n, err = rec.GeneratePlots()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, name := range []string{"radius.png", "offset.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestPalette(t *testing.T) {
	colors := palette(3)
	require.Len(t, colors, 3)
	assert.NotEqual(t, colors[0], colors[1])
}

func TestReport(t *testing.T) {
	rep := NewReport("drive.mp4", "lanes.json")
	_, err := uuid.Parse(rep.RunID)
	require.NoError(t, err)

	first := detected(t)
	rep.Add(first)

	second := first
	second.Index = 1
	second.Left.Mode = lane.ModePrior
	second.Right.Mode = lane.ModePrior
	second.Measurement = nil
	rep.Add(second)

	third := first
	third.Index = 2
	rep.Add(third)

	rep.Finish(pipeline.Stats{Frames: 3, Processed: 3})
	assert.Equal(t, 2, rep.Measured())
	assert.Equal(t, 1, rep.Fallback)
	assert.False(t, rep.Finished.Before(rep.Started))

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, rep.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded struct {
		RunID  string `json:"run_id"`
		Frames []struct {
			Left struct {
				Fit  []float64 `json:"fit"`
				Mode string    `json:"mode"`
			} `json:"left"`
			Measurement *lane.Measurement `json:"measurement"`
		} `json:"frames"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rep.RunID, decoded.RunID)
	require.Len(t, decoded.Frames, 3)
	assert.Equal(t, "window", decoded.Frames[0].Left.Mode)
	assert.Len(t, decoded.Frames[0].Left.Fit, 3)
	assert.Nil(t, decoded.Frames[1].Measurement)
}
