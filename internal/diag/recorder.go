package diag

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"lane-finder/internal/lane"
)

// Sample is one frame's measurement as recorded by a Recorder.
type Sample struct {
	Frame       int
	Measured    bool // Both sides present
	LeftRadius  float64
	RightRadius float64
	Offset      float64
	LeftMode    lane.SearchMode
	RightMode   lane.SearchMode
}

// Recorder accumulates per-frame measurements over a video run and writes
// time-series plots afterwards. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	outputDir string
	samples   []Sample
}

// NewRecorder creates a recorder that writes its plots under outputDir.
func NewRecorder(outputDir string) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &Recorder{outputDir: outputDir}, nil
}

// Record stores the measurement of one frame.
func (r *Recorder) Record(res lane.FrameResult) {
	s := Sample{
		Frame:     res.Index,
		LeftMode:  res.Left.Mode,
		RightMode: res.Right.Mode,
	}
	if m := res.Measurement; m != nil {
		s.Measured = true
		s.LeftRadius = m.LeftRadius
		s.RightRadius = m.RightRadius
		s.Offset = m.Offset
	}

	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

// Samples returns a copy of everything recorded so far.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

// GeneratePlots writes radius.png and offset.png. Frames without a measurement
// are gaps in the series. Returns the number of files written.
func (r *Recorder) GeneratePlots() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.samples) == 0 {
		return 0, nil
	}

	colors := palette(2)

	pr := plot.New()
	pr.Title.Text = "Radius of curvature"
	pr.X.Label.Text = "Frame"
	pr.Y.Label.Text = "Radius (m)"
	pr.Y.Scale = plot.LogScale{}
	pr.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	left, right := radiusSeries(r.samples)
	for i, s := range []struct {
		label string
		runs  []plotter.XYs
	}{{"left", left}, {"right", right}} {
		for j, run := range s.runs {
			line, err := plotter.NewLine(run)
			if err != nil {
				return 0, err
			}
			line.Color = colors[i]
			line.Width = vg.Points(1)
			pr.Add(line)
			if j == 0 {
				pr.Legend.Add(s.label, line)
			}
		}
	}
	pr.Legend.Top = true

	po := plot.New()
	po.Title.Text = "Lateral offset (positive: vehicle left of lane center)"
	po.X.Label.Text = "Frame"
	po.Y.Label.Text = "Offset (m)"
	po.Add(plotter.NewGrid())
	for _, run := range series(r.samples, func(s Sample) float64 { return s.Offset }) {
		line, err := plotter.NewLine(run)
		if err != nil {
			return 0, err
		}
		line.Color = colors[0]
		line.Width = vg.Points(1)
		po.Add(line)
	}

	if err := pr.Save(14*vg.Inch, 6*vg.Inch, filepath.Join(r.outputDir, "radius.png")); err != nil {
		return 0, fmt.Errorf("save radius plot: %w", err)
	}
	if err := po.Save(14*vg.Inch, 6*vg.Inch, filepath.Join(r.outputDir, "offset.png")); err != nil {
		return 1, fmt.Errorf("save offset plot: %w", err)
	}
	return 2, nil
}

func radiusSeries(samples []Sample) (left, right []plotter.XYs) {
	left = series(samples, func(s Sample) float64 { return s.LeftRadius })
	right = series(samples, func(s Sample) float64 { return s.RightRadius })
	return left, right
}

// series splits the measured samples into contiguous runs of frames so
// unmeasured frames show as gaps.
func series(samples []Sample, value func(Sample) float64) []plotter.XYs {
	var runs []plotter.XYs
	var cur plotter.XYs
	lastFrame := -2
	for _, s := range samples {
		if !s.Measured {
			continue
		}
		if s.Frame != lastFrame+1 && len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
		cur = append(cur, plotter.XY{X: float64(s.Frame), Y: value(s)})
		lastFrame = s.Frame
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// palette returns n evenly spaced hues.
func palette(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		c := colorful.Hsl(360*float64(i)/float64(n), 0.7, 0.5)
		r, g, b := c.RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}
