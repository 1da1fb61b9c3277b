// Package diag renders diagnostic plots of lane fits and per-run measurements.
package diag

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"lane-finder/internal/lane"
	"lane-finder/pkg/colorutil"
)

// maxScatter caps the pixels drawn per side; larger sets are strided.
const maxScatter = 4000

// PlotFit draws the lane pixels of each side, the fitted curves and the search
// windows of one frame, with y growing downward like the image.
func PlotFit(res lane.FrameResult, width, height int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Frame %d: left %s (%s), right %s (%s)",
		res.Index, res.Left.Fit, res.Left.Mode, res.Right.Fit, res.Right.Mode)
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.X.Min, p.X.Max = 0, float64(width)
	p.Y.Min, p.Y.Max = 0, float64(height)
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	for _, w := range res.Windows {
		r := w.Rect
		box := plotter.XYs{
			{X: float64(r.X), Y: float64(r.Y)},
			{X: float64(r.X + r.Width), Y: float64(r.Y)},
			{X: float64(r.X + r.Width), Y: float64(r.Y + r.Height)},
			{X: float64(r.X), Y: float64(r.Y + r.Height)},
			{X: float64(r.X), Y: float64(r.Y)},
		}
		line, err := plotter.NewLine(box)
		if err != nil {
			return nil, err
		}
		line.Color = colorutil.Green
		line.Width = vg.Points(0.5)
		p.Add(line)
	}

	sides := []struct {
		name   string
		pixels lane.PixelSet
		fit    lane.Fit
		color  color.Color
	}{
		{"left", res.LeftPixels, res.Left.Fit, colorutil.LeftLane},
		{"right", res.RightPixels, res.Right.Fit, colorutil.RightLane},
	}
	for _, s := range sides {
		if len(s.pixels) > 0 {
			sc, err := plotter.NewScatter(scatterXYs(s.pixels))
			if err != nil {
				return nil, err
			}
			sc.GlyphStyle.Color = s.color
			sc.GlyphStyle.Radius = vg.Points(0.5)
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(sc)
			p.Legend.Add(fmt.Sprintf("%s pixels (%d)", s.name, len(s.pixels)), sc)
		}

		poly, ok := s.fit.Poly()
		if !ok {
			continue
		}
		line, err := plotter.NewLine(curveXYs(poly, height))
		if err != nil {
			return nil, err
		}
		line.Color = colorutil.Curve
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name+" fit", line)
	}

	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SaveFit renders PlotFit to a file; the extension selects the format.
func SaveFit(path string, res lane.FrameResult, width, height int) error {
	p, err := PlotFit(res, width, height)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save fit plot: %w", err)
	}
	return nil
}

// WriteFit renders PlotFit as PNG.
func WriteFit(w io.Writer, res lane.FrameResult, width, height int) error {
	p, err := PlotFit(res, width, height)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(8*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func scatterXYs(px lane.PixelSet) plotter.XYs {
	stride := 1
	if len(px) > maxScatter {
		stride = (len(px) + maxScatter - 1) / maxScatter
	}
	pts := make(plotter.XYs, 0, len(px)/stride+1)
	for i := 0; i < len(px); i += stride {
		pts = append(pts, plotter.XY{X: float64(px[i].X), Y: float64(px[i].Y)})
	}
	return pts
}

// curveXYs samples x = f(y) on every 4th row and the last row.
func curveXYs(poly lane.Polynomial, height int) plotter.XYs {
	var pts plotter.XYs
	for y := 0; y < height; y += 4 {
		pts = append(pts, plotter.XY{X: poly.At(float64(y)), Y: float64(y)})
	}
	if height > 0 && (height-1)%4 != 0 {
		pts = append(pts, plotter.XY{X: poly.At(float64(height - 1)), Y: float64(height - 1)})
	}
	return pts
}
