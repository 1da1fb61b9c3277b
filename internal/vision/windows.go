package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"lane-finder/internal/lane"
	"lane-finder/pkg/colorutil"
)

// DebugImage renders the warped mask with each side's lane pixels colored.
func DebugImage(m *lane.Mask, res lane.FrameResult) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v != 0 {
			img.Pix[i*4+0] = 255
			img.Pix[i*4+1] = 255
			img.Pix[i*4+2] = 255
		}
		img.Pix[i*4+3] = 255
	}
	paint := func(px lane.PixelSet, c color.RGBA) {
		for _, p := range px {
			img.SetRGBA(p.X, p.Y, c)
		}
	}
	paint(res.LeftPixels, colorutil.LeftLane)
	paint(res.RightPixels, colorutil.RightLane)
	return img
}

// DrawWindows renders DebugImage as a BGR Mat, outlines every search window
// of the sliding-window pass and traces the fitted curves.
func DrawWindows(m *lane.Mask, res lane.FrameResult) (gocv.Mat, error) {
	mat, err := MatFromImage(DebugImage(m, res))
	if err != nil {
		return gocv.Mat{}, err
	}
	for _, w := range res.Windows {
		gocv.Rectangle(&mat, w.Rect.ToImage(), colorutil.LaneFill, 2)
	}

	var curves [][]image.Point
	for _, fit := range []lane.Fit{res.Left.Fit, res.Right.Fit} {
		poly, ok := fit.Poly()
		if !ok {
			continue
		}
		curve := make([]image.Point, 0, m.Height)
		for y := 0; y < m.Height; y++ {
			curve = append(curve, image.Point{X: roundX(poly.At(float64(y))), Y: y})
		}
		curves = append(curves, curve)
	}
	if len(curves) > 0 {
		pv := gocv.NewPointsVectorFromPoints(curves)
		defer pv.Close()
		gocv.Polylines(&mat, pv, false, colorutil.Curve, 2)
	}
	return mat, nil
}
