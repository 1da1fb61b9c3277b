package vision

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"lane-finder/internal/lane"
	"lane-finder/pkg/colorutil"
)

// laneAlpha is the weight of the lane fill blended over the frame.
const laneAlpha = 0.3

// DrawLane fills the region between both fitted curves in the warped view,
// maps it back onto the undistorted frame, blends it in and prints the
// measurements. Both fits must be present.
func DrawLane(undist gocv.Mat, res lane.FrameResult, w *Warper) (gocv.Mat, error) {
	left, lok := res.Left.Fit.Poly()
	right, rok := res.Right.Fit.Poly()
	if !lok || !rok {
		return gocv.Mat{}, fmt.Errorf("draw lane: %w", lane.ErrEmptySignal)
	}

	height := w.size.Y
	poly := LanePolygon(left, right, height)

	warpedFill := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, w.size.X, gocv.MatTypeCV8UC3)
	defer warpedFill.Close()
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pts.Close()
	gocv.FillPoly(&warpedFill, pts, colorutil.LaneFill)

	fill := w.Unwarp(warpedFill)
	defer fill.Close()

	out := gocv.NewMat()
	gocv.AddWeighted(undist, 1, fill, laneAlpha, 0, &out)

	if res.Measurement != nil {
		DrawMeasurement(&out, *res.Measurement)
	}
	return out, nil
}

// LanePolygon traces the left curve top to bottom, then the right curve bottom
// to top, giving a closed outline of the lane in warped coordinates.
func LanePolygon(left, right lane.Polynomial, height int) []image.Point {
	poly := make([]image.Point, 0, 2*height)
	for y := 0; y < height; y++ {
		poly = append(poly, image.Point{X: roundX(left.At(float64(y))), Y: y})
	}
	for y := height - 1; y >= 0; y-- {
		poly = append(poly, image.Point{X: roundX(right.At(float64(y))), Y: y})
	}
	return poly
}

// roundX keeps extreme curve values inside the int range OpenCV accepts.
func roundX(x float64) int {
	const limit = 1 << 20
	switch {
	case math.IsNaN(x):
		return 0
	case x > limit:
		return limit
	case x < -limit:
		return -limit
	}
	return int(math.Round(x))
}

// MeasurementText formats the radius and offset lines printed on each frame.
func MeasurementText(m lane.Measurement) []string {
	radius := func(r float64, straight bool) string {
		if straight {
			return "straight"
		}
		return fmt.Sprintf("%.0f m", r)
	}
	side := "left"
	if m.Offset < 0 {
		side = "right"
	}
	return []string{
		fmt.Sprintf("Left radius: %s", radius(m.LeftRadius, m.LeftStraight)),
		fmt.Sprintf("Right radius: %s", radius(m.RightRadius, m.RightStraight)),
		fmt.Sprintf("Vehicle is %.2f m %s of center", math.Abs(m.Offset), side),
	}
}

// DrawMeasurement prints the measurement text in the top-left corner.
func DrawMeasurement(img *gocv.Mat, m lane.Measurement) {
	for i, line := range MeasurementText(m) {
		gocv.PutText(img, line, image.Point{X: 30, Y: 50 + 40*i},
			gocv.FontHersheySimplex, 1.2, colorutil.White, 2)
	}
}
