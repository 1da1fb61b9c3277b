package lane

import (
	"fmt"
	"math"
)

// Calibration converts warped-frame pixels to meters.
type Calibration struct {
	YMetersPerPixel float64 `json:"ym_per_pix"` // Along the lane
	XMetersPerPixel float64 `json:"xm_per_pix"` // Across the lane

	// MaxRadius caps the reported radius of curvature. A curve straighter than
	// this is reported as MaxRadius with the Straight flag set.
	MaxRadius float64 `json:"max_radius_m"`

	// CenterColumn is the image column of the camera center. Zero means width/2.
	CenterColumn float64 `json:"center_column,omitempty"`
}

// DefaultCalibration assumes about 30 m of lane length and a 3.7 m lane width
// (700 px) are visible in a 720-row warped frame.
func DefaultCalibration() Calibration {
	return Calibration{
		YMetersPerPixel: 30.0 / 720,
		XMetersPerPixel: 3.7 / 700,
		MaxRadius:       100000,
	}
}

// Validate checks the scale factors.
func (c Calibration) Validate() error {
	if !(c.YMetersPerPixel > 0) || !(c.XMetersPerPixel > 0) {
		return fmt.Errorf("%w: meters per pixel must be positive (y=%g, x=%g)",
			ErrInvalidParams, c.YMetersPerPixel, c.XMetersPerPixel)
	}
	if !(c.MaxRadius > 0) || math.IsInf(c.MaxRadius, 0) {
		return fmt.Errorf("%w: max radius %g", ErrInvalidParams, c.MaxRadius)
	}
	if c.CenterColumn < 0 {
		return fmt.Errorf("%w: center column %g", ErrInvalidParams, c.CenterColumn)
	}
	return nil
}

// ToWorld samples the pixel-space curve on every row of [0, height) and refits
// the samples in meters.
func (c Calibration) ToWorld(p Polynomial, height int) (Polynomial, error) {
	if height < 3 {
		return Polynomial{}, fmt.Errorf("%w: height %d too small to refit", ErrInvalidParams, height)
	}
	ys := make([]float64, height)
	xs := make([]float64, height)
	for y := 0; y < height; y++ {
		ys[y] = float64(y) * c.YMetersPerPixel
		xs[y] = p.At(float64(y)) * c.XMetersPerPixel
	}
	coeffs, err := PolyFit(ys, xs, 2)
	if err != nil {
		return Polynomial{}, fmt.Errorf("refit in meters: %w", err)
	}
	return Polynomial{A: coeffs[0], B: coeffs[1], C: coeffs[2]}, nil
}

// ToPixels maps a meters-space curve back to pixel space.
func (c Calibration) ToPixels(w Polynomial) Polynomial {
	ym, xm := c.YMetersPerPixel, c.XMetersPerPixel
	return Polynomial{
		A: w.A * ym * ym / xm,
		B: w.B * ym / xm,
		C: w.C / xm,
	}
}

// Radius computes the radius of curvature in meters of a meters-space curve at
// pixel row y:
//
//	R = (1 + (2·A·y·ym + B)²)^1.5 / |2·A|
//
// A near-zero A (or a radius beyond MaxRadius) returns MaxRadius and
// straight = true instead of an infinite or NaN value.
func (c Calibration) Radius(w Polynomial, y float64) (radius float64, straight bool) {
	den := math.Abs(2 * w.A)
	if den < 1e-12 {
		return c.MaxRadius, true
	}
	slope := 2*w.A*y*c.YMetersPerPixel + w.B
	r := math.Pow(1+slope*slope, 1.5) / den
	if math.IsNaN(r) || r > c.MaxRadius {
		return c.MaxRadius, true
	}
	return r, false
}

// Measurement is the real-world geometry of one frame.
type Measurement struct {
	LeftRadius    float64 `json:"left_radius_m"`
	RightRadius   float64 `json:"right_radius_m"`
	LeftStraight  bool    `json:"left_straight,omitempty"`
	RightStraight bool    `json:"right_straight,omitempty"`

	// Offset is (lane center - image center) in meters; positive means the
	// vehicle sits left of the lane center.
	Offset float64 `json:"offset_m"`
}

// Measure computes both radii of curvature and the lateral offset at the
// bottom row of a width x height frame. Both fits must be present.
func (c Calibration) Measure(left, right Fit, width, height int) (Measurement, error) {
	lp, lok := left.Poly()
	rp, rok := right.Poly()
	switch {
	case !lok && !rok:
		return Measurement{}, fmt.Errorf("%w: both sides absent", ErrEmptySignal)
	case !lok:
		return Measurement{}, fmt.Errorf("%w: left side absent", ErrEmptySignal)
	case !rok:
		return Measurement{}, fmt.Errorf("%w: right side absent", ErrEmptySignal)
	}

	lw, err := c.ToWorld(lp, height)
	if err != nil {
		return Measurement{}, fmt.Errorf("left: %w", err)
	}
	rw, err := c.ToWorld(rp, height)
	if err != nil {
		return Measurement{}, fmt.Errorf("right: %w", err)
	}

	bottom := float64(height - 1)
	var m Measurement
	m.LeftRadius, m.LeftStraight = c.Radius(lw, bottom)
	m.RightRadius, m.RightStraight = c.Radius(rw, bottom)
	m.Offset = c.Offset(lp, rp, width, height)
	return m, nil
}

// Offset returns the lateral offset in meters of the lane center from the
// image center, both evaluated at the bottom row.
func (c Calibration) Offset(left, right Polynomial, width, height int) float64 {
	bottom := float64(height - 1)
	laneCenter := (left.At(bottom) + right.At(bottom)) / 2
	imageCenter := c.CenterColumn
	if imageCenter == 0 {
		imageCenter = float64(width) / 2
	}
	return (laneCenter - imageCenter) * c.XMetersPerPixel
}
