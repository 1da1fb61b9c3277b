// Package threshold turns road images into binary lane masks without OpenCV.
//
// The gradient and color thresholds match the OpenCV pipeline in
// internal/vision so both produce comparable masks for the same frame.
package threshold

import (
	"fmt"

	"lane-finder/internal/lane"
)

// Range is a closed interval [Low, High].
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether Low <= v <= High.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// ContainsOpenLow reports whether Low < v <= High.
func (r Range) ContainsOpenLow(v float64) bool {
	return v > r.Low && v <= r.High
}

// Params configures the gradient and color thresholds.
type Params struct {
	BlurKernel int `json:"blur_kernel"` // Gaussian kernel size, odd; 0 or 1 disables

	SobelKernel int   `json:"sobel_kernel"`
	SobelX      Range `json:"sobel_x"`   // Scaled |d/dx|, 0-255
	Magnitude   Range `json:"magnitude"` // Scaled gradient magnitude, 0-255

	DirectionKernel int   `json:"direction_kernel"`
	Direction       Range `json:"direction"` // atan2(|gy|, |gx|), radians

	Saturation Range `json:"saturation"` // HLS S channel, 0-255, low bound exclusive

	// The mask is always S | SobelX. These add more gradient pixels.
	UseMagnitude bool `json:"use_magnitude"`
	UseDirection bool `json:"use_direction"` // Restrict magnitude pixels by direction
}

// DefaultParams returns thresholds tuned for daylight highway footage.
func DefaultParams() Params {
	return Params{
		BlurKernel:      5,
		SobelKernel:     3,
		SobelX:          Range{Low: 22, High: 100},
		Magnitude:       Range{Low: 40, High: 100},
		DirectionKernel: 15,
		Direction:       Range{Low: 0.7, High: 1.3},
		Saturation:      Range{Low: 90, High: 255},
	}
}

// WithBlurKernel returns a copy of params with a different blur kernel.
func (p Params) WithBlurKernel(k int) Params {
	p.BlurKernel = k
	return p
}

// WithSaturation returns a copy of params with a different S channel range.
func (p Params) WithSaturation(r Range) Params {
	p.Saturation = r
	return p
}

// WithSobelX returns a copy of params with a different x-gradient range.
func (p Params) WithSobelX(r Range) Params {
	p.SobelX = r
	return p
}

// WithMagnitude returns a copy of params that also accepts magnitude pixels.
func (p Params) WithMagnitude(r Range) Params {
	p.Magnitude = r
	p.UseMagnitude = true
	return p
}

// Validate checks kernel sizes and ranges.
func (p Params) Validate() error {
	if p.BlurKernel > 1 && p.BlurKernel%2 == 0 {
		return fmt.Errorf("%w: blur kernel %d must be odd", lane.ErrInvalidParams, p.BlurKernel)
	}
	for _, k := range []struct {
		name string
		size int
	}{{"sobel", p.SobelKernel}, {"direction", p.DirectionKernel}} {
		if k.size < 3 || k.size > 31 || k.size%2 == 0 {
			return fmt.Errorf("%w: %s kernel %d must be odd in [3, 31]", lane.ErrInvalidParams, k.name, k.size)
		}
	}
	for _, r := range []struct {
		name string
		rng  Range
	}{
		{"sobel_x", p.SobelX},
		{"magnitude", p.Magnitude},
		{"direction", p.Direction},
		{"saturation", p.Saturation},
	} {
		if r.rng.Low > r.rng.High {
			return fmt.Errorf("%w: %s range [%g, %g] is inverted",
				lane.ErrInvalidParams, r.name, r.rng.Low, r.rng.High)
		}
	}
	return nil
}
