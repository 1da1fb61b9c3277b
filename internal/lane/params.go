package lane

import "fmt"

// Zones bounds the histogram peak search for each side.
// The left zone is [LeftStart, width/SplitDivisor) and the right zone is
// [width/SplitDivisor, width/SplitDivisor+RightWidth), clipped to the mask width.
type Zones struct {
	LeftStart    int `json:"left_start"`
	SplitDivisor int `json:"split_divisor"`
	RightWidth   int `json:"right_width"`
}

// Bounds returns the [start, end) column ranges of both zones for a mask width.
func (z Zones) Bounds(width int) (leftStart, split, rightEnd int) {
	split = width / z.SplitDivisor
	rightEnd = split + z.RightWidth
	if rightEnd > width {
		rightEnd = width
	}
	return z.LeftStart, split, rightEnd
}

// Params holds the lane pixel search parameters.
type Params struct {
	// Sliding-window search
	Windows   int `json:"windows"`    // Number of horizontal bands
	Margin    int `json:"margin"`     // Half-width of each window (pixels)
	MinPixels int `json:"min_pixels"` // Recenter when a window holds more than this many pixels

	// Prior-guided search
	PriorMargin float64 `json:"prior_margin"` // Inclusive half-width around the prior curve (pixels)

	Zones Zones `json:"zones"`
}

// DefaultParams returns the search parameters tuned for a 1280x720 warped frame.
func DefaultParams() Params {
	return Params{
		Windows:     9,
		Margin:      80,
		MinPixels:   70,
		PriorMargin: 50,
		Zones: Zones{
			LeftStart:    150, // Keep clear of the left image edge
			SplitDivisor: 4,   // Lanes are not centered in the warped frame
			RightWidth:   500,
		},
	}
}

// WithWindows returns a copy of params with a different band count.
func (p Params) WithWindows(n int) Params {
	p.Windows = n
	return p
}

// WithMargin returns a copy of params with a different window half-width.
func (p Params) WithMargin(margin int) Params {
	p.Margin = margin
	return p
}

// WithMinPixels returns a copy of params with a different recenter threshold.
func (p Params) WithMinPixels(n int) Params {
	p.MinPixels = n
	return p
}

// WithPriorMargin returns a copy of params with a different guided-search half-width.
func (p Params) WithPriorMargin(margin float64) Params {
	p.PriorMargin = margin
	return p
}

// WithZones returns a copy of params with custom histogram zones.
func (p Params) WithZones(z Zones) Params {
	p.Zones = z
	return p
}

// Validate checks that the parameters can scan a mask of the given size.
func (p Params) Validate(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidParams, width, height)
	}
	if p.Windows <= 0 {
		return fmt.Errorf("%w: window count %d", ErrInvalidParams, p.Windows)
	}
	if height/p.Windows == 0 {
		return fmt.Errorf("%w: %d windows over height %d gives zero-height bands",
			ErrInvalidParams, p.Windows, height)
	}
	if p.Margin <= 0 {
		return fmt.Errorf("%w: margin %d", ErrInvalidParams, p.Margin)
	}
	if p.MinPixels < 0 {
		return fmt.Errorf("%w: min pixels %d", ErrInvalidParams, p.MinPixels)
	}
	if p.PriorMargin <= 0 {
		return fmt.Errorf("%w: prior margin %g", ErrInvalidParams, p.PriorMargin)
	}
	if p.Zones.SplitDivisor <= 0 {
		return fmt.Errorf("%w: zone split divisor %d", ErrInvalidParams, p.Zones.SplitDivisor)
	}
	if p.Zones.RightWidth <= 0 {
		return fmt.Errorf("%w: right zone width %d", ErrInvalidParams, p.Zones.RightWidth)
	}

	leftStart, split, rightEnd := p.Zones.Bounds(width)
	if leftStart < 0 || leftStart >= split {
		return fmt.Errorf("%w: left zone [%d, %d) is empty or inverted", ErrInvalidParams, leftStart, split)
	}
	if split >= rightEnd {
		return fmt.Errorf("%w: right zone [%d, %d) is empty", ErrInvalidParams, split, rightEnd)
	}
	return nil
}
