package lane

import (
	"errors"
	"fmt"
)

// SearchMode records how a side's pixels were found.
type SearchMode int

const (
	ModeNone SearchMode = iota
	ModeWindow
	ModePrior
)

func (m SearchMode) String() string {
	switch m {
	case ModeWindow:
		return "window"
	case ModePrior:
		return "prior"
	default:
		return "none"
	}
}

// MarshalText encodes the mode by name.
func (m SearchMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// SideResult is the outcome for one lane side in one frame.
type SideResult struct {
	Fit    Fit        `json:"fit"`
	Mode   SearchMode `json:"mode"`
	Pixels int        `json:"pixels"`
}

// FrameResult is the outcome of processing one mask.
type FrameResult struct {
	Index       int          `json:"index"`
	Left        SideResult   `json:"left"`
	Right       SideResult   `json:"right"`
	Bases       *Bases       `json:"bases,omitempty"` // Set when a window search ran
	Measurement *Measurement `json:"measurement"`     // Nil unless both sides are present
	Windows     []Window     `json:"-"`               // Boxes of the window search, if any
	LeftPixels  PixelSet     `json:"-"`
	RightPixels PixelSet     `json:"-"`
}

// Detect runs a full sliding-window search on a single mask.
func Detect(m *Mask, p Params, cal Calibration) (FrameResult, error) {
	if err := p.Validate(m.Width, m.Height); err != nil {
		return FrameResult{}, err
	}
	if err := cal.Validate(); err != nil {
		return FrameResult{}, err
	}
	var res FrameResult
	runWindows(m, p, &res, true, true)
	if err := measure(cal, m, &res); err != nil {
		return res, err
	}
	return res, nil
}

// Tracker carries the previous frame's fits into the next frame's search.
//
// For each side: a present prior selects the guided search; an absent prior,
// or a guided search that finds nothing, falls back to the sliding-window
// search for that frame. The fits produced by a frame (present or absent)
// become the prior of the next frame, so a lost side is always re-acquired by
// a full search and never reuses a stale curve.
type Tracker struct {
	params Params
	cal    Calibration
	width  int
	height int

	left   Fit
	right  Fit
	frames int

	// Logf, when set, receives a line for every fallback to the window search.
	Logf func(format string, args ...any)
}

// NewTracker validates the parameters for the given frame size.
func NewTracker(p Params, cal Calibration, width, height int) (*Tracker, error) {
	if err := p.Validate(width, height); err != nil {
		return nil, err
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{
		params: p,
		cal:    cal,
		width:  width,
		height: height,
	}, nil
}

// Prior returns the fits that the next frame will search around.
func (t *Tracker) Prior() (left, right Fit) {
	return t.left, t.right
}

// Frames returns the number of frames processed.
func (t *Tracker) Frames() int {
	return t.frames
}

// Reset drops the prior so the next frame runs a full search on both sides.
func (t *Tracker) Reset() {
	t.left = Absent()
	t.right = Absent()
}

// Process runs one frame. Frames must be supplied in capture order.
func (t *Tracker) Process(m *Mask) (FrameResult, error) {
	if m.Width != t.width || m.Height != t.height {
		return FrameResult{}, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrMaskSize, m.Width, m.Height, t.width, t.height)
	}

	res := FrameResult{Index: t.frames}
	t.frames++

	guided := SearchPrior(m, t.left, t.right, t.params.PriorMargin)
	if guided.LeftSearched {
		res.Left = SideResult{Fit: FitPixels(guided.Left), Mode: ModePrior, Pixels: len(guided.Left)}
		res.LeftPixels = guided.Left
	}
	if guided.RightSearched {
		res.Right = SideResult{Fit: FitPixels(guided.Right), Mode: ModePrior, Pixels: len(guided.Right)}
		res.RightPixels = guided.Right
	}

	needLeft := !res.Left.Fit.Valid()
	needRight := !res.Right.Fit.Valid()
	if needLeft || needRight {
		t.logFallback(res.Index, guided, needLeft, needRight)
		runWindows(m, t.params, &res, needLeft, needRight)
	}

	t.left = res.Left.Fit
	t.right = res.Right.Fit

	if err := measure(t.cal, m, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (t *Tracker) logFallback(index int, guided PriorResult, left, right bool) {
	if t.Logf == nil {
		return
	}
	if left && guided.LeftSearched {
		t.Logf("frame %d: left prior found no pixels, falling back to window search", index)
	}
	if right && guided.RightSearched {
		t.Logf("frame %d: right prior found no pixels, falling back to window search", index)
	}
}

// runWindows fills the requested sides of res from a sliding-window pass.
func runWindows(m *Mask, p Params, res *FrameResult, left, right bool) {
	bases := LocateBases(m, p.Zones)
	win := SearchWindows(m, bases, p)
	res.Bases = &bases
	res.Windows = win.Windows
	if left {
		res.Left = SideResult{Fit: FitPixels(win.Left), Mode: ModeWindow, Pixels: len(win.Left)}
		res.LeftPixels = win.Left
	}
	if right {
		res.Right = SideResult{Fit: FitPixels(win.Right), Mode: ModeWindow, Pixels: len(win.Right)}
		res.RightPixels = win.Right
	}
}

// measure attaches a Measurement when both sides are present.
func measure(cal Calibration, m *Mask, res *FrameResult) error {
	meas, err := cal.Measure(res.Left.Fit, res.Right.Fit, m.Width, m.Height)
	if errors.Is(err, ErrEmptySignal) {
		return nil
	}
	if err != nil {
		return err
	}
	res.Measurement = &meas
	return nil
}
