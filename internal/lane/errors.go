package lane

import "errors"

var (
	// ErrEmptySignal is returned when a present fit is required but a side
	// produced no lane pixels.
	ErrEmptySignal = errors.New("lane: no lane signal")

	// ErrInvalidParams is returned when search or calibration parameters
	// cannot produce a valid scan (zero-height bands, inverted zones, ...).
	ErrInvalidParams = errors.New("lane: invalid parameters")

	// ErrMaskSize is returned when a mask does not match the configured frame size.
	ErrMaskSize = errors.New("lane: mask size mismatch")
)
