// Package colorutil provides the shared colors used for lane overlays and plots.
package colorutil

import "image/color"

// Overlay colors used throughout the application. gocv drawing functions take
// them as RGB and reorder the channels for OpenCV.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// LeftLane and RightLane are the pixel colors for each lane side.
var (
	LeftLane  = Red
	RightLane = Blue
	Curve     = Yellow
	LaneFill  = Green
)
