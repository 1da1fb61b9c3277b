// Package lane locates lane-marking pixels in a bird's-eye binary mask and fits
// the two lane boundaries as quadratic curves x = A·y² + B·y + C.
//
// # Pipeline
//
// A frame is processed in three steps:
//
//  1. Pixel search. Either a full sliding-window search seeded from a column
//     histogram of the lower half of the mask, or, when the previous frame
//     produced a fit, a guided search in a fixed band around that curve.
//  2. Polynomial fit. A least-squares quadratic per side, with y as the
//     independent variable. A side with no pixels yields an absent Fit.
//  3. Measurement. The pixel fits are refit in meters and the radius of
//     curvature and lateral offset are evaluated at the bottom row.
//
// Tracker ties the steps together for video, handing each frame's fits to the
// next frame as its prior.
//
// # Coordinate System
//
// Mask coordinates are 0-based with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward. The bottom row (Height-1) is nearest to
// the vehicle.
//
// # Offset Sign
//
// Measurement.Offset is (laneCenter - imageCenter) in meters. A positive offset
// means the lane center lies to the right of the image center, i.e. the vehicle
// sits left of the lane center.
//
// # Thread Safety
//
// Mask, Fit and the search functions are safe to use from multiple goroutines
// as long as no goroutine mutates the mask. Tracker is not safe for concurrent
// use; frames must be fed to it in order.
package lane
