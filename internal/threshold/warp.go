package threshold

import (
	"fmt"
	"math"

	"lane-finder/internal/lane"
	"lane-finder/pkg/geometry"
)

// Warp resamples a mask through a perspective transform (nearest neighbour).
// toWarped maps source pixels to output pixels; the output is width x height.
func Warp(m *lane.Mask, toWarped geometry.Homography, width, height int) (*lane.Mask, error) {
	inv, err := toWarped.Inverse()
	if err != nil {
		return nil, fmt.Errorf("warp mask: %w", err)
	}

	out := lane.NewMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := inv.Apply(geometry.NewPoint2D(float64(x), float64(y)))
			if math.IsNaN(src.X) || math.IsNaN(src.Y) {
				continue
			}
			sx := int(math.Round(src.X))
			sy := int(math.Round(src.Y))
			if m.At(sx, sy) {
				out.Pix[y*width+x] = 1
			}
		}
	}
	return out, nil
}
