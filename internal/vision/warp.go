package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"lane-finder/internal/config"
	"lane-finder/internal/lane"
	"lane-finder/pkg/geometry"
)

// Warper maps frames between the camera view and the bird's-eye view.
type Warper struct {
	forward geometry.Homography
	inverse geometry.Homography
	m       gocv.Mat
	minv    gocv.Mat
	size    image.Point
}

// NewWarper builds both perspective matrices for frames of width x height.
func NewWarper(p config.Perspective, width, height int) (*Warper, error) {
	fwd, inv, err := p.Transforms()
	if err != nil {
		return nil, err
	}
	return &Warper{
		forward: fwd,
		inverse: inv,
		m:       homographyMat(fwd),
		minv:    homographyMat(inv),
		size:    image.Point{X: width, Y: height},
	}, nil
}

// homographyMat copies a homography into a 3x3 CV_64F Mat.
func homographyMat(h geometry.Homography) gocv.Mat {
	mat := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	rows := h.Rows()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			mat.SetDoubleAt(r, c, rows[r][c])
		}
	}
	return mat
}

// Forward returns the camera-to-warped transform.
func (w *Warper) Forward() geometry.Homography { return w.forward }

// Inverse returns the warped-to-camera transform.
func (w *Warper) Inverse() geometry.Homography { return w.inverse }

// Warp returns the bird's-eye view of src (linear interpolation).
func (w *Warper) Warp(src gocv.Mat) gocv.Mat {
	return w.apply(src, w.m)
}

// Unwarp maps a bird's-eye image back into the camera view.
func (w *Warper) Unwarp(src gocv.Mat) gocv.Mat {
	return w.apply(src, w.minv)
}

func (w *Warper) apply(src, m gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.WarpPerspectiveWithParams(src, &dst, m, w.size,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	return dst
}

// WarpMask warps a binary CV_8UC1 frame and converts it to a lane mask.
// Interpolated edge values are re-binarized: any nonzero pixel is set.
func (w *Warper) WarpMask(binary gocv.Mat) (*lane.Mask, error) {
	warped := w.Warp(binary)
	defer warped.Close()
	m, err := MaskFromMat(warped)
	if err != nil {
		return nil, fmt.Errorf("warp mask: %w", err)
	}
	return m, nil
}

// Close releases the perspective matrices.
func (w *Warper) Close() {
	w.m.Close()
	w.minv.Close()
}
