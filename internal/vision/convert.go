// Package vision holds the OpenCV stages around the lane search: camera
// undistortion, thresholding, the bird's-eye warp and the rendered outputs.
//
// Every function returning a gocv.Mat hands ownership to the caller, who must
// Close it.
package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"lane-finder/internal/lane"
)

// MaskFromMat converts a single-channel 8-bit Mat to a lane mask; any nonzero
// pixel is set.
func MaskFromMat(mat gocv.Mat) (*lane.Mask, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("mask mat must be CV_8UC1, got %v", mat.Type())
	}

	w, h := mat.Cols(), mat.Rows()
	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}
	data, err := src.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("read mask data: %w", err)
	}

	m := lane.NewMask(w, h)
	for i, v := range data[:w*h] {
		if v != 0 {
			m.Pix[i] = 1
		}
	}
	return m, nil
}

// MatFromMask renders a mask as a CV_8UC1 Mat with set pixels at 255.
func MatFromMask(m *lane.Mask) (gocv.Mat, error) {
	return gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, m.ToGray().Pix)
}

// MatFromImage converts a Go image to a BGR Mat.
func MatFromImage(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("convert image: %w", err)
	}
	return mat, nil
}

// Resize scales src to the frame size when it differs, returning a new Mat.
func Resize(src gocv.Mat, width, height int) gocv.Mat {
	dst := gocv.NewMat()
	if src.Cols() == width && src.Rows() == height {
		src.CopyTo(&dst)
		return dst
	}
	gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)
	return dst
}
