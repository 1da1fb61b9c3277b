package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"lane-finder/internal/config"
)

// Camera removes lens distortion using a stored calibration.
type Camera struct {
	matrix gocv.Mat
	dist   gocv.Mat
}

// NewCamera builds the OpenCV matrices for a calibration. Close releases them.
func NewCamera(cal *config.Camera) (*Camera, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}

	matrix := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			matrix.SetDoubleAt(r, c, cal.Matrix[r][c])
		}
	}

	dist := gocv.NewMatWithSize(1, len(cal.Distortion), gocv.MatTypeCV64F)
	for i, k := range cal.Distortion {
		dist.SetDoubleAt(0, i, k)
	}

	return &Camera{matrix: matrix, dist: dist}, nil
}

// LoadCamera reads a calibration file and builds a Camera.
func LoadCamera(path string) (*Camera, error) {
	cal, err := config.LoadCamera(path)
	if err != nil {
		return nil, err
	}
	return NewCamera(cal)
}

// Undistort returns an undistorted copy of src, keeping the camera matrix.
func (c *Camera) Undistort(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.Mat{}, fmt.Errorf("undistort: empty frame")
	}
	dst := gocv.NewMat()
	gocv.Undistort(src, &dst, c.matrix, c.dist, c.matrix)
	return dst, nil
}

// Close releases the calibration matrices.
func (c *Camera) Close() {
	c.matrix.Close()
	c.dist.Close()
}
