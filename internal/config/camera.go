package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"lane-finder/internal/lane"
)

// Camera holds the intrinsic calibration of the dashcam.
type Camera struct {
	Matrix     [3][3]float64 `json:"camera_matrix"` // [[fx 0 cx] [0 fy cy] [0 0 1]]
	Distortion []float64     `json:"dist_coeffs"`   // k1 k2 p1 p2 [k3 ...]
}

// LoadCamera reads a camera calibration file.
func LoadCamera(path string) (*Camera, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}

	var cam Camera
	if err := json.Unmarshal(data, &cam); err != nil {
		return nil, fmt.Errorf("failed to parse camera JSON: %w", err)
	}
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera calibration: %w", err)
	}
	return &cam, nil
}

// Save writes the calibration as indented JSON.
func (c *Camera) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the focal lengths and the distortion coefficient count.
func (c *Camera) Validate() error {
	fx, fy := c.Matrix[0][0], c.Matrix[1][1]
	if !(fx > 0) || !(fy > 0) || math.IsInf(fx, 0) || math.IsInf(fy, 0) {
		return fmt.Errorf("%w: focal lengths fx=%g fy=%g", lane.ErrInvalidParams, fx, fy)
	}
	if c.Matrix[2] != [3]float64{0, 0, 1} {
		return fmt.Errorf("%w: camera matrix last row %v, want [0 0 1]", lane.ErrInvalidParams, c.Matrix[2])
	}
	switch len(c.Distortion) {
	case 4, 5, 8, 12, 14:
	default:
		return fmt.Errorf("%w: %d distortion coefficients", lane.ErrInvalidParams, len(c.Distortion))
	}
	return nil
}
