// Package config provides the lane-finder configuration file and its defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lane-finder/internal/lane"
	"lane-finder/internal/threshold"
	"lane-finder/pkg/geometry"
)

// CurrentVersion is the config file format version written by Save.
const CurrentVersion = 1

// maxFileSize bounds config and calibration files.
const maxFileSize = 1 << 20

// Frame is the size every frame is processed at.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Perspective holds the road-plane correspondences for the bird's-eye warp.
// Src corners are in the undistorted camera frame, Dst in the warped frame.
type Perspective struct {
	Src geometry.Quad `json:"src"`
	Dst geometry.Quad `json:"dst"`
}

// Transforms returns the forward (camera to warped) and inverse homographies.
func (p Perspective) Transforms() (forward, inverse geometry.Homography, err error) {
	forward, err = geometry.PerspectiveTransform(p.Src, p.Dst)
	if err != nil {
		return forward, inverse, fmt.Errorf("forward transform: %w", err)
	}
	inverse, err = geometry.PerspectiveTransform(p.Dst, p.Src)
	if err != nil {
		return forward, inverse, fmt.Errorf("inverse transform: %w", err)
	}
	return forward, inverse, nil
}

// Config is the lane-finder configuration file (.json).
type Config struct {
	Version int `json:"version"`

	Frame       Frame            `json:"frame"`
	Search      lane.Params      `json:"search"`
	Calibration lane.Calibration `json:"calibration"`
	Perspective Perspective      `json:"perspective"`
	Threshold   threshold.Params `json:"threshold"`

	// Camera calibration file, relative to the config file
	CameraPath string `json:"camera,omitempty"`

	// Video mode
	Workers int `json:"workers"` // Frames preprocessed concurrently
}

// Default returns the configuration for 1280x720 dashcam footage.
func Default() *Config {
	return &Config{
		Version:     CurrentVersion,
		Frame:       Frame{Width: 1280, Height: 720},
		Search:      lane.DefaultParams(),
		Calibration: lane.DefaultCalibration(),
		Perspective: Perspective{
			Src: geometry.Quad{{X: 800, Y: 510}, {X: 1150, Y: 700}, {X: 270, Y: 700}, {X: 510, Y: 510}},
			Dst: geometry.Quad{{X: 650, Y: 470}, {X: 640, Y: 700}, {X: 270, Y: 700}, {X: 270, Y: 510}},
		},
		Threshold: threshold.DefaultParams(),
		Workers:   4,
	}
}

// Load reads a config file. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := readJSON(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.Version > CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", cfg.Version, CurrentVersion)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the config as indented JSON.
func (c *Config) Save(path string) error {
	c.Version = CurrentVersion
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section against the frame size.
func (c *Config) Validate() error {
	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", lane.ErrInvalidParams, c.Frame.Width, c.Frame.Height)
	}
	if err := c.Search.Validate(c.Frame.Width, c.Frame.Height); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Calibration.Validate(); err != nil {
		return fmt.Errorf("calibration: %w", err)
	}
	if err := c.Threshold.Validate(); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	if _, _, err := c.Perspective.Transforms(); err != nil {
		return fmt.Errorf("%w: perspective: %v", lane.ErrInvalidParams, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d", lane.ErrInvalidParams, c.Workers)
	}
	return nil
}

// CameraFile returns the absolute path of the camera calibration file, or ""
// when none is configured.
func (c *Config) CameraFile(configPath string) string {
	if c.CameraPath == "" {
		return ""
	}
	if filepath.IsAbs(c.CameraPath) || configPath == "" {
		return c.CameraPath
	}
	return filepath.Join(filepath.Dir(configPath), c.CameraPath)
}

// SetCameraFile stores the calibration path relative to the config file.
func (c *Config) SetCameraFile(configPath, cameraPath string) {
	rel, err := filepath.Rel(filepath.Dir(configPath), cameraPath)
	if err != nil {
		c.CameraPath = cameraPath
	} else {
		c.CameraPath = rel
	}
}

// readJSON reads a bounded .json file.
func readJSON(path string) ([]byte, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", cleanPath, err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%s too large: %d bytes (max %d)", cleanPath, info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cleanPath, err)
	}
	return data, nil
}
