package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"lane-finder/internal/config"
	"lane-finder/internal/lane"
	"lane-finder/internal/threshold"
)

// Frame is a preprocessed camera frame ready for the lane search.
type Frame struct {
	Undistorted gocv.Mat   // Camera view at the configured frame size
	Mask        *lane.Mask // Bird's-eye binary mask
}

// Close releases the undistorted image.
func (f *Frame) Close() {
	f.Undistorted.Close()
}

// Preprocessor turns raw camera frames into warped lane masks. Prepare may be
// called from several goroutines at once.
type Preprocessor struct {
	camera    *Camera // nil skips undistortion
	warper    *Warper
	threshold threshold.Params
	width     int
	height    int
}

// NewPreprocessor builds the stages described by cfg. camera may be nil.
func NewPreprocessor(cfg *config.Config, camera *Camera) (*Preprocessor, error) {
	w, err := NewWarper(cfg.Perspective, cfg.Frame.Width, cfg.Frame.Height)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{
		camera:    camera,
		warper:    w,
		threshold: cfg.Threshold,
		width:     cfg.Frame.Width,
		height:    cfg.Frame.Height,
	}, nil
}

// Warper returns the perspective stage, used to draw results back.
func (p *Preprocessor) Warper() *Warper { return p.warper }

// Prepare resizes, undistorts, thresholds and warps one frame. The caller owns
// the returned Frame. src is not modified.
func (p *Preprocessor) Prepare(src gocv.Mat) (Frame, error) {
	if src.Empty() {
		return Frame{}, fmt.Errorf("prepare: empty frame")
	}

	sized := Resize(src, p.width, p.height)
	undist := sized
	if p.camera != nil {
		var err error
		undist, err = p.camera.Undistort(sized)
		sized.Close()
		if err != nil {
			return Frame{}, err
		}
	}

	binary, err := Binarize(undist, p.threshold)
	if err != nil {
		undist.Close()
		return Frame{}, err
	}
	defer binary.Close()

	mask, err := p.warper.WarpMask(binary)
	if err != nil {
		undist.Close()
		return Frame{}, err
	}
	return Frame{Undistorted: undist, Mask: mask}, nil
}

// Close releases the perspective matrices. The camera is owned by the caller.
func (p *Preprocessor) Close() {
	p.warper.Close()
}
