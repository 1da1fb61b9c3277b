package vision

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Video reads frames from a file.
type Video struct {
	cap    *gocv.VideoCapture
	reader sync.WaitGroup
	FPS    float64
	Width  int
	Height int
}

// OpenVideo opens a video file for reading.
func OpenVideo(path string) (*Video, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open video %s: not readable", path)
	}
	fps := vc.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = 25
	}
	return &Video{
		cap:    vc,
		FPS:    fps,
		Width:  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(vc.Get(gocv.VideoCaptureFrameHeight)),
	}, nil
}

// Frames decodes the video on its own goroutine. The channel closes at the
// end of the file or when ctx is cancelled. The receiver owns each Mat.
func (v *Video) Frames(ctx context.Context) <-chan gocv.Mat {
	out := make(chan gocv.Mat)
	v.reader.Add(1)
	go func() {
		defer v.reader.Done()
		defer close(out)
		for {
			frame := gocv.NewMat()
			if ok := v.cap.Read(&frame); !ok || frame.Empty() {
				frame.Close()
				return
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				frame.Close()
				return
			}
		}
	}()
	return out
}

// Close releases the capture once the Frames reader has stopped, so the
// context passed to Frames must be cancelled or the channel drained first.
func (v *Video) Close() error {
	v.reader.Wait()
	return v.cap.Close()
}

// OpenWriter creates an MJPG video writer for color frames.
func OpenWriter(path string, fps float64, width, height int) (*gocv.VideoWriter, error) {
	w, err := gocv.VideoWriterFile(path, "MJPG", fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("open writer %s: %w", path, err)
	}
	if !w.IsOpened() {
		w.Close()
		return nil, fmt.Errorf("open writer %s: codec unavailable", path)
	}
	return w, nil
}
