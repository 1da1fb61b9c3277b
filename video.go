package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"

	"lane-finder/internal/config"
	"lane-finder/internal/diag"
	"lane-finder/internal/lane"
	"lane-finder/internal/pipeline"
	"lane-finder/internal/vision"
	"lane-finder/pkg/colorutil"
)

// runVideo tracks the lane through a video: frames are preprocessed in
// parallel and handed to a single Tracker in capture order.
func runVideo(ctx context.Context, cfg *config.Config, pre *vision.Preprocessor, opts options) error {
	video, err := vision.OpenVideo(opts.video)
	if err != nil {
		return err
	}
	defer video.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log.Printf("Opened %s: %dx%d at %.2f fps", opts.video, video.Width, video.Height, video.FPS)

	writer, err := vision.OpenWriter(opts.out, video.FPS, cfg.Frame.Width, cfg.Frame.Height)
	if err != nil {
		return err
	}
	defer writer.Close()

	tracker, err := lane.NewTracker(cfg.Search, cfg.Calibration, cfg.Frame.Width, cfg.Frame.Height)
	if err != nil {
		return err
	}
	if opts.verbose {
		tracker.Logf = log.Printf
	}

	var recorder *diag.Recorder
	if opts.plots != "" {
		if recorder, err = diag.NewRecorder(opts.plots); err != nil {
			return err
		}
	}
	report := diag.NewReport(opts.video, opts.configPath)
	log.Printf("Run %s with %d workers", report.RunID, cfg.Workers)

	runner := &pipeline.Runner[gocv.Mat, vision.Frame]{
		Workers: cfg.Workers,
		Prepare: func(_ context.Context, _ int, src gocv.Mat) (vision.Frame, error) {
			defer src.Close()
			return pre.Prepare(src)
		},
		Consume: func(index int, frame vision.Frame) error {
			defer frame.Close()

			res, err := tracker.Process(frame.Mask)
			if err != nil {
				return err
			}
			res.Windows = nil
			res.LeftPixels = nil
			res.RightPixels = nil
			report.Add(res)
			if recorder != nil {
				recorder.Record(res)
			}

			out, err := renderFrame(frame, res, pre.Warper())
			if err != nil {
				return err
			}
			defer out.Close()
			if err := writer.Write(out); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
			if index > 0 && index%100 == 0 {
				log.Printf("Processed %d frames", index)
			}
			return nil
		},
		Skip: func(index int, err error) {
			log.Printf("Frame %d skipped: %v", index, err)
		},
		Discard: func(frame vision.Frame) {
			frame.Close()
		},
	}

	stats, runErr := runner.Run(ctx, video.Frames(ctx))
	report.Finish(stats)
	log.Printf("Frames: %d processed, %d skipped, %d measured, %d window fallbacks",
		stats.Processed, stats.Skipped, report.Measured(), report.Fallback)

	if opts.report != "" {
		if err := report.Save(opts.report); err != nil {
			return err
		}
		log.Printf("Wrote report %s", opts.report)
	}
	if recorder != nil {
		n, err := recorder.GeneratePlots()
		if err != nil {
			return err
		}
		log.Printf("Wrote %d plots to %s", n, opts.plots)
	}

	if errors.Is(runErr, context.Canceled) {
		log.Printf("Interrupted after %d frames", stats.Frames)
		return nil
	}
	return runErr
}

// renderFrame draws the lane when both sides are known, or marks the frame as
// undetected otherwise.
func renderFrame(frame vision.Frame, res lane.FrameResult, w *vision.Warper) (gocv.Mat, error) {
	out, err := vision.DrawLane(frame.Undistorted, res, w)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, lane.ErrEmptySignal) {
		return gocv.Mat{}, err
	}
	out = frame.Undistorted.Clone()
	gocv.PutText(&out, "Lane not detected", image.Point{X: 30, Y: 50},
		gocv.FontHersheySimplex, 1.2, colorutil.Red, 2)
	return out, nil
}
