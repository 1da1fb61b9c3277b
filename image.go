package main

import (
	"errors"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"lane-finder/internal/config"
	"lane-finder/internal/diag"
	"lane-finder/internal/lane"
	"lane-finder/internal/vision"
)

// runImage detects the lane in a single still image.
func runImage(cfg *config.Config, pre *vision.Preprocessor, opts options) error {
	if !isImagePath(opts.out) {
		return fmt.Errorf("output %q is not an image path", opts.out)
	}

	src := gocv.IMRead(opts.image, gocv.IMReadColor)
	if src.Empty() {
		return fmt.Errorf("failed to read image %s", opts.image)
	}
	defer src.Close()
	log.Printf("Loaded %s: %dx%d", opts.image, src.Cols(), src.Rows())

	frame, err := pre.Prepare(src)
	if err != nil {
		return err
	}
	defer frame.Close()

	res, err := lane.Detect(frame.Mask, cfg.Search, cfg.Calibration)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	printResult(res, frame.Mask)

	if opts.debug != "" {
		if err := writeDebug(opts.debug, frame.Mask, res); err != nil {
			return err
		}
	}
	if opts.plot != "" {
		if err := diag.SaveFit(opts.plot, res, cfg.Frame.Width, cfg.Frame.Height); err != nil {
			return err
		}
		log.Printf("Wrote fit plot %s", opts.plot)
	}

	out, err := vision.DrawLane(frame.Undistorted, res, pre.Warper())
	if errors.Is(err, lane.ErrEmptySignal) {
		log.Printf("Lane not found on both sides, writing the undistorted frame")
		out = frame.Undistorted.Clone()
	} else if err != nil {
		return err
	}
	defer out.Close()

	if ok := gocv.IMWrite(opts.out, out); !ok {
		return fmt.Errorf("failed to write %s", opts.out)
	}
	log.Printf("Wrote %s", opts.out)
	return nil
}

func writeDebug(path string, m *lane.Mask, res lane.FrameResult) error {
	dbg, err := vision.DrawWindows(m, res)
	if err != nil {
		return fmt.Errorf("debug image: %w", err)
	}
	defer dbg.Close()
	if ok := gocv.IMWrite(path, dbg); !ok {
		return fmt.Errorf("failed to write %s", path)
	}
	log.Printf("Wrote debug image %s", path)
	return nil
}

func printResult(res lane.FrameResult, m *lane.Mask) {
	fmt.Printf("Mask: %dx%d, %d lane pixels\n", m.Width, m.Height, m.Count())
	if res.Bases != nil {
		fmt.Printf("Bases: left x=%d, right x=%d\n", res.Bases.Left, res.Bases.Right)
	}
	fmt.Printf("%-6s %8s %-8s %s\n", "Side", "Pixels", "Search", "Fit")
	fmt.Printf("%-6s %8d %-8s %s\n", "left", res.Left.Pixels, res.Left.Mode, res.Left.Fit)
	fmt.Printf("%-6s %8d %-8s %s\n", "right", res.Right.Pixels, res.Right.Mode, res.Right.Fit)

	if res.Measurement == nil {
		fmt.Println("\nNo measurement: both lane lines are needed")
		return
	}
	fmt.Println()
	for _, line := range vision.MeasurementText(*res.Measurement) {
		fmt.Println(line)
	}
}
