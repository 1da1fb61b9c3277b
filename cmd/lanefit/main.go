// Command lanefit runs the lane search on a bird's-eye mask image without
// OpenCV and prints the fits and measurements.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"lane-finder/internal/config"
	"lane-finder/internal/diag"
	"lane-finder/internal/lane"
	"lane-finder/internal/threshold"
	"lane-finder/internal/version"
)

func main() {
	maskPath := flag.String("mask", "", "Path to the input image (PNG, JPEG, TIFF, BMP or WebP)")
	binarize := flag.Bool("threshold", false, "Input is a color image: threshold it first")
	unwarped := flag.Bool("unwarped", false, "Input is in the camera view: apply the perspective warp first")
	plotPath := flag.String("plot", "", "Write a fit plot here (.png, .svg, .pdf)")
	configPath := flag.String("config", "", "Config file (.json)")
	asJSON := flag.Bool("json", false, "Print the frame result as JSON")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("lanefit"))
		return
	}
	if *maskPath == "" {
		fmt.Println("Usage: lanefit -mask <path> [-threshold] [-unwarped] [-plot fit.png] [-config cfg.json] [-json]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	w, h := cfg.Frame.Width, cfg.Frame.Height

	img, err := imaging.Open(*maskPath, imaging.AutoOrientation(true))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded image: %dx%d pixels\n", bounds.Dx(), bounds.Dy())
	if bounds.Dx() != w || bounds.Dy() != h {
		fmt.Printf("Resizing to %dx%d\n", w, h)
	}
	img = threshold.Resize(img, w, h)

	var mask *lane.Mask
	if *binarize {
		p := cfg.Threshold
		fmt.Printf("\nThreshold parameters:\n")
		fmt.Printf("  Blur: %d  Sobel-x: [%.0f, %.0f] (k=%d)\n", p.BlurKernel, p.SobelX.Low, p.SobelX.High, p.SobelKernel)
		fmt.Printf("  Saturation: (%.0f, %.0f]  Magnitude: %v  Direction: %v\n",
			p.Saturation.Low, p.Saturation.High, p.UseMagnitude, p.UseDirection)
		if mask, err = threshold.Binarize(img, p); err != nil {
			fmt.Fprintf(os.Stderr, "Threshold failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		mask = lane.MaskFromImage(img)
	}

	if *unwarped {
		fwd, _, err := cfg.Perspective.Transforms()
		if err == nil {
			mask, err = threshold.Warp(mask, fwd, w, h)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warp failed: %v\n", err)
			os.Exit(1)
		}
	}

	params := cfg.Search
	fmt.Printf("\nSearch parameters:\n")
	fmt.Printf("  Windows: %d  Margin: %d  Min pixels: %d  Prior margin: %.0f\n",
		params.Windows, params.Margin, params.MinPixels, params.PriorMargin)
	leftStart, split, rightEnd := params.Zones.Bounds(w)
	fmt.Printf("  Zones: left [%d, %d)  right [%d, %d)\n", leftStart, split, split, rightEnd)

	res, err := lane.Detect(mask, params, cfg.Calibration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encode failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else {
		printResult(mask, res)
	}

	if *plotPath != "" {
		if err := diag.SaveFit(*plotPath, res, w, h); err != nil {
			fmt.Fprintf(os.Stderr, "Plot failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %s\n", *plotPath)
	}
}

func printResult(mask *lane.Mask, res lane.FrameResult) {
	fmt.Printf("\nMask: %d lane pixels\n", mask.Count())
	if res.Bases != nil {
		fmt.Printf("Bases: left x=%d, right x=%d\n", res.Bases.Left, res.Bases.Right)
	}

	fmt.Printf("\n%-6s %-6s %8s %10s %s\n", "Side", "Band", "Pixels", "Window", "Recenter")
	for _, win := range res.Windows {
		fmt.Printf("%-6s %3d-%-3d %7d %5d-%-5d %v\n",
			win.Side, win.Band.Low, win.Band.High, win.Count,
			win.Rect.X, win.Rect.X+win.Rect.Width, win.Recentered)
	}

	fmt.Printf("\nLeft:  %d pixels, %s\n", res.Left.Pixels, res.Left.Fit)
	fmt.Printf("Right: %d pixels, %s\n", res.Right.Pixels, res.Right.Fit)

	m := res.Measurement
	if m == nil {
		fmt.Printf("\nNo measurement: both lane lines are needed\n")
		return
	}
	radius := func(r float64, straight bool) string {
		if straight {
			return fmt.Sprintf("straight (>= %.0f m)", r)
		}
		return fmt.Sprintf("%.1f m", r)
	}
	fmt.Printf("\nLeft radius:  %s\n", radius(m.LeftRadius, m.LeftStraight))
	fmt.Printf("Right radius: %s\n", radius(m.RightRadius, m.RightStraight))
	fmt.Printf("Offset:       %+.3f m (positive: vehicle left of lane center)\n", m.Offset)
}
