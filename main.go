// Package main provides the lane-finder command: lane detection, curvature and
// vehicle offset for dashcam images and videos.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"lane-finder/internal/config"
	"lane-finder/internal/version"
	"lane-finder/internal/vision"
)

const appTitle = "lane-finder"

type options struct {
	configPath string
	camera     string
	image      string
	video      string
	out        string
	debug      string
	plot       string
	plots      string
	report     string
	workers    int
	verbose    bool
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var opts options
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.StringVar(&opts.configPath, "config", "", "Config file (.json); defaults are used when empty")
	flag.StringVar(&opts.camera, "calibration", "", "Camera calibration file (.json); overrides the config")
	flag.StringVar(&opts.image, "image", "", "Input image")
	flag.StringVar(&opts.video, "video", "", "Input video")
	flag.StringVar(&opts.out, "out", "", "Output image or video")
	flag.StringVar(&opts.debug, "debug", "", "Image mode: write the search-window debug image here")
	flag.StringVar(&opts.plot, "plot", "", "Image mode: write a fit plot here (.png, .svg, .pdf)")
	flag.StringVar(&opts.plots, "plots", "", "Video mode: write radius/offset time series into this directory")
	flag.StringVar(&opts.report, "report", "", "Video mode: write a JSON report here")
	flag.IntVar(&opts.workers, "workers", 0, "Video mode: frames preprocessed concurrently (0 uses the config)")
	flag.BoolVar(&opts.verbose, "v", false, "Log per-frame search fallbacks")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(appTitle))
		return
	}

	if (opts.image == "") == (opts.video == "") || opts.out == "" {
		fmt.Println("Usage: lane-finder [-config cfg.json] [-calibration cal.json] -image in.jpg -out out.jpg")
		fmt.Println("       lane-finder [-config cfg.json] [-calibration cal.json] -video in.mp4 -out out.avi [-workers 4] [-report report.json]")
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	camera, err := openCamera(cfg, opts)
	if err != nil {
		return err
	}
	if camera != nil {
		defer camera.Close()
	}

	pre, err := vision.NewPreprocessor(cfg, camera)
	if err != nil {
		return fmt.Errorf("perspective: %w", err)
	}
	defer pre.Close()

	if opts.image != "" {
		return runImage(cfg, pre, opts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runVideo(ctx, cfg, pre, opts)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		log.Printf("No config given, using defaults")
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.Printf("Loaded config %s", path)
	return cfg, nil
}

// openCamera loads the calibration named on the command line, or else the one
// referenced by the config. Running without one skips undistortion.
func openCamera(cfg *config.Config, opts options) (*vision.Camera, error) {
	path := opts.camera
	if path == "" {
		path = cfg.CameraFile(opts.configPath)
	}
	if path == "" {
		log.Printf("No camera calibration, frames are not undistorted")
		return nil, nil
	}
	camera, err := vision.LoadCamera(path)
	if err != nil {
		return nil, fmt.Errorf("camera calibration: %w", err)
	}
	log.Printf("Loaded camera calibration %s", path)
	return camera, nil
}

// isImagePath reports whether OpenCV can write path as a still image.
func isImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
