package vision

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"lane-finder/internal/threshold"
)

// Binarize thresholds a BGR road frame into a CV_8UC1 mask (0 or 255):
// HLS saturation | scaled Sobel-x, plus gradient magnitude (and direction)
// when enabled in p.
func Binarize(src gocv.Mat, p threshold.Params) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.Mat{}, fmt.Errorf("binarize: empty frame")
	}
	if err := p.Validate(); err != nil {
		return gocv.Mat{}, err
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if p.BlurKernel > 1 {
		gocv.GaussianBlur(src, &blurred, image.Point{X: p.BlurKernel, Y: p.BlurKernel}, 0, 0, gocv.BorderDefault)
	} else {
		src.CopyTo(&blurred)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(blurred, &gray, gocv.ColorBGRToGray)

	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(gray, &gx, gocv.MatTypeCV64F, 1, 0, p.SobelKernel, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gy, gocv.MatTypeCV64F, 0, 1, p.SobelKernel, 1, 0, gocv.BorderDefault)

	combined := saturationMask(blurred, p.Saturation)

	sx := sobelXMask(gx, p.SobelX)
	defer sx.Close()
	gocv.BitwiseOr(combined, sx, &combined)

	if p.UseMagnitude {
		mag := magnitudeMask(gx, gy, p.Magnitude)
		defer mag.Close()
		if p.UseDirection {
			dir := directionMask(gray, p.DirectionKernel, p.Direction)
			defer dir.Close()
			gocv.BitwiseAnd(mag, dir, &mag)
		}
		gocv.BitwiseOr(combined, mag, &combined)
	}

	return combined, nil
}

// sobelXMask selects pixels whose |d/dx|, scaled so the frame maximum is 255,
// falls inside r.
func sobelXMask(gx gocv.Mat, r threshold.Range) gocv.Mat {
	minVal, maxVal, _, _ := gocv.MinMaxLoc(gx)
	peak := math.Max(math.Abs(float64(minVal)), math.Abs(float64(maxVal)))

	scaled := gocv.NewMat()
	defer scaled.Close()
	if peak > 0 {
		gocv.ConvertScaleAbs(gx, &scaled, 255/peak, 0)
	} else {
		gocv.ConvertScaleAbs(gx, &scaled, 0, 0)
	}
	return inRange(scaled, r)
}

// magnitudeMask selects pixels whose gradient magnitude, scaled to 0-255,
// falls inside r.
func magnitudeMask(gx, gy gocv.Mat, r threshold.Range) gocv.Mat {
	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(gx, gy, &mag)

	_, maxVal, _, _ := gocv.MinMaxLoc(mag)
	scale := 0.0
	if maxVal > 0 {
		scale = 255 / float64(maxVal)
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	mag.ConvertToWithParams(&scaled, gocv.MatTypeCV8U, float32(scale), 0)
	return inRange(scaled, r)
}

// directionMask selects pixels whose gradient direction atan2(|gy|, |gx|),
// computed with its own kernel size, falls inside r.
func directionMask(gray gocv.Mat, ksize int, r threshold.Range) gocv.Mat {
	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(gray, &gx, gocv.MatTypeCV64F, 1, 0, ksize, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gy, gocv.MatTypeCV64F, 0, 1, ksize, 1, 0, gocv.BorderDefault)

	zero := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), gray.Rows(), gray.Cols(), gocv.MatTypeCV64F)
	defer zero.Close()
	absX := gocv.NewMat()
	defer absX.Close()
	absY := gocv.NewMat()
	defer absY.Close()
	gocv.AbsDiff(gx, zero, &absX)
	gocv.AbsDiff(gy, zero, &absY)

	angle := gocv.NewMat()
	defer angle.Close()
	gocv.Phase(absX, absY, &angle, false)
	return inRange(angle, r)
}

// saturationMask selects pixels whose HLS S channel lies in (Low, High].
func saturationMask(bgr gocv.Mat, r threshold.Range) gocv.Mat {
	hls := gocv.NewMat()
	defer hls.Close()
	gocv.CvtColor(bgr, &hls, gocv.ColorBGRToHLS)

	channels := gocv.Split(hls)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	// S is 8-bit, so (Low, High] is [floor(Low)+1, High].
	return inRange(channels[2], threshold.Range{Low: math.Floor(r.Low) + 1, High: r.High})
}

func inRange(src gocv.Mat, r threshold.Range) gocv.Mat {
	dst := gocv.NewMat()
	gocv.InRangeWithScalar(src, gocv.NewScalar(r.Low, 0, 0, 0), gocv.NewScalar(r.High, 0, 0, 0), &dst)
	return dst
}
