package threshold

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"lane-finder/internal/lane"
)

// Channels holds the individual binary layers that make up a lane mask.
type Channels struct {
	SobelX     *lane.Mask
	Magnitude  *lane.Mask
	Direction  *lane.Mask
	Saturation *lane.Mask
}

// Combine merges the layers: S | SobelX, plus magnitude pixels (optionally
// restricted by direction) when enabled.
func (c Channels) Combine(p Params) *lane.Mask {
	out := lane.NewMask(c.SobelX.Width, c.SobelX.Height)
	for i := range out.Pix {
		on := c.Saturation.Pix[i] != 0 || c.SobelX.Pix[i] != 0
		if !on && p.UseMagnitude && c.Magnitude.Pix[i] != 0 {
			on = !p.UseDirection || c.Direction.Pix[i] != 0
		}
		if on {
			out.Pix[i] = 1
		}
	}
	return out
}

// Split computes every threshold layer for img.
func Split(img image.Image, p Params) (Channels, error) {
	if err := p.Validate(); err != nil {
		return Channels{}, err
	}

	if p.BlurKernel > 1 {
		img = blur.Gaussian(img, float64(p.BlurKernel-1)/2)
	}
	gray := fieldFromGray(effect.Grayscale(img))

	gx, gy := gradients(gray, p.SobelKernel)
	sx := scaleToByte(absField(gx))
	mag := scaleToByte(magnitude(gx, gy))

	dgx, dgy := gx, gy
	if p.DirectionKernel != p.SobelKernel {
		dgx, dgy = gradients(gray, p.DirectionKernel)
	}
	dir := direction(dgx, dgy)

	return Channels{
		SobelX:     selectRange(sx, p.SobelX.Contains),
		Magnitude:  selectRange(mag, p.Magnitude.Contains),
		Direction:  selectRange(dir, p.Direction.Contains),
		Saturation: saturationMask(img, p.Saturation),
	}, nil
}

// Binarize thresholds a color road image into a lane mask.
func Binarize(img image.Image, p Params) (*lane.Mask, error) {
	ch, err := Split(img, p)
	if err != nil {
		return nil, err
	}
	return ch.Combine(p), nil
}

func selectRange(f *field, keep func(float64) bool) *lane.Mask {
	m := lane.NewMask(f.w, f.h)
	for i, v := range f.v {
		if keep(v) {
			m.Pix[i] = 1
		}
	}
	return m
}

// saturationMask thresholds the HLS saturation of every pixel, scaled to 0-255.
func saturationMask(img image.Image, r Range) *lane.Mask {
	b := img.Bounds()
	m := lane.NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c, ok := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
			if !ok {
				continue // Fully transparent
			}
			_, s, _ := c.Hsl()
			if r.ContainsOpenLow(math.Round(s * 255)) {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// Resize scales img to width x height when its size differs.
func Resize(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Linear)
}
