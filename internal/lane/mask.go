package lane

import (
	"image"
	"image/color"

	"lane-finder/pkg/geometry"
)

// Mask is a single-channel binary image. Each entry of Pix is exactly 0 or 1.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8 // Row-major, len == Width*Height
}

// NewMask creates an all-zero mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// In reports whether (x, y) lies inside the mask.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At reports whether the pixel at (x, y) is set. Out-of-range pixels are unset.
func (m *Mask) At(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set sets or clears the pixel at (x, y). Out-of-range writes are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if !m.In(x, y) {
		return
	}
	var v uint8
	if on {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// NonZero returns all set pixels in row-major order.
func (m *Mask) NonZero() []geometry.PointInt {
	var pts []geometry.PointInt
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v != 0 {
				pts = append(pts, geometry.PointInt{X: x, Y: y})
			}
		}
	}
	return pts
}

// rowIndex returns, for every row, the ascending x positions of set pixels.
func (m *Mask) rowIndex() [][]int {
	rows := make([][]int, m.Height)
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v != 0 {
				rows[y] = append(rows[y], x)
			}
		}
	}
	return rows
}

// ToGray renders the mask as an 8-bit image with set pixels at 255.
func (m *Mask) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v != 0 {
			img.Pix[i] = 255
		}
	}
	return img
}

// MaskFromImage binarizes any image: a pixel is set when its gray level is nonzero.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < m.Height; y++ {
			off := (y+b.Min.Y-g.Rect.Min.Y)*g.Stride + (b.Min.X - g.Rect.Min.X)
			for x := 0; x < m.Width; x++ {
				if g.Pix[off+x] != 0 {
					m.Pix[y*m.Width+x] = 1
				}
			}
		}
		return m
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			gray := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if gray.Y != 0 {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}
