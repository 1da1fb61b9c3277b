package threshold

import (
	"image"
	"math"
)

// field is a float image, row-major.
type field struct {
	w, h int
	v    []float64
}

func newField(w, h int) *field {
	return &field{w: w, h: h, v: make([]float64, w*h)}
}

func fieldFromGray(g *image.Gray) *field {
	b := g.Bounds()
	f := newField(b.Dx(), b.Dy())
	for y := 0; y < f.h; y++ {
		off := y * g.Stride
		for x := 0; x < f.w; x++ {
			f.v[y*f.w+x] = float64(g.Pix[off+x])
		}
	}
	return f
}

// max returns the largest value, or 0 for an empty field.
func (f *field) max() float64 {
	m := 0.0
	for _, v := range f.v {
		if v > m {
			m = v
		}
	}
	return m
}

// sobelKernels returns the separable first-derivative and smoothing kernels
// of size k, the same coefficients OpenCV uses.
func sobelKernels(k int) (deriv, smooth []float64) {
	smooth = binomial(k - 1)
	base := binomial(k - 3)
	deriv = make([]float64, k)
	for i, c := range base {
		deriv[i] -= c
		deriv[i+2] += c
	}
	return deriv, smooth
}

// binomial returns row n of Pascal's triangle.
func binomial(n int) []float64 {
	row := []float64{1}
	for i := 0; i < n; i++ {
		next := make([]float64, len(row)+1)
		for j, c := range row {
			next[j] += c
			next[j+1] += c
		}
		row = next
	}
	return row
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// without repeating the edge sample.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// convolveRows applies k along x.
func (f *field) convolveRows(k []float64) *field {
	out := newField(f.w, f.h)
	r := len(k) / 2
	for y := 0; y < f.h; y++ {
		row := f.v[y*f.w : (y+1)*f.w]
		for x := 0; x < f.w; x++ {
			var sum float64
			for i, c := range k {
				sum += c * row[reflect101(x+i-r, f.w)]
			}
			out.v[y*f.w+x] = sum
		}
	}
	return out
}

// convolveCols applies k along y.
func (f *field) convolveCols(k []float64) *field {
	out := newField(f.w, f.h)
	r := len(k) / 2
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			var sum float64
			for i, c := range k {
				sum += c * f.v[reflect101(y+i-r, f.h)*f.w+x]
			}
			out.v[y*f.w+x] = sum
		}
	}
	return out
}

// gradients returns the x and y Sobel derivatives of f with kernel size k.
func gradients(f *field, k int) (gx, gy *field) {
	deriv, smooth := sobelKernels(k)
	gx = f.convolveRows(deriv).convolveCols(smooth)
	gy = f.convolveRows(smooth).convolveCols(deriv)
	return gx, gy
}

// scaleToByte maps values onto 0-255 relative to the field maximum and
// truncates, the way an 8-bit conversion would.
func scaleToByte(f *field) *field {
	out := newField(f.w, f.h)
	m := f.max()
	if m == 0 {
		return out
	}
	for i, v := range f.v {
		out.v[i] = math.Floor(255 * v / m)
	}
	return out
}

func absField(f *field) *field {
	out := newField(f.w, f.h)
	for i, v := range f.v {
		out.v[i] = math.Abs(v)
	}
	return out
}

func magnitude(gx, gy *field) *field {
	out := newField(gx.w, gx.h)
	for i := range out.v {
		out.v[i] = math.Hypot(gx.v[i], gy.v[i])
	}
	return out
}

// direction returns atan2(|gy|, |gx|) in [0, pi/2].
func direction(gx, gy *field) *field {
	out := newField(gx.w, gx.h)
	for i := range out.v {
		out.v[i] = math.Atan2(math.Abs(gy.v[i]), math.Abs(gx.v[i]))
	}
	return out
}
