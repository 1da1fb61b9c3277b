package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 projective transform stored row-major with H[8] == 1.
type Homography [9]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// PerspectiveTransform computes the homography mapping each src corner onto
// the matching dst corner.
func PerspectiveTransform(src, dst Quad) (Homography, error) {
	if src.Area() < 1e-9 || dst.Area() < 1e-9 {
		return Homography{}, fmt.Errorf("degenerate quad: src area %g, dst area %g", src.Area(), dst.Area())
	}

	// Eight equations, eight unknowns (h22 fixed at 1)
	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		A.SetRow(i*2, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		b.SetVec(i*2, u)

		A.SetRow(i*2+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(i*2+1, v)
	}

	var qr mat.QR
	qr.Factorize(A)

	var h mat.VecDense
	if err := qr.SolveVecTo(&h, false, b); err != nil {
		return Homography{}, fmt.Errorf("solve homography: %w", err)
	}

	var H Homography
	for i := 0; i < 8; i++ {
		H[i] = h.AtVec(i)
	}
	H[8] = 1
	return H, nil
}

// Apply maps a point through the transform. Points on the line at infinity map
// to NaN.
func (h Homography) Apply(p Point2D) Point2D {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if math.Abs(w) < 1e-12 {
		return Point2D{X: math.NaN(), Y: math.NaN()}
	}
	return Point2D{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// Inverse returns the transform mapping dst back to src.
func (h Homography) Inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("invert homography: %w", err)
	}
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	if math.Abs(out[8]) > 1e-12 {
		s := out[8]
		for i := range out {
			out[i] /= s
		}
	}
	return out, nil
}

// Rows returns the transform as three rows, the layout OpenCV matrices expect.
func (h Homography) Rows() [3][3]float64 {
	return [3][3]float64{
		{h[0], h[1], h[2]},
		{h[3], h[4], h[5]},
		{h[6], h[7], h[8]},
	}
}
