package lane

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Polynomial is a lane boundary x = A·y² + B·y + C.
type Polynomial struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// At evaluates the curve at row y.
func (p Polynomial) At(y float64) float64 {
	return (p.A*y+p.B)*y + p.C
}

// Shift returns the curve translated horizontally by dx.
func (p Polynomial) Shift(dx float64) Polynomial {
	p.C += dx
	return p
}

// Sample evaluates the curve at every row in [0, height).
func (p Polynomial) Sample(height int) []float64 {
	xs := make([]float64, height)
	for y := range xs {
		xs[y] = p.At(float64(y))
	}
	return xs
}

// Fit is an optional Polynomial. The zero value is absent, so a side that
// produced no pixels can never be mistaken for a curve at x = 0.
type Fit struct {
	poly  Polynomial
	valid bool
}

// Present wraps a polynomial as a present fit.
func Present(p Polynomial) Fit {
	return Fit{poly: p, valid: true}
}

// Absent returns the "no detection" fit.
func Absent() Fit {
	return Fit{}
}

// Poly returns the polynomial and whether the fit is present.
func (f Fit) Poly() (Polynomial, bool) {
	return f.poly, f.valid
}

// Valid reports whether the fit is present.
func (f Fit) Valid() bool {
	return f.valid
}

func (f Fit) String() string {
	if !f.valid {
		return "absent"
	}
	return fmt.Sprintf("x = %.6g·y² + %.6g·y + %.6g", f.poly.A, f.poly.B, f.poly.C)
}

// MarshalJSON encodes a present fit as [a, b, c] and an absent fit as null.
func (f Fit) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return []byte("null"), nil
	}
	return json.Marshal([3]float64{f.poly.A, f.poly.B, f.poly.C})
}

// UnmarshalJSON accepts the format written by MarshalJSON.
func (f *Fit) UnmarshalJSON(data []byte) error {
	var coeffs *[3]float64
	if err := json.Unmarshal(data, &coeffs); err != nil {
		return fmt.Errorf("decode fit: %w", err)
	}
	if coeffs == nil {
		*f = Absent()
		return nil
	}
	*f = Present(Polynomial{A: coeffs[0], B: coeffs[1], C: coeffs[2]})
	return nil
}

// FitPixels fits x as a quadratic function of y through the pixel set.
//
// An empty set yields an absent fit. When the pixels span fewer than three
// distinct rows the degree is lowered (one row gives a vertical line through
// the mean x, two rows a straight line) and the unused coefficients are zero.
func FitPixels(px PixelSet) Fit {
	if len(px) == 0 {
		return Absent()
	}

	xs, ys := px.Coords()
	degree := distinctRows(px) - 1
	if degree > 2 {
		degree = 2
	}

	coeffs, err := PolyFit(ys, xs, degree)
	if err != nil {
		return Absent()
	}

	var p Polynomial
	switch degree {
	case 2:
		p = Polynomial{A: coeffs[0], B: coeffs[1], C: coeffs[2]}
	case 1:
		p = Polynomial{B: coeffs[0], C: coeffs[1]}
	default:
		p = Polynomial{C: coeffs[0]}
	}
	return Present(p)
}

func distinctRows(px PixelSet) int {
	seen := make(map[int]struct{}, 3)
	for _, p := range px {
		seen[p.Y] = struct{}{}
		if len(seen) >= 3 {
			break
		}
	}
	return len(seen)
}

// PolyFit solves the least-squares polynomial fit of v as a function of u.
// Coefficients are returned highest power first.
//
// The Vandermonde columns are scaled to unit norm before the QR solve, which
// keeps the system well conditioned for pixel-sized inputs (y² ~ 5e5).
func PolyFit(u, v []float64, degree int) ([]float64, error) {
	if len(u) != len(v) {
		return nil, fmt.Errorf("point count mismatch: %d vs %d", len(u), len(v))
	}
	if degree < 0 {
		return nil, fmt.Errorf("invalid degree %d", degree)
	}
	n := len(u)
	cols := degree + 1
	if n < cols {
		return nil, fmt.Errorf("need at least %d points for degree %d, got %d", cols, degree, n)
	}

	// Build the Vandermonde matrix, highest power in column 0
	A := mat.NewDense(n, cols, nil)
	for i, x := range u {
		pow := 1.0
		for j := cols - 1; j >= 0; j-- {
			A.Set(i, j, pow)
			pow *= x
		}
	}

	scale := make([]float64, cols)
	col := make([]float64, n)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, A)
		s := floats.Norm(col, 2)
		if s == 0 {
			s = 1
		}
		scale[j] = s
		for i := 0; i < n; i++ {
			A.Set(i, j, A.At(i, j)/s)
		}
	}

	B := mat.NewVecDense(n, append([]float64(nil), v...))

	// Solve using QR decomposition
	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return nil, fmt.Errorf("least squares solve: %w", err)
	}

	coeffs := make([]float64, cols)
	for j := range coeffs {
		coeffs[j] = params.AtVec(j) / scale[j]
	}
	return coeffs, nil
}
