package lane

import (
	"math"

	"lane-finder/pkg/geometry"
)

// SearchAround collects the set pixels whose x lies within ±margin (inclusive)
// of the curve evaluated at the pixel's row.
func SearchAround(m *Mask, prior Polynomial, margin float64) PixelSet {
	var px PixelSet
	for y := 0; y < m.Height; y++ {
		expected := prior.At(float64(y))
		if math.IsNaN(expected) || expected+margin < 0 || expected-margin > float64(m.Width-1) {
			continue
		}
		lo := int(math.Ceil(expected - margin))
		hi := int(math.Floor(expected + margin))
		if lo < 0 {
			lo = 0
		}
		if hi >= m.Width {
			hi = m.Width - 1
		}
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := lo; x <= hi; x++ {
			if row[x] != 0 {
				px = append(px, geometry.PointInt{X: x, Y: y})
			}
		}
	}
	return px
}

// PriorResult holds the pixels found by a guided search. A side whose prior
// was absent has a nil set and Searched false.
type PriorResult struct {
	Left          PixelSet
	Right         PixelSet
	LeftSearched  bool
	RightSearched bool
}

// SearchPrior runs SearchAround for each side that has a present prior fit.
func SearchPrior(m *Mask, left, right Fit, margin float64) PriorResult {
	var res PriorResult
	if poly, ok := left.Poly(); ok {
		res.Left = SearchAround(m, poly, margin)
		res.LeftSearched = true
	}
	if poly, ok := right.Poly(); ok {
		res.Right = SearchAround(m, poly, margin)
		res.RightSearched = true
	}
	return res
}
