package lane

import "math"

const (
	testWidth  = 1280
	testHeight = 720
)

// drawLane sets a band of pixels halfWidth either side of the curve on every row.
func drawLane(m *Mask, p Polynomial, halfWidth int) {
	for y := 0; y < m.Height; y++ {
		cx := int(math.Round(p.At(float64(y))))
		for x := cx - halfWidth; x <= cx+halfWidth; x++ {
			m.Set(x, y, true)
		}
	}
}

var (
	testLeftLane  = Polynomial{A: 1e-4, B: -0.05, C: 210}
	testRightLane = Polynomial{A: 1e-4, B: -0.05, C: 760}
)

func twoLaneMask() *Mask {
	m := NewMask(testWidth, testHeight)
	drawLane(m, testLeftLane, 2)
	drawLane(m, testRightLane, 2)
	return m
}
