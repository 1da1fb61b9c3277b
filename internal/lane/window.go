package lane

import (
	"sort"

	"lane-finder/pkg/geometry"
)

// Side identifies a lane boundary.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// PixelSet is the collection of lane pixels found for one side.
type PixelSet []geometry.PointInt

// Coords splits the set into parallel x and y slices for fitting.
func (s PixelSet) Coords() (xs, ys []float64) {
	xs = make([]float64, len(s))
	ys = make([]float64, len(s))
	for i, p := range s {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}
	return xs, ys
}

// Band is a horizontal slice of the mask covering rows [Low, High).
type Band struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Bands partitions [0, height) into count bands, ordered bottom to top.
// Every band is height/count rows tall except the top one, which also absorbs
// the remainder. Returns nil when count <= 0.
func Bands(height, count int) []Band {
	if count <= 0 {
		return nil
	}
	h := height / count
	bands := make([]Band, count)
	for i := 0; i < count; i++ {
		low := height - (i+1)*h
		if i == count-1 {
			low = 0
		}
		bands[i] = Band{Low: low, High: height - i*h}
	}
	return bands
}

// Window records one search box of a sliding-window pass.
type Window struct {
	Side       Side             `json:"side"`
	Band       Band             `json:"band"`
	Rect       geometry.RectInt `json:"rect"`
	Count      int              `json:"count"`      // Pixels collected in this box
	Recentered bool             `json:"recentered"` // Next band moved to the mean x of this box
}

// WindowResult holds the pixels collected by a sliding-window pass.
type WindowResult struct {
	Left    PixelSet
	Right   PixelSet
	Windows []Window // In scan order: bottom band first, left before right
}

// sideCursor is the per-side state carried from band to band.
type sideCursor struct {
	side   Side
	center int
	pixels PixelSet
}

// SearchWindows scans the mask bottom to top in p.Windows bands, following each
// lane from its base column.
func SearchWindows(m *Mask, bases Bases, p Params) WindowResult {
	rows := m.rowIndex()
	left := &sideCursor{side: SideLeft, center: bases.Left}
	right := &sideCursor{side: SideRight, center: bases.Right}

	var res WindowResult
	for _, band := range Bands(m.Height, p.Windows) {
		res.Windows = append(res.Windows,
			left.scan(rows, band, p),
			right.scan(rows, band, p))
	}
	res.Left = left.pixels
	res.Right = right.pixels
	return res
}

// scan collects the pixels in the cursor's window for one band and recenters
// the cursor when enough were found.
func (c *sideCursor) scan(rows [][]int, band Band, p Params) Window {
	lo := c.center - p.Margin
	hi := c.center + p.Margin

	found := 0
	sumX := 0
	for y := band.Low; y < band.High; y++ {
		xs := rows[y]
		for i := sort.SearchInts(xs, lo); i < len(xs) && xs[i] < hi; i++ {
			c.pixels = append(c.pixels, geometry.PointInt{X: xs[i], Y: y})
			sumX += xs[i]
			found++
		}
	}

	w := Window{
		Side:  c.side,
		Band:  band,
		Rect:  geometry.RectInt{X: lo, Y: band.Low, Width: hi - lo, Height: band.High - band.Low},
		Count: found,
	}
	if found > p.MinPixels {
		c.center = sumX / found
		w.Recentered = true
	}
	return w
}
