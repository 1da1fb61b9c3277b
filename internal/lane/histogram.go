package lane

// Bases are the starting columns for the sliding-window search.
type Bases struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// ColumnHistogram counts set pixels per column over the bottom half of the mask
// (rows [Height/2, Height)).
func ColumnHistogram(m *Mask) []int {
	hist := make([]int, m.Width)
	for y := m.Height / 2; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v != 0 {
				hist[x]++
			}
		}
	}
	return hist
}

// LocateBases picks the histogram peak inside each zone.
//
// Ties resolve to the leftmost column, so an empty zone (or an empty mask)
// returns the zone's start column. Callers should treat such a result as
// "no lane signal" rather than a detection.
func LocateBases(m *Mask, z Zones) Bases {
	hist := ColumnHistogram(m)
	leftStart, split, rightEnd := z.Bounds(m.Width)
	return Bases{
		Left:  argmax(hist, leftStart, split),
		Right: argmax(hist, split, rightEnd),
	}
}

// argmax returns the index of the first maximum in hist[start:end], or start
// when the range is empty.
func argmax(hist []int, start, end int) int {
	if start < 0 {
		start = 0
	}
	if end > len(hist) {
		end = len(hist)
	}
	best := start
	for i := start; i < end; i++ {
		if hist[i] > hist[best] {
			best = i
		}
	}
	return best
}
