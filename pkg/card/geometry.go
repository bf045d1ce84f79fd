package card

import (
	"fmt"
	"math"
	"sort"
)

// GeometryRecord is the measured extent of one detection.
type GeometryRecord struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	TopY           float64 `json:"top_y"`
	DetectionIndex int     `json:"index"`
}

// Area is Width*Height.
func (g GeometryRecord) Area() float64 {
	return g.Width * g.Height
}

// Measure computes the geometry of dets[i]: width is the horizontal extent of
// the top edge, height the vertical extent of the left edge.
func Measure(i int, d Detection) (GeometryRecord, error) {
	if !d.Valid() {
		return GeometryRecord{}, fmt.Errorf("detection %d: %w", i, ErrMalformedBox)
	}
	tl, tr, bl := d.Box[0], d.Box[1], d.Box[3]
	return GeometryRecord{
		Width:          math.Abs(tr.X - tl.X),
		Height:         math.Abs(bl.Y - tl.Y),
		TopY:           tl.Y,
		DetectionIndex: i,
	}, nil
}

// Rank measures every detection and orders the records by area descending,
// then top edge ascending. Equal keys keep detection order. Detections whose
// box cannot be measured are left out and returned as skipped.
func Rank(dets []Detection) (ranked []GeometryRecord, skipped []int) {
	ranked = make([]GeometryRecord, 0, len(dets))
	for i, d := range dets {
		g, err := Measure(i, d)
		if err != nil {
			skipped = append(skipped, i)
			continue
		}
		ranked = append(ranked, g)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		aa, ab := ranked[a].Area(), ranked[b].Area()
		if aa != ab {
			return aa > ab
		}
		return ranked[a].TopY < ranked[b].TopY
	})
	return ranked, skipped
}
