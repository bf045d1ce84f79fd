package ocr

import (
	"image"
	"strings"

	"cardscan/pkg/card"
)

// normalizeText collapses whitespace and newlines inside a recognized line.
func normalizeText(t string) string {
	t = strings.ReplaceAll(t, "\n", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}

// quad converts a rectangle in preprocessed-image space back to a source
// image quadrilateral (top-left, top-right, bottom-right, bottom-left).
func quad(r image.Rectangle, scale float64) []card.Point {
	if scale <= 0 {
		scale = 1
	}
	x0, y0 := float64(r.Min.X)/scale, float64(r.Min.Y)/scale
	x1, y1 := float64(r.Max.X)/scale, float64(r.Max.Y)/scale
	return []card.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}
