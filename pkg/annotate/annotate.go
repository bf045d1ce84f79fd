// Package annotate draws recognized text boxes onto card images.
package annotate

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"cardscan/pkg/card"
)

// Green is the box and label colour.
var Green = color.NRGBA{R: 0, G: 255, B: 0, A: 255}

const (
	thickness   = 2
	labelOffset = 10
)

// Draw returns a copy of src with each detection's box outlined from its
// top-left to bottom-right corner and its text written above it. Detections
// with malformed boxes or lying entirely off the image are not drawn.
func Draw(src image.Image, dets []card.Detection) *image.NRGBA {
	dst := imaging.Clone(src)
	b := dst.Bounds()
	for _, d := range dets {
		if !d.Valid() {
			continue
		}
		tl, br := d.Box[0], d.Box[2]
		if offImage(b, tl, br) {
			continue
		}
		// coordinates are clipped so the cost is bounded by the image size
		x0, y0 := clamp(tl.X, b.Min.X, b.Max.X), clamp(tl.Y, b.Min.Y, b.Max.Y)
		x1, y1 := clamp(br.X, b.Min.X, b.Max.X), clamp(br.Y, b.Min.Y, b.Max.Y)
		rectangle(dst, x0, y0, x1, y1)
		label(dst, x0, y0-labelOffset, d.Text)
	}
	return dst
}

// Save writes img to path, picking the encoder from the extension.
func Save(img image.Image, path string) error {
	return imaging.Save(img, path)
}

// OutputName returns the file name to save an annotated copy of name under:
// name itself when Save has an encoder for its extension, otherwise name
// with ".png" appended.
func OutputName(name string) string {
	if _, err := imaging.FormatFromFilename(name); err == nil {
		return name
	}
	return name + ".png"
}

func offImage(b image.Rectangle, p, q card.Point) bool {
	minX, maxX := math.Min(p.X, q.X), math.Max(p.X, q.X)
	minY, maxY := math.Min(p.Y, q.Y), math.Max(p.Y, q.Y)
	return maxX < float64(b.Min.X-thickness) || minX >= float64(b.Max.X+thickness) ||
		maxY < float64(b.Min.Y-thickness) || minY >= float64(b.Max.Y+thickness)
}

// clamp converts v to a pixel coordinate within [lo-thickness, hi+thickness].
func clamp(v float64, lo, hi int) int {
	lo, hi = lo-thickness, hi+thickness
	switch {
	case v < float64(lo):
		return lo
	case v > float64(hi):
		return hi
	}
	return int(v)
}

func rectangle(dst *image.NRGBA, x0, y0, x1, y1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for t := 0; t < thickness; t++ {
		for x := x0 - t; x <= x1+t; x++ {
			dst.Set(x, y0-t, Green)
			dst.Set(x, y1+t, Green)
		}
		for y := y0 - t; y <= y1+t; y++ {
			dst.Set(x0-t, y, Green)
			dst.Set(x1+t, y, Green)
		}
	}
}

func label(dst *image.NRGBA, x, baseline int, text string) {
	if baseline < basicfont.Face7x13.Ascent {
		baseline = basicfont.Face7x13.Ascent
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(Green),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Max(0, float64(x))), baseline),
	}
	d.DrawString(text)
}
