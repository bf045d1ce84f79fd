package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Preprocess controls the cleanup applied before recognition.
type Preprocess struct {
	// MinHeight upscales images shorter than this; 0 disables.
	MinHeight int
	// Contrast is passed to imaging.AdjustContrast (-100..100).
	Contrast float64
	// Sharpen is the sigma for imaging.Sharpen; 0 disables.
	Sharpen float64
	// Threshold binarizes the image when non-zero.
	Threshold uint8
}

// DefaultPreprocess suits photographed cards: small photos are upscaled and
// contrast lifted, but the image is not binarized since card backgrounds are
// often coloured.
func DefaultPreprocess() Preprocess {
	return Preprocess{MinHeight: 900, Contrast: 15, Sharpen: 0.7}
}

// apply returns the cleaned image and the factor by which it was scaled
// relative to src.
func (p Preprocess) apply(src image.Image) (image.Image, float64) {
	img := image.Image(imaging.Grayscale(src))
	if p.Contrast != 0 {
		img = imaging.AdjustContrast(img, p.Contrast)
	}
	if p.Sharpen > 0 {
		img = imaging.Sharpen(img, p.Sharpen)
	}
	scale := 1.0
	if h := src.Bounds().Dy(); p.MinHeight > 0 && h > 0 && h < p.MinHeight {
		scale = float64(p.MinHeight) / float64(h)
		img = imaging.Resize(img, 0, p.MinHeight, imaging.Lanczos)
	}
	if p.Threshold > 0 {
		img = binarize(img, p.Threshold)
	}
	return img, scale
}

// binarize performs a simple global threshold on a grayscale image.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
