package ocr

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"cardscan/pkg/card"
)

// Tesseract recognizes text lines with the local Tesseract engine.
type Tesseract struct {
	Language    string
	PageSegMode gosseract.PageSegMode
	Prep        Preprocess
}

// NewTesseract returns a line-level Tesseract detector. Sparse-text
// segmentation fits cards, where lines are scattered rather than in blocks.
func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{Language: lang, PageSegMode: gosseract.PSM_SPARSE_TEXT, Prep: DefaultPreprocess()}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Detect runs one recognition pass. The call itself cannot be interrupted;
// ctx is only checked before starting.
func (t *Tesseract) Detect(ctx context.Context, imagePath string) ([]card.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	img, scale := t.Prep.apply(src)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode preprocessed image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetPageSegMode(t.PageSegMode); err != nil {
		return nil, fmt.Errorf("set page seg mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("ocr error: %w", err)
	}

	out := make([]card.Detection, 0, len(boxes))
	for _, b := range boxes {
		text := normalizeText(b.Word)
		if text == "" {
			continue
		}
		out = append(out, card.Detection{
			Box:        quad(b.Box, scale),
			Text:       text,
			Confidence: b.Confidence / 100,
		})
	}
	if len(out) == 0 {
		return nil, ErrNoDetections
	}
	return out, nil
}
