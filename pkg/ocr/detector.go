package ocr

import (
	"context"
	"fmt"
	"time"

	"cardscan/pkg/card"
)

// Detector finds text fragments in an image file. Detections come back in
// recognizer order, which callers use as the detection identity.
type Detector interface {
	Name() string
	Detect(ctx context.Context, imagePath string) ([]card.Detection, error)
}

// Config selects and configures a Detector.
type Config struct {
	Name     string // "tesseract" (default) or "remote"
	Language string
	URL      string
	Timeout  time.Duration
}

// New creates a detector based on cfg.Name.
func New(cfg Config) (Detector, error) {
	switch cfg.Name {
	case "tesseract", "":
		return NewTesseract(cfg.Language), nil
	case "remote":
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote detector: url is required")
		}
		return NewRemote(cfg.URL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, cfg.Name)
	}
}
