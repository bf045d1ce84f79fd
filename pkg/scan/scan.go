// Package scan runs the full card pipeline for one image: recognition,
// field extraction and annotation.
package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"cardscan/pkg/annotate"
	"cardscan/pkg/card"
	"cardscan/pkg/ocr"
)

// ErrUndecodableImage is returned when the input is not a readable image.
var ErrUndecodableImage = errors.New("undecodable image")

// Result is the outcome of one pipeline run.
type Result struct {
	card.Extraction
	// DetectorError is set when recognition failed and the fields fell back
	// to Not found.
	DetectorError string `json:"detector_error,omitempty"`
}

// Service is safe for concurrent use as long as its Detector is; every run
// works on its own data and the lexicon is read-only.
type Service struct {
	detector ocr.Detector
	lex      *card.Lexicon
	log      *zap.SugaredLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) { s.log = l }
}

func New(detector ocr.Detector, lex *card.Lexicon, opts ...Option) *Service {
	s := &Service{detector: detector, lex: lex, log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DetectorName names the underlying recognizer.
func (s *Service) DetectorName() string {
	return s.detector.Name()
}

// Process extracts fields from the image at srcPath and writes the annotated
// copy to annotatedPath. Recognition failures degrade to an empty result;
// only an unreadable input or a failed write is returned as an error.
func (s *Service) Process(ctx context.Context, srcPath, annotatedPath string) (*Result, error) {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}

	res := &Result{}
	dets, err := s.detector.Detect(ctx, srcPath)
	if err != nil {
		if errors.Is(err, ocr.ErrNoDetections) {
			s.log.Infof("no text found in %s", srcPath)
		} else {
			s.log.Warnf("detector %s failed on %s: %v", s.detector.Name(), srcPath, err)
		}
		res.DetectorError = err.Error()
		dets = nil
	}

	res.Extraction = s.lex.Extract(dets)
	if len(res.Skipped) > 0 {
		s.log.Warnf("skipped %d detections with malformed boxes in %s", len(res.Skipped), srcPath)
	}
	s.log.Infof("extracted %s: detections=%d org=%q person=%q phones=%d",
		srcPath, len(dets), res.OrganizationName, res.PersonName, len(res.PhoneNumbers))

	if err := annotate.Save(annotate.Draw(img, dets), annotatedPath); err != nil {
		return nil, fmt.Errorf("save annotated image: %w", err)
	}
	return res, nil
}
