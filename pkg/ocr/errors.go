package ocr

import "errors"

// ErrNoDetections is returned when the recognizer found no text at all.
var ErrNoDetections = errors.New("no text detected")

// ErrUnknownDetector is returned by New for an unsupported detector name.
var ErrUnknownDetector = errors.New("unknown detector")
