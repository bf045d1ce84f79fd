package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cardscan/pkg/card"
)

// Remote posts images to an external recognition service, typically a
// Python sidecar wrapping EasyOCR, and reads back quads with text.
//
// Expected response:
//
//	{"detections":[{"box":[[x,y],[x,y],[x,y],[x,y]],"text":"...","confidence":0.93}]}
type Remote struct {
	URL    string
	Client *http.Client
}

// NewRemote returns a remote detector. A zero timeout means no timeout.
func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (r *Remote) Name() string { return "remote" }

type remoteDetection struct {
	Box        json.RawMessage `json:"box"`
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
}

func (r *Remote) Detect(ctx context.Context, imagePath string) ([]card.Detection, error) {
	data, err := os.ReadFile(filepath.Clean(imagePath))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recognizer returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result struct {
		Detections []remoteDetection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Detections) == 0 {
		return nil, ErrNoDetections
	}
	out := make([]card.Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		out = append(out, card.Detection{
			Box:        parseBox(d.Box),
			Text:       normalizeText(d.Text),
			Confidence: d.Confidence,
		})
	}
	return out, nil
}

// parseBox decodes a list of [x, y] pairs. Anything unreadable yields a nil
// box so the fragment keeps its text but is skipped for geometry.
func parseBox(raw json.RawMessage) []card.Point {
	var pairs [][]float64
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil
	}
	pts := make([]card.Point, 0, len(pairs))
	for _, p := range pairs {
		if len(p) < 2 {
			return nil
		}
		pts = append(pts, card.Point{X: p[0], Y: p[1]})
	}
	return pts
}
