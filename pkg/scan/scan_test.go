package scan

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardscan/pkg/card"
	"cardscan/pkg/ocr"
)

type fakeDetector struct {
	dets []card.Detection
	err  error
}

func (f fakeDetector) Name() string { return "fake" }

func (f fakeDetector) Detect(context.Context, string) ([]card.Detection, error) {
	return f.dets, f.err
}

func box(x0, y0, x1, y1 float64) []card.Point {
	return []card.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func cardImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, imaging.Save(imaging.New(640, 480, color.NRGBA{255, 255, 255, 255}), p))
	return p
}

func TestProcess(t *testing.T) {
	det := fakeDetector{dets: []card.Detection{
		{Box: box(40, 20, 600, 110), Text: "Acme Corp", Confidence: 0.99},
		{Box: box(40, 200, 300, 240), Text: "Jane Doe", Confidence: 0.95},
		{Box: box(40, 250, 320, 280), Text: "Senior Manager", Confidence: 0.9},
		{Box: box(40, 400, 330, 430), Text: "Ph: 9876543210", Confidence: 0.9},
	}}
	svc := New(det, card.MustDefaultLexicon())
	assert.Equal(t, "fake", svc.DetectorName())

	out := filepath.Join(t.TempDir(), "annotated.png")
	res, err := svc.Process(context.Background(), cardImage(t), out)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", res.OrganizationName)
	assert.Equal(t, "Jane Doe", res.PersonName)
	assert.Equal(t, "Ph: 9876543210", res.PhoneString())
	assert.Empty(t, res.DetectorError)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	r, g, b, _ := img.At(40, 20).RGBA()
	assert.Equal(t, []uint32{0, 0xffff, 0}, []uint32{r, g, b})
}

func TestProcessDetectorFailure(t *testing.T) {
	for _, derr := range []error{ocr.ErrNoDetections, errors.New("tesseract crashed")} {
		svc := New(fakeDetector{err: derr}, card.MustDefaultLexicon())
		out := filepath.Join(t.TempDir(), "annotated.png")
		res, err := svc.Process(context.Background(), cardImage(t), out)
		require.NoError(t, err)
		assert.Equal(t, card.NotFound, res.OrganizationName)
		assert.Equal(t, card.NotFound, res.PersonName)
		assert.Equal(t, card.NotFound, res.PhoneString())
		assert.Equal(t, derr.Error(), res.DetectorError)
		_, err = os.Stat(out)
		assert.NoError(t, err)
	}
}

func TestProcessFatalErrors(t *testing.T) {
	svc := New(fakeDetector{}, card.MustDefaultLexicon())

	notImage := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(notImage, []byte("not an image"), 0o644))
	_, err := svc.Process(context.Background(), notImage, filepath.Join(t.TempDir(), "out.png"))
	assert.ErrorIs(t, err, ErrUndecodableImage)

	_, err = svc.Process(context.Background(), cardImage(t), filepath.Join(t.TempDir(), "missing", "out.png"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUndecodableImage)
}
