package card

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLex = MustDefaultLexicon()

// rect builds an axis-aligned quad from its corners.
func rect(x0, y0, x1, y1 float64) []Point {
	return []Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func det(text string, x0, y0, x1, y1 float64) Detection {
	return Detection{Box: rect(x0, y0, x1, y1), Text: text, Confidence: 0.9}
}

func sampleCard() []Detection {
	return []Detection{
		det("Acme Corp", 40, 20, 600, 110),
		det("Jane Doe", 40, 200, 300, 240),
		det("Senior Manager", 40, 250, 320, 280),
		det("Ph: 9876543210", 40, 400, 330, 430),
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100.0, Similarity("telangana", "telangana"))
	assert.Equal(t, 100.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.InDelta(t, (1-3.0/7.0)*100, Similarity("kitten", "sitting"), 1e-9)

	pairs := [][2]string{{"kitten", "sitting"}, {"goa", "jane doe"}, {"hyderabad", "hydrabad"}, {"", "uk"}}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestIsPhone(t *testing.T) {
	cases := map[string]bool{
		"+91 98765 43210 ph": true,
		"Ph: 9876543210":     true,
		"(040) 2345-6789":    true,
		"Floor 3":            false,
		"Room 1234567":       false, // seven digits is not enough
		"":                   false,
		"Jane Doe":           false,
	}
	for text, want := range cases {
		assert.Equal(t, want, testLex.IsPhone(text), "%q", text)
	}
}

func TestIsNoise(t *testing.T) {
	noisy := []string{
		"Hyderabad, Telangana 500081",
		"12 MG Road",
		"jane.doe@acme.com",
		"Senior Manager",
		"Telangan",
		"PIN 560001",
	}
	for _, text := range noisy {
		assert.True(t, testLex.IsNoise(text), "%q", text)
	}
	clean := []string{"", "   ", "Jane Doe", "Acme Corp"}
	for _, text := range clean {
		assert.False(t, testLex.IsNoise(text), "%q", text)
	}
}

func TestClassifyKeepsPhoneAndNoiseIndependent(t *testing.T) {
	dets := []Detection{
		det("Ph: 9876543210", 0, 0, 10, 10),
		det("Floor 3", 0, 20, 10, 30),
		det("Globex Solutions Pvt Ltd", 0, 40, 10, 50),
	}
	cls := testLex.Classify(dets)

	// the ten-digit number also contains a six-digit run
	assert.True(t, cls.Phone.Has(0))
	assert.True(t, cls.Noise.Has(0))
	assert.False(t, cls.Phone.Has(1))
	assert.True(t, cls.Noise.Has(1))
	assert.True(t, cls.Company.Has(2))
	assert.Equal(t, []int{0}, cls.Phone.Sorted())
}

func TestMeasure(t *testing.T) {
	g, err := Measure(3, det("x", 10, 20, 110, 70))
	require.NoError(t, err)
	assert.Equal(t, GeometryRecord{Width: 100, Height: 50, TopY: 20, DetectionIndex: 3}, g)

	_, err = Measure(0, Detection{Box: []Point{{0, 0}, {1, 0}, {1, 1}}, Text: "short"})
	assert.ErrorIs(t, err, ErrMalformedBox)

	_, err = Measure(0, Detection{Box: []Point{{math.NaN(), 0}, {1, 0}, {1, 1}, {0, 1}}})
	assert.ErrorIs(t, err, ErrMalformedBox)
}

func TestRankOrdersByAreaThenTop(t *testing.T) {
	dets := []Detection{
		det("small", 0, 0, 10, 10),
		det("big low", 0, 300, 100, 350),
		det("big high", 0, 100, 100, 150),
		det("twin a", 0, 500, 20, 510),
		det("twin b", 0, 500, 20, 510),
		{Box: []Point{{0, 0}}, Text: "broken"},
	}
	ranked, skipped := Rank(dets)

	var order []int
	for _, g := range ranked {
		order = append(order, g.DetectionIndex)
	}
	assert.Equal(t, []int{2, 1, 3, 4, 0}, order)
	assert.Equal(t, []int{5}, skipped)

	again, _ := Rank(dets)
	assert.Equal(t, ranked, again)
}

func TestExtractEmpty(t *testing.T) {
	ex := testLex.Extract(nil)
	assert.Equal(t, NotFound, ex.OrganizationName)
	assert.Equal(t, NotFound, ex.PersonName)
	assert.Empty(t, ex.PhoneNumbers)
	assert.Equal(t, NotFound, ex.PhoneString())
	assert.Empty(t, ex.Fragments)
}

func TestExtractBusinessCard(t *testing.T) {
	ex := testLex.Extract(sampleCard())
	assert.Equal(t, "Acme Corp", ex.OrganizationName)
	assert.Equal(t, "Jane Doe", ex.PersonName)
	assert.Equal(t, []string{"Ph: 9876543210"}, ex.PhoneNumbers)
	assert.Equal(t, "Ph: 9876543210", ex.PhoneString())

	require.Len(t, ex.Fragments, 4)
	assert.Empty(t, ex.Fragments[1].Tags)
	assert.Equal(t, []string{"noise"}, ex.Fragments[2].Tags)
	assert.Equal(t, []string{"phone", "noise"}, ex.Fragments[3].Tags)
}

func TestExtractIgnoresInputOrder(t *testing.T) {
	base := testLex.Extract(sampleCard())
	c := sampleCard()
	reordered := []Detection{c[3], c[1], c[0], c[2]}
	ex := testLex.Extract(reordered)
	assert.Equal(t, base.RoleAssignment, ex.RoleAssignment)
}

func TestOrganizationIgnoresNoiseTag(t *testing.T) {
	dets := []Detection{
		det("Skyline Towers", 0, 0, 800, 150),
		det("Ravi Kumar", 0, 200, 200, 230),
		det("Sales Executive", 0, 240, 200, 270),
	}
	ex := testLex.Extract(dets)
	cls := testLex.Classify(dets)
	require.True(t, cls.Noise.Has(0))
	assert.Equal(t, "Skyline Towers", ex.OrganizationName)
	assert.Equal(t, "Ravi Kumar", ex.PersonName)
}

func TestPersonNameRules(t *testing.T) {
	t.Run("no designation", func(t *testing.T) {
		ex := testLex.Extract([]Detection{
			det("Acme Corp", 0, 0, 500, 100),
			det("Jane Doe", 0, 150, 200, 180),
		})
		assert.Equal(t, "Acme Corp", ex.OrganizationName)
		assert.Equal(t, NotFound, ex.PersonName)
	})

	t.Run("email and noise above anchor are skipped", func(t *testing.T) {
		ex := testLex.Extract([]Detection{
			det("Acme Corp", 0, 0, 500, 100),
			det("Jane Doe", 0, 120, 200, 150),
			det("jane@acme.io", 0, 160, 200, 180),
			det("12 MG Road", 0, 185, 200, 195),
			det("Director", 0, 200, 200, 230),
		})
		assert.Equal(t, "Jane Doe", ex.PersonName)
	})

	t.Run("anchor is the largest designation, not the topmost", func(t *testing.T) {
		ex := testLex.Extract([]Detection{
			det("Acme Corp", 0, 0, 500, 100),
			det("Ravi Kumar", 0, 110, 200, 130),
			det("Analyst", 0, 135, 100, 145),
			det("Jane Doe", 0, 200, 200, 230),
			det("Senior Manager", 0, 240, 400, 290),
		})
		assert.Equal(t, "Jane Doe", ex.PersonName)
	})

	t.Run("candidate level with anchor is excluded", func(t *testing.T) {
		ex := testLex.Extract([]Detection{
			det("Acme Corp", 0, 0, 500, 100),
			det("Jane Doe", 0, 150, 200, 180),
			det("Ravi Kumar", 300, 200, 450, 230),
			det("Director", 0, 200, 200, 230),
		})
		assert.Equal(t, "Jane Doe", ex.PersonName)
	})

	t.Run("equal gaps keep rank order", func(t *testing.T) {
		ex := testLex.Extract([]Detection{
			det("Acme Corp", 0, 0, 500, 100),
			det("Jane Doe", 0, 150, 200, 180),
			det("Ravi Kumar", 300, 150, 600, 190),
			det("Director", 0, 200, 200, 230),
		})
		assert.Equal(t, "Ravi Kumar", ex.PersonName)
	})

	t.Run("nothing above anchor", func(t *testing.T) {
		ex := testLex.Extract([]Detection{
			det("Consultant", 0, 0, 500, 100),
			det("Jane Doe", 0, 150, 200, 180),
		})
		assert.Equal(t, "Consultant", ex.OrganizationName)
		assert.Equal(t, NotFound, ex.PersonName)
	})
}

func TestMalformedBoxStillClassified(t *testing.T) {
	dets := sampleCard()
	dets = append(dets, Detection{Box: []Point{{1, 1}}, Text: "+1 (555) 010-9999"})
	ex := testLex.Extract(dets)
	assert.Equal(t, []string{"Ph: 9876543210", "+1 (555) 010-9999"}, ex.PhoneNumbers)
	assert.Equal(t, []int{4}, ex.Skipped)
	assert.Equal(t, "Jane Doe", ex.PersonName)
}

func TestLoadLexicon(t *testing.T) {
	lex, err := LoadLexicon("")
	require.NoError(t, err)
	assert.True(t, lex.IsDesignation("Chief Analyst"))
	assert.True(t, lex.IsDesignation("APPIIENITIE"))

	path := filepath.Join(t.TempDir(), "lex.yaml")
	doc := `
keywords: ["lane"]
places: ["Atlantis"]
designations: ["Captain"]
company_suffixes: ["gmbh"]
patterns:
  phone: '(?:\d\s*){7,}'
  digit_run: '\d{5}'
  email: '\S+@\S+'
place_similarity: 80
min_phone_digits: 6
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	custom, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.True(t, custom.IsDesignation("CAPTAIN"))
	assert.False(t, custom.IsDesignation("Manager"))
	assert.True(t, custom.IsNoise("Memory Lane"))
	assert.True(t, custom.IsNoise("Atlantic"))
	assert.True(t, custom.HasCompanySuffix("Muster GmbH"))

	_, err = ParseLexicon([]byte("keywords: [a]\n"))
	assert.Error(t, err)
	_, err = LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
