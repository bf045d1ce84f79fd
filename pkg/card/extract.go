package card

// Fragment is a detection as reported back to callers, with its tags.
type Fragment struct {
	Index      int      `json:"index"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Box        []Point  `json:"box"`
	Tags       []string `json:"tags"`
}

// Extraction is everything one pass over a card's detections produced.
type Extraction struct {
	RoleAssignment
	Fragments []Fragment       `json:"fragments"`
	Ranked    []GeometryRecord `json:"-"`
	// Skipped lists detections left out of ranking for malformed boxes.
	Skipped []int `json:"-"`
}

// Extract runs classification, ranking and role assignment over dets.
// dets is not modified.
func (l *Lexicon) Extract(dets []Detection) Extraction {
	cls := l.Classify(dets)
	ranked, skipped := Rank(dets)
	return Extraction{
		RoleAssignment: l.AssignRoles(dets, ranked, cls),
		Fragments:      fragments(dets, cls),
		Ranked:         ranked,
		Skipped:        skipped,
	}
}

func fragments(dets []Detection, cls Classification) []Fragment {
	out := make([]Fragment, 0, len(dets))
	for i, d := range dets {
		tags := []string{}
		if cls.Phone.Has(i) {
			tags = append(tags, "phone")
		}
		if cls.Noise.Has(i) {
			tags = append(tags, "noise")
		}
		if cls.Company.Has(i) {
			tags = append(tags, "company")
		}
		out = append(out, Fragment{Index: i, Text: d.Text, Confidence: d.Confidence, Box: d.Box, Tags: tags})
	}
	return out
}
