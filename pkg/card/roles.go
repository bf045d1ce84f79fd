package card

// AssignRoles picks the organization, person and phone fields.
//
// The organization is the most prominent ranked detection whatever its tags.
// The person is the non-noise, non-email detection sitting closest above the
// most prominent designation line. Phones keep detection order.
func (l *Lexicon) AssignRoles(dets []Detection, ranked []GeometryRecord, cls Classification) RoleAssignment {
	out := RoleAssignment{
		PersonName:       NotFound,
		OrganizationName: NotFound,
		PhoneNumbers:     []string{},
	}
	for _, i := range cls.Phone.Sorted() {
		out.PhoneNumbers = append(out.PhoneNumbers, dets[i].Text)
	}
	if len(ranked) == 0 {
		return out
	}
	out.OrganizationName = dets[ranked[0].DetectionIndex].Text

	anchorY, ok := l.designationAnchor(dets, ranked, cls)
	if !ok {
		return out
	}
	best := -1
	var bestGap float64
	for _, g := range ranked {
		if g.TopY >= anchorY {
			continue
		}
		idx := g.DetectionIndex
		if cls.Noise.Has(idx) || l.IsEmail(dets[idx].Text) {
			continue
		}
		gap := anchorY - g.TopY
		if best == -1 || gap < bestGap {
			best, bestGap = idx, gap
		}
	}
	if best != -1 {
		out.PersonName = dets[best].Text
	}
	return out
}

// designationAnchor returns the top edge of the first ranked noise detection
// that names a job title.
func (l *Lexicon) designationAnchor(dets []Detection, ranked []GeometryRecord, cls Classification) (float64, bool) {
	for _, g := range ranked {
		if cls.Noise.Has(g.DetectionIndex) && l.IsDesignation(dets[g.DetectionIndex].Text) {
			return g.TopY, true
		}
	}
	return 0, false
}
