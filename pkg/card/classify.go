package card

import (
	"sort"
	"strings"
	"unicode"
)

// IndexSet is a set of detection indices.
type IndexSet map[int]struct{}

// Has reports whether i is in the set.
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the members in ascending order.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Classification is the outcome of the fragment classifier. Phone and Noise
// are built by independent passes, so a detection may be in both.
// Company marks company-form keywords and never affects role assignment.
type Classification struct {
	Phone   IndexSet
	Noise   IndexSet
	Company IndexSet
}

// Classify tags every detection.
func (l *Lexicon) Classify(dets []Detection) Classification {
	c := Classification{Phone: IndexSet{}, Noise: IndexSet{}, Company: IndexSet{}}
	for i, d := range dets {
		if l.IsPhone(d.Text) {
			c.Phone[i] = struct{}{}
		}
	}
	for i, d := range dets {
		if l.IsNoise(d.Text) {
			c.Noise[i] = struct{}{}
		}
		if strings.TrimSpace(d.Text) != "" && l.HasCompanySuffix(d.Text) {
			c.Company[i] = struct{}{}
		}
	}
	return c
}

// IsPhone reports whether text looks like a phone number: it must match the
// phone pattern and carry more than the minimum digit count, which keeps
// short numerics such as floor numbers out.
func (l *Lexicon) IsPhone(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if !l.phoneRE.MatchString(text) {
		return false
	}
	return countDigits(text) > l.minPhoneDigits
}

// IsNoise reports whether text is an address fragment, a PIN/ZIP code, an
// email or a job title, or is close enough to a known place name.
// The checks are OR'd; the fuzzy scan runs last since it is the slowest.
func (l *Lexicon) IsNoise(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	low := strings.ToLower(text)
	switch {
	case containsAny(low, l.keywords):
		return true
	case l.digitRunRE.MatchString(text):
		return true
	case l.emailRE.MatchString(low):
		return true
	case containsAny(low, l.designations):
		return true
	}
	return l.nearPlace(low)
}

func (l *Lexicon) nearPlace(low string) bool {
	for _, p := range l.places {
		if Similarity(p, low) > l.placeSimilarity {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
