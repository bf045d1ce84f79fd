package card

import (
	"errors"
	"math"
	"strings"
)

// NotFound is reported for any field the heuristics could not resolve.
const NotFound = "Not found"

// ErrMalformedBox is returned when a detection's box cannot be measured.
var ErrMalformedBox = errors.New("malformed bounding box")

// Point is a vertex of a detection quadrilateral in source-image pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is one recognized text fragment. Box is ordered top-left,
// top-right, bottom-right, bottom-left. A detection is identified by its
// position in the slice handed to Extract.
type Detection struct {
	Box        []Point `json:"box"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Valid reports whether the box has four finite vertices.
func (d Detection) Valid() bool {
	if len(d.Box) < 4 {
		return false
	}
	for _, p := range d.Box[:4] {
		if !finite(p.X) || !finite(p.Y) {
			return false
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// RoleAssignment is the extracted contact information for one card.
type RoleAssignment struct {
	PersonName       string   `json:"person_name"`
	OrganizationName string   `json:"organization_name"`
	PhoneNumbers     []string `json:"phone_numbers"`
}

// PhoneString joins the phone numbers the way they are shown to users.
func (r RoleAssignment) PhoneString() string {
	if len(r.PhoneNumbers) == 0 {
		return NotFound
	}
	return strings.Join(r.PhoneNumbers, ", ")
}
