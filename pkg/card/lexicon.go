package card

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// lexiconFile is the on-disk shape of a lexicon document.
type lexiconFile struct {
	Keywords        []string `yaml:"keywords"`
	Places          []string `yaml:"places"`
	Designations    []string `yaml:"designations"`
	CompanySuffixes []string `yaml:"company_suffixes"`
	Patterns        struct {
		Phone    string `yaml:"phone"`
		DigitRun string `yaml:"digit_run"`
		Email    string `yaml:"email"`
	} `yaml:"patterns"`
	PlaceSimilarity float64 `yaml:"place_similarity"`
	MinPhoneDigits  int     `yaml:"min_phone_digits"`
}

// Lexicon holds the keyword tables and compiled patterns the classifier
// works from. It is built once at startup and shared read-only.
type Lexicon struct {
	keywords        []string
	places          []string
	designations    []string
	companySuffixes []string

	phoneRE    *regexp.Regexp
	digitRunRE *regexp.Regexp
	emailRE    *regexp.Regexp

	placeSimilarity float64
	minPhoneDigits  int
}

// DefaultLexicon parses the embedded lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return ParseLexicon(defaultLexiconYAML)
}

// MustDefaultLexicon is DefaultLexicon for package-level setup and tests.
func MustDefaultLexicon() *Lexicon {
	lex, err := DefaultLexicon()
	if err != nil {
		panic(err)
	}
	return lex
}

// LoadLexicon reads a lexicon document from path. An empty path yields the
// embedded default.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// ParseLexicon builds a Lexicon from YAML. Keyword-style lists are lowered
// here so matching only lowers the fragment text.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if f.Patterns.Phone == "" || f.Patterns.DigitRun == "" || f.Patterns.Email == "" {
		return nil, fmt.Errorf("parse lexicon: phone, digit_run and email patterns are required")
	}
	lex := &Lexicon{
		keywords:        lowerAll(f.Keywords),
		places:          lowerAll(f.Places),
		designations:    lowerAll(f.Designations),
		companySuffixes: lowerAll(f.CompanySuffixes),
		placeSimilarity: f.PlaceSimilarity,
		minPhoneDigits:  f.MinPhoneDigits,
	}
	var err error
	if lex.phoneRE, err = regexp.Compile(f.Patterns.Phone); err != nil {
		return nil, fmt.Errorf("compile phone pattern: %w", err)
	}
	if lex.digitRunRE, err = regexp.Compile(f.Patterns.DigitRun); err != nil {
		return nil, fmt.Errorf("compile digit_run pattern: %w", err)
	}
	if lex.emailRE, err = regexp.Compile(f.Patterns.Email); err != nil {
		return nil, fmt.Errorf("compile email pattern: %w", err)
	}
	return lex, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out
}

// containsAny reports whether lowered text contains any of the terms.
func containsAny(lowered string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

// IsDesignation reports whether text mentions a job title.
func (l *Lexicon) IsDesignation(text string) bool {
	return containsAny(strings.ToLower(text), l.designations)
}

// IsEmail reports whether text contains an email address.
func (l *Lexicon) IsEmail(text string) bool {
	return l.emailRE.MatchString(strings.ToLower(text))
}

// HasCompanySuffix reports whether text carries a company-form keyword such
// as "ltd" or "solutions".
func (l *Lexicon) HasCompanySuffix(text string) bool {
	return containsAny(strings.ToLower(text), l.companySuffixes)
}
