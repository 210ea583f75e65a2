package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/review-cli/internal/model"
)

// MatchMode controls how a label is compared with cell text.
type MatchMode string

const (
	// MatchSubstring matches when the cell contains the label anywhere.
	MatchSubstring MatchMode = "substring"
	// MatchExact matches only when the whole cell equals the label.
	MatchExact MatchMode = "exact"
)

// ParseMatchMode converts a config string into a MatchMode. Empty means substring.
func ParseMatchMode(s string) (MatchMode, bool) {
	switch MatchMode(model.Fold(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, true
	case MatchExact:
		return MatchExact, true
	default:
		return "", false
	}
}

// Matcher compares labels with cell text case-insensitively.
// A Matcher holds a cases.Caser and must not be shared between goroutines.
type Matcher struct {
	mode  MatchMode
	lower cases.Caser
}

// NewMatcher returns a Matcher for mode.
func NewMatcher(mode MatchMode) *Matcher {
	if mode == "" {
		mode = MatchSubstring
	}
	return &Matcher{mode: mode, lower: cases.Lower(language.Und)}
}

func (m *Matcher) fold(s string) string {
	return m.lower.String(s)
}

// match reports whether cell matches the already folded label.
func (m *Matcher) match(cell, label string) bool {
	c := m.fold(cell)
	if m.mode == MatchExact {
		return c == label
	}
	return strings.Contains(c, label)
}

// Locate searches one table for f's label and returns the associated value.
// The first matching cell ends the search even when it yields no value: a
// label in the last cell of a row (adjacent) or on the last row (below)
// returns ok=false.
func Locate(t model.Table, f model.Field, m *Matcher) (string, bool) {
	label := m.fold(f.Name)
	for r, row := range t.Rows {
		for c, cell := range row {
			if !m.match(cell, label) {
				continue
			}
			switch f.Method {
			case model.MethodAdjacent:
				return t.Cell(r, c+1)
			case model.MethodBelow:
				return t.Cell(r+1, c)
			default:
				return "", false
			}
		}
	}
	return "", false
}
