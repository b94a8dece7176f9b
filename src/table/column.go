package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrColumnNotFound means no header cell matched any candidate keyword set.
	ErrColumnNotFound = errors.New("column not found")
	// ErrColumnAmbiguous means two logical columns resolved to the same
	// physical column within one table.
	ErrColumnAmbiguous = errors.New("column resolves to an already matched position")
)

// Column identifies a logical column by ordered candidate keyword sets.
// A header cell matches when it contains every keyword of some candidate set,
// case-insensitively and regardless of word order. Brokers render the same
// logical field with different wording, so the keywords carry the broker's
// language.
type Column struct {
	Name       string
	candidates [][]string
}

// NewColumn declares a logical column matched by all of the given keywords.
func NewColumn(name string, keywords ...string) Column {
	return Column{Name: name, candidates: [][]string{normalizeAll(keywords)}}
}

// Or adds an alternative keyword set tried after the existing ones.
func (c Column) Or(keywords ...string) Column {
	c.candidates = append(c.candidates, normalizeAll(keywords))
	return c
}

// Match returns the position of the first header cell satisfying one of the
// candidate keyword sets.
func (c Column) Match(headers []string) (int, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeText(h)
	}
	return c.matchIn(normalized, nil)
}

// matchIn resolves against pre-normalized headers, preferring positions not
// yet taken by another logical column. When every matching position is
// already taken the resolution is ambiguous.
func (c Column) matchIn(normalized []string, used map[int]string) (int, error) {
	taken := -1
	for _, candidate := range c.candidates {
		for i, header := range normalized {
			if header == "" || !containsAll(header, candidate) {
				continue
			}
			if _, ok := used[i]; ok {
				if taken == -1 {
					taken = i
				}
				continue
			}
			return i, nil
		}
	}
	if taken != -1 {
		return -1, fmt.Errorf("%w: %q and %q at position %d", ErrColumnAmbiguous, used[taken], c.Name, taken)
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, c.Name)
}

func containsAll(header string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(header, kw) {
			return false
		}
	}
	return true
}

// normalizeText lowercases the text and collapses punctuation and whitespace
// runs into single spaces, so "Дата /время" and "дата время" compare equal.
func normalizeText(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 'а' && r <= 'я', r == 'ё', r == '%':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func normalizeAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = normalizeText(kw)
	}
	return out
}
