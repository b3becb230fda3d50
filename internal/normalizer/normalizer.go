package normalizer

import (
	"strings"
	"unicode"

	"doccluster/internal/domain"
)

var _ domain.Normalizer = (*Normalizer)(nil)

// Normalizer lower-cases text, strips everything except ASCII letters,
// digits and whitespace, splits on whitespace and drops stop words.
type Normalizer struct {
	stopwords map[string]struct{}
}

// New creates a normalizer using the built-in English stop words plus extra.
func New(extra ...string) *Normalizer {
	sw := defaultStopwords()
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			sw[w] = struct{}{}
		}
	}
	return &Normalizer{stopwords: sw}
}

// Normalize returns the surviving tokens of raw in input order.
// Duplicates are kept; empty input yields an empty slice.
func (n *Normalizer) Normalize(raw string) []string {
	lower := strings.ToLower(raw)
	// Removed characters are dropped, not replaced, so "e-mail" becomes "email".
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return r
		}
		return -1
	}, lower)
	fields := strings.Fields(cleaned)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if _, isStop := n.stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// NormalizeAll normalizes each raw document in order.
func (n *Normalizer) NormalizeAll(raw []string) [][]string {
	out := make([][]string, len(raw))
	for i, r := range raw {
		out[i] = n.Normalize(r)
	}
	return out
}
