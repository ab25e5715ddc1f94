// Package detector decides whether an inbound message looks like a scam.
package detector

import "strings"

// Classifier flags a message as a scam when any vocabulary term occurs in it.
// Matching is a case-insensitive substring test: "URGENTLY" matches "urgent".
type Classifier struct {
	vocabulary []string
}

// NewClassifier builds a classifier over the given scam vocabulary.
func NewClassifier(vocabulary []string) *Classifier {
	terms := make([]string, 0, len(vocabulary))
	for _, v := range vocabulary {
		if term := strings.ToLower(strings.TrimSpace(v)); term != "" {
			terms = append(terms, term)
		}
	}
	return &Classifier{vocabulary: terms}
}

// IsScam reports whether text contains at least one vocabulary term.
func (c *Classifier) IsScam(text string) bool {
	in := strings.ToLower(text)
	for _, term := range c.vocabulary {
		if strings.Contains(in, term) {
			return true
		}
	}
	return false
}

// Matches returns every vocabulary term found in text, in vocabulary order.
func (c *Classifier) Matches(text string) []string {
	in := strings.ToLower(text)
	var hits []string
	for _, term := range c.vocabulary {
		if strings.Contains(in, term) {
			hits = append(hits, term)
		}
	}
	return hits
}
