package triage

import (
	"strings"

	"github.com/helpdeskhq/support-triage/internal/config"
)

// KnowledgeMatcher scores emails against the knowledge base categories.
type KnowledgeMatcher struct {
	entries     []config.KnowledgeEntry
	defaultName string
}

func NewKnowledgeMatcher(entries []config.KnowledgeEntry, defaultName string) *KnowledgeMatcher {
	return &KnowledgeMatcher{entries: entries, defaultName: defaultName}
}

// Match returns the category with the strictly highest keyword hit count.
// Ties keep the first-declared category. An all-zero score falls back to the
// default category with relevance 0.
func (m *KnowledgeMatcher) Match(subject, body string) KnowledgeMatch {
	text := strings.ToLower(subject + " " + body)

	best := -1
	bestScore := 0
	for i, e := range m.entries {
		score := countHits(text, e.Keywords)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best >= 0 {
		e := m.entries[best]
		return KnowledgeMatch{
			Category:  e.Name,
			Relevance: bestScore,
			Solution:  e.Solution,
			Escalate:  e.Escalate,
		}
	}

	for _, e := range m.entries {
		if e.Name == m.defaultName {
			return KnowledgeMatch{Category: e.Name, Solution: e.Solution, Escalate: e.Escalate}
		}
	}
	return KnowledgeMatch{Category: m.defaultName}
}
