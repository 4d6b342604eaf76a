package triage

import (
	"strings"

	"github.com/helpdeskhq/support-triage/internal/config"
)

// AnalysisPolicy is the authoritative priority classification applied during
// full analysis. It scores the four urgency tiers and decides in a fixed
// order where urgent signals dominate raw counts elsewhere.
type AnalysisPolicy struct {
	rules config.PriorityRules
}

func NewAnalysisPolicy(rules config.PriorityRules) *AnalysisPolicy {
	return &AnalysisPolicy{rules: rules}
}

func (p *AnalysisPolicy) Determine(subject, body string) Priority {
	text := strings.ToLower(subject + " " + body)

	urgent := countHits(text, p.rules.Urgent)
	high := countHits(text, p.rules.High)
	normal := countHits(text, p.rules.Normal)

	for _, phrase := range p.rules.Critical {
		if strings.Contains(text, phrase) {
			urgent += 3
			break
		}
	}

	switch {
	case urgent >= 2:
		return PriorityUrgent
	case urgent >= 1 || high >= 2:
		return PriorityHigh
	case normal >= 1:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// IngestPolicy is the cheap pre-filter classification applied before an email
// enters the pipeline. It is tuned independently of AnalysisPolicy and the two
// intentionally disagree in marginal cases.
type IngestPolicy struct {
	rules config.IngestRules
}

func NewIngestPolicy(rules config.IngestRules) *IngestPolicy {
	return &IngestPolicy{rules: rules}
}

func (p *IngestPolicy) Determine(subject, body string) Priority {
	text := strings.ToLower(subject + " " + body)

	urgent := countHits(text, p.rules.Urgent)

	switch {
	case urgent >= 3 || containsAny(text, p.rules.Critical):
		return PriorityUrgent
	case urgent >= 2 || containsAny(text, p.rules.Escalation):
		return PriorityUrgent
	case urgent >= 1 || containsAny(text, p.rules.High):
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
