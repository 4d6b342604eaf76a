package respond

import (
	"math"
	"strings"

	"github.com/helpdeskhq/support-triage/internal/triage"
)

// QualityMetrics scores a reply on four axes plus a weighted overall score,
// each in [0, 1].
type QualityMetrics struct {
	WordCount        int
	Professionalism  float64
	Empathy          float64
	Completeness     float64
	ContextRelevance float64
	Overall          float64
}

// Quality scores a generated reply against the context it was written for.
func (r *Responder) Quality(g Generated) QualityMetrics {
	m := QualityMetrics{
		WordCount:        len(strings.Fields(g.Text)),
		Professionalism:  professionalism(g.Text),
		Empathy:          empathy(g.Text, g.Context.Sentiment),
		Completeness:     completeness(g.Text),
		ContextRelevance: contextRelevance(g.Text, g.Context),
	}
	m.Overall = round2(m.Professionalism*0.3 + m.Empathy*0.25 + m.Completeness*0.25 + m.ContextRelevance*0.2)
	return m
}

func professionalism(text string) float64 {
	lower := strings.ToLower(text)
	indicators := []bool{
		strings.Contains(lower, "dear"),
		strings.Contains(lower, "thank you"),
		strings.Contains(lower, "sincerely") || strings.Contains(lower, "regards"),
		strings.Contains(lower, "please"),
		!containsAny(lower, []string{"hey", "hi there", "yo"}),
	}
	return fraction(indicators)
}

func empathy(text, sentiment string) float64 {
	lower := strings.ToLower(text)

	var indicators []bool
	switch sentiment {
	case triage.SentimentNegative:
		indicators = []bool{
			strings.Contains(lower, "apologize") || strings.Contains(lower, "sorry"),
			strings.Contains(lower, "understand"),
			strings.Contains(lower, "frustration") || strings.Contains(lower, "inconvenience"),
			strings.Contains(lower, "resolve") || strings.Contains(lower, "fix"),
		}
	case triage.SentimentPositive:
		indicators = []bool{
			strings.Contains(lower, "thank"),
			strings.Contains(lower, "appreciate"),
			strings.Contains(lower, "pleased") || strings.Contains(lower, "happy"),
			strings.Contains(lower, "continue") || strings.Contains(lower, "support"),
		}
	default:
		indicators = []bool{
			strings.Contains(lower, "help"),
			strings.Contains(lower, "assist"),
			strings.Contains(lower, "support"),
		}
	}
	return fraction(indicators)
}

func completeness(text string) float64 {
	lower := strings.ToLower(text)
	indicators := []bool{
		len(strings.Fields(text)) >= 50,
		strings.Count(text, "?") <= 2,
		strings.Contains(lower, "next steps") || strings.Contains(lower, "will"),
		strings.Contains(lower, "contact") || strings.Contains(lower, "reach out"),
	}
	return fraction(indicators)
}

// contextRelevance starts from 0.5 and adds bonuses for priority- and
// tier-appropriate phrasing, capped at 1.0.
func contextRelevance(text string, rc Context) float64 {
	lower := strings.ToLower(text)
	score := 0.5

	switch {
	case rc.Priority == triage.PriorityUrgent && (strings.Contains(lower, "immediate") || strings.Contains(lower, "priority")):
		score += 0.2
	case rc.Priority == triage.PriorityNormal && !strings.Contains(lower, "urgent"):
		score += 0.1
	}

	switch {
	case rc.CustomerTier == "enterprise" && (strings.Contains(lower, "account manager") || strings.Contains(lower, "enterprise")):
		score += 0.2
	case rc.CustomerTier == "startup" && strings.Contains(lower, "growth"):
		score += 0.1
	}

	return math.Min(1.0, score)
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func fraction(indicators []bool) float64 {
	n := 0
	for _, ok := range indicators {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(indicators))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
