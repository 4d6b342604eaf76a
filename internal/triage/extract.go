package triage

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/helpdeskhq/support-triage/internal/config"
)

var numberPattern = regexp.MustCompile(`\d+`)

// Extractor derives structured features from an email's text and sender.
type Extractor struct {
	rules config.ExtractionRules
}

func NewExtractor(rules config.ExtractionRules) *Extractor {
	return &Extractor{rules: rules}
}

func (x *Extractor) Extract(email Email) ExtractedInfo {
	return ExtractedInfo{
		RequestType:         x.requestType(email.Subject, email.Body),
		Complexity:          x.complexity(email.Body),
		Emotions:            x.emotions(email.Body),
		CustomerTier:        x.customerTier(email.Sender),
		EstimatedResolution: x.resolutionEstimate(email.Subject, email.Body),
		CustomerDomain:      senderDomain(email.Sender),
		QuestionCount:       strings.Count(email.Body, "?"),
		ExclamationCount:    strings.Count(email.Body, "!"),
		CapsRatio:           capsRatio(email.Body),
	}
}

// requestType picks the first matching category in declaration order.
func (x *Extractor) requestType(subject, body string) string {
	text := strings.ToLower(subject + " " + body)
	for _, rt := range x.rules.RequestTypes {
		if containsAny(text, rt.Keywords) {
			return rt.Type
		}
	}
	return x.rules.DefaultRequestType
}

// complexity scores 3..10 from five boolean factors worth 2 points each.
func (x *Extractor) complexity(body string) int {
	factors := 0
	if len(strings.Fields(body)) > 100 {
		factors++
	}
	if strings.Count(body, "?") > 2 {
		factors++
	}
	if len(numberPattern.FindAllString(body, -1)) > 3 {
		factors++
	}
	if containsAny(strings.ToLower(body), x.rules.TechnicalTerms) {
		factors++
	}
	if strings.Count(body, "\n") > 5 {
		factors++
	}
	score := factors*2 + 3
	if score > 10 {
		score = 10
	}
	return score
}

func (x *Extractor) resolutionEstimate(subject, body string) string {
	text := strings.ToLower(subject + " " + body)
	for _, r := range x.rules.Resolutions {
		if containsAny(text, r.Keywords) {
			return r.Estimate
		}
	}
	return x.rules.DefaultResolution
}

// emotions counts per-emotion keyword hits. The dominant emotion is the
// highest count with first-declared winning ties; all-zero reports neutral.
func (x *Extractor) emotions(body string) Emotions {
	text := strings.ToLower(body)

	scores := make(map[string]int, len(x.rules.Emotions))
	dominant := ""
	dominantCount := 0
	for _, e := range x.rules.Emotions {
		n := countHits(text, e.Keywords)
		scores[e.Name] = n
		if dominant == "" || n > dominantCount {
			dominant = e.Name
			dominantCount = n
		}
	}

	out := Emotions{Scores: scores, Dominant: "neutral"}
	if dominantCount > 0 {
		out.Dominant = dominant
		out.Intensity = dominantCount * 3
		if out.Intensity > 10 {
			out.Intensity = 10
		}
	}
	return out
}

func (x *Extractor) customerTier(sender string) string {
	domain := strings.ToLower(senderDomain(sender))
	switch {
	case domain == "":
		return "standard"
	case containsExact(x.rules.EnterpriseDomains, domain):
		return "enterprise"
	case containsAny(domain, x.rules.StartupIndicators):
		return "startup"
	case strings.HasSuffix(domain, ".edu"):
		return "education"
	case strings.HasSuffix(domain, ".gov"):
		return "government"
	default:
		return "standard"
	}
}

func senderDomain(sender string) string {
	i := strings.LastIndex(sender, "@")
	if i < 0 || i == len(sender)-1 {
		return ""
	}
	return sender[i+1:]
}

func containsExact(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func capsRatio(body string) float64 {
	if body == "" {
		return 0
	}
	upper := 0
	for _, r := range body {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(len([]rune(body)))
}
