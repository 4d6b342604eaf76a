package ingest

import (
	"strings"

	"github.com/helpdeskhq/support-triage/internal/triage"
)

// SupportFilter drops emails that show no support-related keyword in their
// subject or body.
type SupportFilter struct {
	keywords []string
}

func NewSupportFilter(keywords []string) *SupportFilter {
	return &SupportFilter{keywords: keywords}
}

func (f *SupportFilter) IsSupport(email triage.Email) bool {
	subject := strings.ToLower(email.Subject)
	body := strings.ToLower(email.Body)
	for _, k := range f.keywords {
		if strings.Contains(subject, k) || strings.Contains(body, k) {
			return true
		}
	}
	return false
}

// Filter keeps only support emails, preserving input order.
func (f *SupportFilter) Filter(emails []triage.Email) []triage.Email {
	out := make([]triage.Email, 0, len(emails))
	for _, e := range emails {
		if f.IsSupport(e) {
			out = append(out, e)
		}
	}
	return out
}
