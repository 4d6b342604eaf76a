package triage_test

import (
	"context"
	"testing"

	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/triage"
)

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	resolver := triage.NewSentimentResolver(cfg.Sentiment, triage.ResolverOptions{}, nil)
	a := triage.NewAnalyzer(cfg, resolver, nil)

	email := triage.Email{
		ID:      "e-1",
		Sender:  "casey@bigco.com",
		Subject: "URGENT: cannot login",
		Body:    "I am frustrated, the login page shows an error and my password does not work. I cannot access my account. Please fix this immediately.",
	}

	got := a.Analyze(context.Background(), email)
	if got.Err != nil {
		t.Fatalf("unexpected analysis error: %v", got.Err)
	}
	if got.Sentiment.Label != triage.SentimentNegative {
		t.Fatalf("sentiment = %q, want Negative", got.Sentiment.Label)
	}
	if got.Priority != triage.PriorityUrgent {
		t.Fatalf("priority = %s, want Urgent", got.Priority)
	}
	if got.Knowledge.Category != "login_issues" {
		t.Fatalf("knowledge category = %q, want login_issues", got.Knowledge.Category)
	}
	if got.Extracted.RequestType != "bug_report" {
		t.Fatalf("request type = %q, want bug_report", got.Extracted.RequestType)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}

	// Keyword sentiment confidence 0.8, knowledge relevance saturates at 3:
	// 0.6*0.8 + 0.4*1.0
	if got.Confidence != 0.88 {
		t.Fatalf("confidence = %v, want 0.88", got.Confidence)
	}
}

func TestAnalyzer_ConfidenceScalesWithRelevance(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	resolver := triage.NewSentimentResolver(cfg.Sentiment, triage.ResolverOptions{}, nil)
	a := triage.NewAnalyzer(cfg, resolver, nil)

	// One billing keyword, neutral keyword tie: 0.6*0.6 + 0.4*(1/3).
	got := a.Analyze(context.Background(), triage.Email{
		ID:      "e-2",
		Sender:  "sam@example.com",
		Subject: "Invoice",
		Body:    "Where can I find my invoice?",
	})
	if got.Confidence != 0.493 {
		t.Fatalf("confidence = %v, want 0.493", got.Confidence)
	}
}

func TestAnalyzer_NeverPanics(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	resolver := triage.NewSentimentResolver(cfg.Sentiment, triage.ResolverOptions{
		Classifier: &fakeClassifier{panic: true},
	}, nil)
	a := triage.NewAnalyzer(cfg, resolver, nil)

	got := a.Analyze(context.Background(), triage.Email{ID: "e-3", Subject: "hi", Body: "hello"})
	if got.Err == nil {
		t.Fatal("expected an error marker on the default analysis")
	}
	if got.Sentiment.Label != triage.SentimentNeutral || got.Sentiment.Confidence != 0.5 {
		t.Fatalf("unexpected default sentiment: %+v", got.Sentiment)
	}
	if got.Priority != triage.PriorityNormal {
		t.Fatalf("default priority = %s, want Normal", got.Priority)
	}
	if got.Knowledge.Category != "general_inquiry" {
		t.Fatalf("default knowledge = %q, want general_inquiry", got.Knowledge.Category)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not set on default analysis")
	}
}
