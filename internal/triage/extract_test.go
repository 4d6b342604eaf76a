package triage_test

import (
	"strings"
	"testing"

	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/triage"
)

func newExtractor() *triage.Extractor {
	return triage.NewExtractor(config.Default().Extraction)
}

func TestExtractor_RequestType(t *testing.T) {
	t.Parallel()

	x := newExtractor()

	cases := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{name: "cancellation", subject: "Refund please", body: "I want to cancel", want: "cancellation_request"},
		{name: "bug report", subject: "Export broken", body: "The report page shows an error", want: "bug_report"},
		{name: "information", subject: "How to configure webhooks", body: "Is there a guide?", want: "information_request"},
		{name: "feature", subject: "Suggestion", body: "A dark mode would be a nice improvement", want: "feature_request"},
		{name: "billing", subject: "Invoice", body: "Why was my payment declined?", want: "billing_inquiry"},
		{name: "default", subject: "Hello", body: "Checking in", want: "general_support"},
		{name: "first match wins", subject: "Refund for this bug", body: "", want: "cancellation_request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := x.Extract(triage.Email{Subject: tc.subject, Body: tc.body}).RequestType
			if got != tc.want {
				t.Fatalf("request type = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractor_Complexity(t *testing.T) {
	t.Parallel()

	x := newExtractor()

	t.Run("base score for a short email", func(t *testing.T) {
		t.Parallel()
		got := x.Extract(triage.Email{Body: "Hi, quick note."}).Complexity
		if got != 3 {
			t.Fatalf("complexity = %d, want 3", got)
		}
	})

	t.Run("technical terms and questions add points", func(t *testing.T) {
		t.Parallel()
		body := "The API returns 500. Is it the database? Or the server? What changed?"
		// Technical term + more than two question marks + more than three numbers
		// would need 4 digit groups; here we have one. Two factors, so 3+4.
		got := x.Extract(triage.Email{Body: body}).Complexity
		if got != 7 {
			t.Fatalf("complexity = %d, want 7", got)
		}
	})

	t.Run("score is capped at 10", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("word ", 120)
		body := long + "\n\n\n\n\n\n\napi database 1 2 3 4 5? again? and again?"
		got := x.Extract(triage.Email{Body: body}).Complexity
		if got != 10 {
			t.Fatalf("complexity = %d, want 10", got)
		}
	})
}

func TestExtractor_ResolutionEstimate(t *testing.T) {
	t.Parallel()

	x := newExtractor()

	cases := []struct {
		body string
		want string
	}{
		{body: "I forgot my password", want: "2-4 hours"},
		{body: "Please refund me", want: "1-2 business days"},
		{body: "The api integration fails", want: "2-5 business days"},
		{body: "Found a bug in the export", want: "3-7 business days"},
		{body: "General question about plans", want: "1-3 business days"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			got := x.Extract(triage.Email{Body: tc.body}).EstimatedResolution
			if got != tc.want {
				t.Fatalf("estimate for %q = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestExtractor_Emotions(t *testing.T) {
	t.Parallel()

	x := newExtractor()

	t.Run("dominant emotion with intensity", func(t *testing.T) {
		t.Parallel()
		got := x.Extract(triage.Email{Body: "This is urgent, please fix asap, we need it immediately"}).Emotions
		if got.Dominant != "urgency" {
			t.Fatalf("dominant = %q, want urgency", got.Dominant)
		}
		if got.Intensity != 9 {
			t.Fatalf("intensity = %d, want 9 (3 hits x 3)", got.Intensity)
		}
		if got.Scores["urgency"] != 3 {
			t.Fatalf("urgency score = %d, want 3", got.Scores["urgency"])
		}
	})

	t.Run("intensity is capped at 10", func(t *testing.T) {
		t.Parallel()
		got := x.Extract(triage.Email{Body: "urgent asap immediately quick fast"}).Emotions
		if got.Intensity != 10 {
			t.Fatalf("intensity = %d, want 10", got.Intensity)
		}
	})

	t.Run("no signals reports neutral", func(t *testing.T) {
		t.Parallel()
		got := x.Extract(triage.Email{Body: "The invoice arrived on the first."}).Emotions
		if got.Dominant != "neutral" || got.Intensity != 0 {
			t.Fatalf("unexpected emotions: %+v", got)
		}
	})
}

func TestExtractor_CustomerTier(t *testing.T) {
	t.Parallel()

	x := newExtractor()

	cases := []struct {
		sender string
		want   string
	}{
		{sender: "pat@microsoft.com", want: "enterprise"},
		{sender: "casey@neatlabs.io", want: "startup"},
		{sender: "drew@stanford.edu", want: "education"},
		{sender: "jordan@treasury.gov", want: "government"},
		{sender: "sam@gmail.com", want: "standard"},
		{sender: "not-an-address", want: "standard"},
	}

	for _, tc := range cases {
		t.Run(tc.want+"/"+tc.sender, func(t *testing.T) {
			t.Parallel()
			got := x.Extract(triage.Email{Sender: tc.sender}).CustomerTier
			if got != tc.want {
				t.Fatalf("tier for %q = %q, want %q", tc.sender, got, tc.want)
			}
		})
	}
}

func TestExtractor_ContentSignals(t *testing.T) {
	t.Parallel()

	x := newExtractor()

	info := x.Extract(triage.Email{
		Sender: "sam@example.com",
		Body:   "HELP! Why? How?",
	})
	if info.CustomerDomain != "example.com" {
		t.Fatalf("domain = %q", info.CustomerDomain)
	}
	if info.QuestionCount != 2 {
		t.Fatalf("question count = %d, want 2", info.QuestionCount)
	}
	if info.ExclamationCount != 1 {
		t.Fatalf("exclamation count = %d, want 1", info.ExclamationCount)
	}
	if info.CapsRatio <= 0 {
		t.Fatal("caps ratio should be positive")
	}
}
