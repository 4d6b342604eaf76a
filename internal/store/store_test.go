package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/helpdeskhq/support-triage/internal/store"
	"github.com/helpdeskhq/support-triage/internal/triage"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func analyzed(sentiment string, conf float64, priority triage.Priority) triage.Analysis {
	return triage.Analysis{
		Sentiment: triage.SentimentResult{Label: sentiment, Confidence: conf},
		Priority:  priority,
	}
}

func TestStore_InsertEmailDeduplicates(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	email := triage.Email{
		Sender:   "casey@example.com",
		Subject:  "Cannot login",
		Body:     "Help",
		SentDate: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	id1, inserted, err := s.InsertEmail(ctx, email, analyzed("Negative", 0.8, triage.PriorityHigh))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted || id1 == 0 {
		t.Fatalf("expected insert, got id=%d inserted=%v", id1, inserted)
	}

	// Same sender and subject is a duplicate even with a different body.
	dup := email
	dup.Body = "Different body"
	id2, inserted, err := s.InsertEmail(ctx, dup, analyzed("Neutral", 0.6, triage.PriorityNormal))
	if err != nil {
		t.Fatalf("insert duplicate: %v", err)
	}
	if inserted {
		t.Fatal("duplicate should not be inserted")
	}
	if id2 != id1 {
		t.Fatalf("duplicate id = %d, want %d", id2, id1)
	}

	// Same subject from another sender is a distinct email.
	other := email
	other.Sender = "sam@example.com"
	_, inserted, err = s.InsertEmail(ctx, other, analyzed("Neutral", 0.6, triage.PriorityNormal))
	if err != nil {
		t.Fatalf("insert other sender: %v", err)
	}
	if !inserted {
		t.Fatal("different sender should insert")
	}
}

func TestStore_ListEmailsOrdersByPriorityThenDate(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	inserts := []struct {
		subject  string
		priority triage.Priority
		sent     time.Time
	}{
		{subject: "low", priority: triage.PriorityLow, sent: base.Add(3 * time.Hour)},
		{subject: "urgent-old", priority: triage.PriorityUrgent, sent: base},
		{subject: "normal", priority: triage.PriorityNormal, sent: base.Add(2 * time.Hour)},
		{subject: "urgent-new", priority: triage.PriorityUrgent, sent: base.Add(1 * time.Hour)},
	}
	for _, in := range inserts {
		email := triage.Email{Sender: "casey@example.com", Subject: in.subject, Body: "b", SentDate: in.sent}
		if _, _, err := s.InsertEmail(ctx, email, analyzed("Neutral", 0.6, in.priority)); err != nil {
			t.Fatalf("insert %s: %v", in.subject, err)
		}
	}

	got, err := s.ListEmails(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"urgent-new", "urgent-old", "normal", "low"}
	if len(got) != len(want) {
		t.Fatalf("got %d emails, want %d", len(got), len(want))
	}
	for i, rec := range got {
		if rec.Subject != want[i] {
			t.Fatalf("position %d = %q, want %q", i, rec.Subject, want[i])
		}
	}
	if got[0].Status != store.StatusPending {
		t.Fatalf("status = %q, want pending", got[0].Status)
	}
}

func TestStore_ResponseLifecycle(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	email := triage.Email{Sender: "casey@example.com", Subject: "Billing", Body: "b", SentDate: time.Now()}
	id, _, err := s.InsertEmail(ctx, email, analyzed("Negative", 0.8, triage.PriorityHigh))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if resp, err := s.GetResponse(ctx, id); err != nil || resp != nil {
		t.Fatalf("expected no response yet, got %+v err=%v", resp, err)
	}

	if err := s.SaveResponse(ctx, id, "Dear customer, first draft."); err != nil {
		t.Fatalf("save: %v", err)
	}
	resp, err := s.GetResponse(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp == nil || resp.Generated != "Dear customer, first draft." || resp.IsSent {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Regeneration replaces the draft in place.
	if err := s.SaveResponse(ctx, id, "Dear customer, second draft."); err != nil {
		t.Fatalf("save again: %v", err)
	}
	resp, err = s.GetResponse(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.Generated != "Dear customer, second draft." || resp.Final != "Dear customer, second draft." {
		t.Fatalf("draft not replaced: %+v", resp)
	}

	// Sending stores the edited final text and resolves the email.
	if err := s.MarkSent(ctx, id, "Dear customer, edited and sent.", true); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	resp, err = s.GetResponse(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !resp.IsSent || resp.Final != "Dear customer, edited and sent." {
		t.Fatalf("unexpected sent response: %+v", resp)
	}
	if resp.Generated != "Dear customer, second draft." {
		t.Fatalf("generated text should be untouched by sending: %+v", resp)
	}

	rec, err := s.GetEmail(ctx, id)
	if err != nil {
		t.Fatalf("get email: %v", err)
	}
	if rec.Status != store.StatusResolved {
		t.Fatalf("status = %q, want resolved", rec.Status)
	}
	if !rec.HasResponse {
		t.Fatal("expected HasResponse")
	}
}

func TestStore_MarkSentWithoutResponseFails(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	if err := s.MarkSent(context.Background(), 42, "text", true); err == nil {
		t.Fatal("expected error for missing response")
	}
}

func TestStore_Stats(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()

	seed := []struct {
		subject   string
		sentiment string
		priority  triage.Priority
	}{
		{subject: "a", sentiment: "Negative", priority: triage.PriorityUrgent},
		{subject: "b", sentiment: "Negative", priority: triage.PriorityNormal},
		{subject: "c", sentiment: "Positive", priority: triage.PriorityNormal},
	}
	var ids []int64
	for _, in := range seed {
		email := triage.Email{Sender: "casey@example.com", Subject: in.subject, Body: "b", SentDate: time.Now()}
		id, _, err := s.InsertEmail(ctx, email, analyzed(in.sentiment, 0.8, in.priority))
		if err != nil {
			t.Fatalf("insert %s: %v", in.subject, err)
		}
		ids = append(ids, id)
	}

	if err := s.SaveResponse(ctx, ids[0], "draft"); err != nil {
		t.Fatalf("save response: %v", err)
	}
	if err := s.Resolve(ctx, ids[0]); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	a, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if a.TotalEmails != 3 || a.ResolvedEmails != 1 || a.PendingEmails != 2 {
		t.Fatalf("unexpected counts: %+v", a)
	}
	if a.WithResponses != 1 || a.WithoutResponses != 2 {
		t.Fatalf("unexpected response counts: %+v", a)
	}
	if a.SentimentDistribution["Negative"] != 2 || a.SentimentDistribution["Positive"] != 1 {
		t.Fatalf("unexpected sentiment distribution: %v", a.SentimentDistribution)
	}
	if a.PriorityDistribution["Normal"] != 2 || a.PriorityDistribution["Urgent"] != 1 {
		t.Fatalf("unexpected priority distribution: %v", a.PriorityDistribution)
	}
}
