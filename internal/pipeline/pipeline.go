// Package pipeline wires the full triage run: CSV ingestion, support
// filtering, queue admission, concurrent analysis, persistence, and response
// drafting.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/ingest"
	"github.com/helpdeskhq/support-triage/internal/metrics"
	"github.com/helpdeskhq/support-triage/internal/queue"
	"github.com/helpdeskhq/support-triage/internal/respond"
	"github.com/helpdeskhq/support-triage/internal/store"
	"github.com/helpdeskhq/support-triage/internal/triage"
	"github.com/helpdeskhq/support-triage/pkg/worker"
)

type Options struct {
	QueueCapacity int
	Workers       int
	MaxRetries    int
	RateLimitRPS  float64
}

func (o Options) withDefaults() Options {
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = queue.DefaultCapacity
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	return o
}

// Summary reports what one run did at each stage.
type Summary struct {
	Ingested   int
	Filtered   int
	Admitted   int
	Rejected   int
	Analyzed   int
	Failed     int
	Duplicates int
	Responded  int
	QueueStats queue.Stats
	Elapsed    time.Duration
}

// Pipeline runs the end-to-end triage flow over one batch of emails.
type Pipeline struct {
	reader    *ingest.Reader
	filter    *ingest.SupportFilter
	policy    *triage.IngestPolicy
	analyzer  *triage.Analyzer
	responder *respond.Responder
	db        *store.Store
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

func New(cfg config.Config, analyzer *triage.Analyzer, responder *respond.Responder, db *store.Store, opts Options, log *zap.Logger) *Pipeline {
	return &Pipeline{
		reader:    ingest.NewReader(log),
		filter:    ingest.NewSupportFilter(cfg.Ingest.Support),
		policy:    triage.NewIngestPolicy(cfg.Ingest),
		analyzer:  analyzer,
		responder: responder,
		db:        db,
		opts:      opts.withDefaults(),
		log:       log,
		now:       time.Now,
	}
}

// Run processes one CSV batch end to end. Per-email analysis failures are
// absorbed into default analyses; only ingestion and storage errors fail the
// run.
func (p *Pipeline) Run(ctx context.Context, src io.Reader) (Summary, error) {
	start := p.now()
	var sum Summary

	emails, err := p.reader.ReadEmails(src)
	if err != nil {
		return sum, fmt.Errorf("ingest emails: %w", err)
	}
	sum.Ingested = len(emails)

	supported := p.filter.Filter(emails)
	sum.Filtered = len(emails) - len(supported)
	p.log.Info("ingested batch",
		zap.Int("emails", sum.Ingested),
		zap.Int("support", len(supported)))

	q := queue.New(p.opts.QueueCapacity)
	for _, email := range supported {
		if q.Admit(email, p.policy.Determine(email.Subject, email.Body)) {
			sum.Admitted++
		} else {
			sum.Rejected++
			metrics.QueueRejections.Inc()
			p.log.Warn("queue full, email rejected", zap.String("email_id", email.ID))
		}
		metrics.QueueDepth.Set(float64(q.Len()))
	}

	// Drain in priority order so the worker pool picks up urgent emails
	// first even when the run is cancelled partway.
	ordered := make([]triage.Email, 0, q.Len())
	for {
		task, ok := q.Next()
		if !ok {
			break
		}
		ordered = append(ordered, task.Email)
		metrics.QueueDepth.Set(float64(q.Len()))
	}
	sum.QueueStats = q.Stats()

	results, err := worker.ProcessAll(ctx, ordered,
		func(ctx context.Context, email triage.Email) (triage.Analysis, error) {
			return p.analyzer.Analyze(ctx, email), nil
		},
		worker.Options{
			Workers:      p.opts.Workers,
			MaxRetries:   p.opts.MaxRetries,
			RateLimitRPS: p.opts.RateLimitRPS,
		})
	if err != nil {
		return sum, fmt.Errorf("analyze emails: %w", err)
	}

	var items []respond.Item
	var ids []int64
	for _, res := range results {
		a := res.Output
		sum.Analyzed++
		metrics.EmailsProcessed.WithLabelValues(string(a.Priority), a.Sentiment.Label).Inc()
		metrics.SentimentMethod.WithLabelValues(a.Sentiment.Method).Inc()
		if a.Err != nil {
			sum.Failed++
			metrics.AnalysisFailures.Inc()
		}

		id, inserted, err := p.db.InsertEmail(ctx, a.Email, a)
		if err != nil {
			return sum, fmt.Errorf("store email %s: %w", a.Email.ID, err)
		}
		if !inserted {
			sum.Duplicates++
			p.log.Debug("duplicate email skipped",
				zap.String("sender", a.Email.Sender),
				zap.String("subject", a.Email.Subject))
			continue
		}
		items = append(items, respond.Item{Email: a.Email, Analysis: a})
		ids = append(ids, id)
	}

	drafts, err := p.responder.GenerateBatch(ctx, items, respond.BatchOptions{
		Workers:      p.opts.Workers,
		RateLimitRPS: p.opts.RateLimitRPS,
		MaxRetries:   p.opts.MaxRetries,
	})
	if err != nil {
		return sum, fmt.Errorf("generate responses: %w", err)
	}
	for i, draft := range drafts {
		metrics.ResponseMethod.WithLabelValues(draft.Response.Method).Inc()
		metrics.ResponseQuality.Observe(draft.Quality.Overall)
		if err := p.db.SaveResponse(ctx, ids[i], draft.Response.Text); err != nil {
			return sum, fmt.Errorf("store response for email %d: %w", ids[i], err)
		}
		sum.Responded++
	}

	sum.Elapsed = p.now().Sub(start)
	p.log.Info("run complete",
		zap.Int("analyzed", sum.Analyzed),
		zap.Int("responded", sum.Responded),
		zap.Int("duplicates", sum.Duplicates),
		zap.Int("failed", sum.Failed),
		zap.Duration("elapsed", sum.Elapsed))
	return sum, nil
}
