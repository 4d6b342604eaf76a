package respond

import (
	"context"

	"github.com/helpdeskhq/support-triage/internal/triage"
	"github.com/helpdeskhq/support-triage/pkg/worker"
)

// Item pairs an email with its analysis for batch generation.
type Item struct {
	Email    triage.Email
	Analysis triage.Analysis
}

// BatchResult is one generated and scored reply.
type BatchResult struct {
	Item     Item
	Response Generated
	Quality  QualityMetrics
}

// BatchOptions tunes batch generation concurrency.
type BatchOptions struct {
	Workers      int
	RateLimitRPS float64
	MaxRetries   int
}

// GenerateBatch drafts replies for all items. Pairs are independent, so they
// fan out over a worker pool; output order matches input order. Generation
// never fails per item, so the returned slice always has one entry per item.
func (r *Responder) GenerateBatch(ctx context.Context, items []Item, opts BatchOptions) ([]BatchResult, error) {
	results, err := worker.ProcessAll(ctx, items,
		func(ctx context.Context, it Item) (BatchResult, error) {
			g := r.Generate(ctx, it.Email, it.Analysis)
			return BatchResult{Item: it, Response: g, Quality: r.Quality(g)}, nil
		},
		worker.Options{
			Workers:      opts.Workers,
			RateLimitRPS: opts.RateLimitRPS,
			MaxRetries:   opts.MaxRetries,
		})
	if err != nil {
		return nil, err
	}

	out := make([]BatchResult, len(results))
	for i, res := range results {
		out[i] = res.Output
	}
	return out, nil
}
