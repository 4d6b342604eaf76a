package ai

import "context"

// Prediction is one label with a model-assigned score.
type Prediction struct {
	Label string
	Score float64
}

// SentimentClassifier scores a text against a fixed label set.
// Implementations return every label they know about; callers pick the winner.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
}

// Generator produces free-form text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateFunc adapts a function to the Generator interface.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// TransientError marks an error as retryable.
//
// Worker pools should retry transient failures with backoff rather than
// immediately giving up on the item.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *TransientError) Transient() bool { return true }

// LimitedTransientError is a transient failure that should retry fewer times
// than the pool default, for example a provider rate limit.
type LimitedTransientError struct {
	Err error

	// ExtraRetries caps retries for this error below the pool's MaxRetries.
	ExtraRetries int
}

func (e *LimitedTransientError) Error() string {
	if e == nil || e.Err == nil {
		return "rate limited"
	}
	return e.Err.Error()
}

func (e *LimitedTransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *LimitedTransientError) Transient() bool { return true }

// MaxExtraRetries reports the per-error retry cap.
func (e *LimitedTransientError) MaxExtraRetries() int {
	if e == nil || e.ExtraRetries < 0 {
		return 0
	}
	return e.ExtraRetries
}
