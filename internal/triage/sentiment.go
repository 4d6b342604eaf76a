package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/ai"
	"github.com/helpdeskhq/support-triage/internal/config"
)

// Method names reported in SentimentResult.
const (
	MethodClassifier = "external-classifier"
	MethodGenerator  = "external-generator"
	MethodKeywords   = "keyword-fallback"
)

// classifyTruncateLen bounds the text sent to the external classifier,
// counted in runes so truncation never splits a multi-byte sequence.
const classifyTruncateLen = 500

// SentimentStrategy is one tier of the resolution chain.
type SentimentStrategy interface {
	Name() string
	Resolve(ctx context.Context, text string) (SentimentResult, error)
}

// SentimentResolver walks an ordered list of strategies and returns the first
// success. The last tier is keyword-based and cannot fail, so Resolve is a
// total function.
type SentimentResolver struct {
	strategies []SentimentStrategy
	log        *zap.Logger
}

// ResolverOptions configures the optional external tiers.
type ResolverOptions struct {
	Classifier ai.SentimentClassifier
	Generator  ai.Generator

	// ClassifyTimeout bounds a single classifier call. Zero means 10s.
	ClassifyTimeout time.Duration
}

// NewSentimentResolver builds the classifier, generator, keywords chain.
// Nil collaborators simply drop their tier from the chain.
func NewSentimentResolver(cfg config.SentimentLexicon, opts ResolverOptions, log *zap.Logger) *SentimentResolver {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.ClassifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var chain []SentimentStrategy
	if opts.Classifier != nil {
		chain = append(chain, &classifierStrategy{svc: opts.Classifier, timeout: timeout})
	}
	if opts.Generator != nil {
		chain = append(chain, &generatorStrategy{svc: opts.Generator})
	}
	chain = append(chain, &keywordStrategy{lexicon: cfg})

	return &SentimentResolver{strategies: chain, log: log}
}

// Resolve classifies text, degrading through the chain on failure. It never
// returns an unusable result.
func (r *SentimentResolver) Resolve(ctx context.Context, text string) SentimentResult {
	for i, s := range r.strategies {
		res, err := s.Resolve(ctx, text)
		if err == nil {
			return res
		}
		if i < len(r.strategies)-1 {
			r.log.Debug("sentiment tier failed, falling back",
				zap.String("tier", s.Name()),
				zap.Error(err))
		}
	}
	// Unreachable while the keyword tier is present; kept so a misconfigured
	// chain still yields a well-formed value.
	return SentimentResult{Label: SentimentNeutral, Confidence: 0.5, Method: MethodKeywords}
}

type classifierStrategy struct {
	svc     ai.SentimentClassifier
	timeout time.Duration
}

func (s *classifierStrategy) Name() string { return MethodClassifier }

func (s *classifierStrategy) Resolve(ctx context.Context, text string) (SentimentResult, error) {
	text = truncateRunes(text, classifyTruncateLen)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	preds, err := s.svc.Classify(callCtx, text)
	if err != nil {
		return SentimentResult{}, fmt.Errorf("classify: %w", err)
	}
	if len(preds) == 0 {
		return SentimentResult{}, fmt.Errorf("classify: empty prediction list")
	}

	best := preds[0]
	for _, p := range preds[1:] {
		if p.Score > best.Score {
			best = p
		}
	}

	label, ok := mapProviderLabel(best.Label)
	if !ok {
		return SentimentResult{}, fmt.Errorf("classify: unknown label %q", best.Label)
	}
	return SentimentResult{
		Label:      label,
		Confidence: round3(best.Score),
		Method:     MethodClassifier,
	}, nil
}

// mapProviderLabel folds provider label variants into the three-way taxonomy.
func mapProviderLabel(label string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POSITIVE", "LABEL_2", "POS":
		return SentimentPositive, true
	case "NEGATIVE", "LABEL_0", "NEG":
		return SentimentNegative, true
	case "NEUTRAL", "LABEL_1":
		return SentimentNeutral, true
	}
	return "", false
}

type generatorStrategy struct {
	svc ai.Generator
}

func (s *generatorStrategy) Name() string { return MethodGenerator }

const sentimentPrompt = `Analyze the sentiment of this customer support email. Respond with ONLY a JSON object in this exact format:
{"sentiment": "Positive|Negative|Neutral", "confidence": 0.95, "reasoning": "brief explanation"}

Email text:
%s`

func (s *generatorStrategy) Resolve(ctx context.Context, text string) (SentimentResult, error) {
	reply, err := s.svc.Generate(ctx, fmt.Sprintf(sentimentPrompt, text))
	if err != nil {
		return SentimentResult{}, fmt.Errorf("generate: %w", err)
	}

	raw, err := ai.ExtractJSON(reply)
	if err != nil {
		return SentimentResult{}, fmt.Errorf("generate: %w", err)
	}

	var parsed struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return SentimentResult{}, fmt.Errorf("generate: parse json: %w", err)
	}

	switch parsed.Sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return SentimentResult{}, fmt.Errorf("generate: unknown sentiment %q", parsed.Sentiment)
	}

	conf := parsed.Confidence
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}
	return SentimentResult{
		Label:      parsed.Sentiment,
		Confidence: conf,
		Method:     MethodGenerator,
		Reasoning:  strings.TrimSpace(parsed.Reasoning),
	}, nil
}

type keywordStrategy struct {
	lexicon config.SentimentLexicon
}

func (s *keywordStrategy) Name() string { return MethodKeywords }

func (s *keywordStrategy) Resolve(_ context.Context, text string) (SentimentResult, error) {
	lower := strings.ToLower(text)
	pos := countHits(lower, s.lexicon.Positive)
	neg := countHits(lower, s.lexicon.Negative)

	switch {
	case pos > neg:
		return SentimentResult{Label: SentimentPositive, Confidence: 0.8, Method: MethodKeywords}, nil
	case neg > pos:
		return SentimentResult{Label: SentimentNegative, Confidence: 0.8, Method: MethodKeywords}, nil
	default:
		return SentimentResult{Label: SentimentNeutral, Confidence: 0.6, Method: MethodKeywords}, nil
	}
}

// countHits counts how many keywords appear at least once in text.
func countHits(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

// truncateRunes shortens s to at most n runes, keeping every multi-byte
// sequence intact.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
