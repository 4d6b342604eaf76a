package triage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/config"
)

// Analyzer runs the full analysis chain for one email: sentiment, priority,
// knowledge match, feature extraction, overall confidence.
type Analyzer struct {
	sentiment *SentimentResolver
	priority  *AnalysisPolicy
	knowledge *KnowledgeMatcher
	extractor *Extractor
	log       *zap.Logger
	now       func() time.Time
}

func NewAnalyzer(cfg config.Config, resolver *SentimentResolver, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		sentiment: resolver,
		priority:  NewAnalysisPolicy(cfg.Priority),
		knowledge: NewKnowledgeMatcher(cfg.Knowledge, cfg.DefaultKnowledge),
		extractor: NewExtractor(cfg.Extraction),
		log:       log,
		now:       time.Now,
	}
}

// Analyze never fails: any panic inside the chain is converted into a neutral
// default Analysis carrying the error, so downstream stages always receive a
// well-formed record.
func (a *Analyzer) Analyze(ctx context.Context, email Email) (out Analysis) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("analysis panicked, returning default analysis",
				zap.String("email_id", email.ID),
				zap.Any("panic", r))
			out = a.defaultAnalysis(email, fmt.Errorf("analysis failed: %v", r))
		}
	}()

	sentiment := a.sentiment.Resolve(ctx, email.Body)
	priority := a.priority.Determine(email.Subject, email.Body)
	knowledge := a.knowledge.Match(email.Subject, email.Body)
	extracted := a.extractor.Extract(email)

	return Analysis{
		Email:      email,
		Sentiment:  sentiment,
		Priority:   priority,
		Knowledge:  knowledge,
		Extracted:  extracted,
		Confidence: overallConfidence(sentiment, knowledge),
		Timestamp:  a.now(),
	}
}

func (a *Analyzer) defaultAnalysis(email Email, err error) Analysis {
	return Analysis{
		Email:     email,
		Sentiment: SentimentResult{Label: SentimentNeutral, Confidence: 0.5, Method: "error"},
		Priority:  PriorityNormal,
		Knowledge: a.knowledge.Match("", ""),
		Timestamp: a.now(),
		Err:       err,
	}
}

// overallConfidence blends sentiment confidence with knowledge relevance.
// Relevance saturates at 3 keyword hits.
func overallConfidence(s SentimentResult, k KnowledgeMatch) float64 {
	rel := float64(k.Relevance) / 3
	if rel > 1 {
		rel = 1
	}
	return round3(s.Confidence*0.6 + rel*0.4)
}
