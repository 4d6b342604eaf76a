package triage

import "time"

// Priority is the handling urgency assigned to an email.
type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities for queueing. Lower means more urgent.
// Unknown values rank with Normal so malformed input never jumps the line.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 3
	case PriorityLow:
		return 4
	default:
		return 3
	}
}

// Valid reports whether p is one of the four known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Sentiment labels.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Email is one inbound support message.
type Email struct {
	ID       string
	Sender   string
	Subject  string
	Body     string
	SentDate time.Time
	Source   string
}

// SentimentResult carries the winning label, the strategy's confidence in it,
// and which strategy produced it.
type SentimentResult struct {
	Label      string
	Confidence float64
	Method     string
	Reasoning  string
}

// KnowledgeMatch is the best knowledge base category for an email.
type KnowledgeMatch struct {
	Category  string
	Relevance int
	Solution  string
	Escalate  bool
}

// Emotions summarizes emotional signals detected in an email body.
type Emotions struct {
	Scores    map[string]int
	Dominant  string
	Intensity int
}

// ExtractedInfo is the structured feature set pulled from one email.
type ExtractedInfo struct {
	RequestType         string
	Complexity          int
	Emotions            Emotions
	CustomerTier        string
	EstimatedResolution string

	// Content shape signals.
	CustomerDomain   string
	QuestionCount    int
	ExclamationCount int
	CapsRatio        float64
}

// Analysis is the full triage result for one email.
type Analysis struct {
	Email      Email
	Sentiment  SentimentResult
	Priority   Priority
	Knowledge  KnowledgeMatch
	Extracted  ExtractedInfo
	Confidence float64
	Timestamp  time.Time

	// Err records a per-email analysis failure. The rest of the fields hold
	// safe defaults when it is set.
	Err error
}
