// Package respond turns an analyzed email into a draft reply. A generative
// model drafts the text when one is available; deterministic template
// enhancement then repairs tone, priority acknowledgment, and closing, with a
// pure-template path as the fallback.
package respond

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/ai"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/triage"
)

// Generation methods reported in Generated.Method.
const (
	MethodGenerator = "generator"
	MethodTemplate  = "template-fallback"
)

// Context is the analysis snapshot a response was generated against.
type Context struct {
	Sentiment         string
	Priority          triage.Priority
	KnowledgeCategory string
	CustomerTier      string
	Emotion           string
	EmotionIntensity  int
}

// Generated is one draft reply. It is distinct from any later human-edited
// final text; merging and editing happen outside this package.
type Generated struct {
	EmailID    string
	Text       string
	Method     string
	Confidence float64
	Context    Context
	Timestamp  time.Time
}

// Responder generates and scores draft replies.
type Responder struct {
	generator ai.Generator
	templates config.ResponseTemplates
	log       *zap.Logger
	now       func() time.Time
}

// NewResponder builds a Responder. A nil generator forces the template path.
func NewResponder(templates config.ResponseTemplates, generator ai.Generator, log *zap.Logger) *Responder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Responder{
		generator: generator,
		templates: templates,
		log:       log,
		now:       time.Now,
	}
}

// Generate drafts a reply for one analyzed email. Generator failures degrade
// to the template path; Generate itself never fails.
func (r *Responder) Generate(ctx context.Context, email triage.Email, analysis triage.Analysis) Generated {
	rc := contextOf(analysis)

	if r.generator != nil {
		text, err := r.generator.Generate(ctx, r.buildPrompt(email, analysis))
		if err == nil && strings.TrimSpace(text) != "" {
			return Generated{
				EmailID:    email.ID,
				Text:       r.Enhance(strings.TrimSpace(text), rc),
				Method:     MethodGenerator,
				Confidence: 0.9,
				Context:    rc,
				Timestamp:  r.now(),
			}
		}
		r.log.Warn("generator failed, using template response",
			zap.String("email_id", email.ID),
			zap.Error(err))
	}

	return r.Template(email, analysis)
}

// Template builds the deterministic fallback reply.
func (r *Responder) Template(email triage.Email, analysis triage.Analysis) Generated {
	rc := contextOf(analysis)

	opening := r.opening(rc.Sentiment)
	solution := analysis.Knowledge.Solution
	if strings.TrimSpace(solution) == "" {
		solution = r.templates.FallbackSolution
	}
	ack := r.priorityAck(rc.Priority)
	closing := r.closing(rc.CustomerTier)

	text := fmt.Sprintf("Dear Valued Customer,\n\n%s\n\n%s\n\n%s\n\n%s", opening, solution, ack, closing)
	return Generated{
		EmailID:    email.ID,
		Text:       text,
		Method:     MethodTemplate,
		Confidence: 0.7,
		Context:    rc,
		Timestamp:  r.now(),
	}
}

// Enhance repairs a drafted reply: an apology opening for intensely negative
// emails, an explicit acknowledgment on urgent ones, and a professional
// closing when none is present. Enhancing an already enhanced text is a
// no-op.
func (r *Responder) Enhance(text string, rc Context) string {
	lower := strings.ToLower(text)

	if rc.Sentiment == triage.SentimentNegative && rc.EmotionIntensity > 5 {
		if !strings.HasPrefix(lower, "i ") && !strings.HasPrefix(lower, "we ") && !strings.HasPrefix(lower, "dear") {
			text = r.templates.Apology + text
			lower = strings.ToLower(text)
		}
	}

	if rc.Priority == triage.PriorityUrgent && !strings.Contains(lower, "priority") {
		note := "\n\n" + r.priorityAck(rc.Priority)
		if i := strings.LastIndex(text, "\n\n"); i >= 0 {
			text = text[:i] + note + text[i:]
		} else {
			text += note
		}
		lower = strings.ToLower(text)
	}

	if !strings.Contains(lower, "best regards") && !strings.Contains(lower, "sincerely") && !strings.Contains(lower, "thank you") {
		text += "\n\n" + r.closing(rc.CustomerTier)
	}

	return text
}

func (r *Responder) buildPrompt(email triage.Email, analysis triage.Analysis) string {
	rc := contextOf(analysis)

	toneLine := "Maintain friendly professionalism"
	switch rc.Sentiment {
	case triage.SentimentNegative:
		toneLine = "Acknowledge their frustration empathetically"
	case triage.SentimentPositive:
		toneLine = "Match their positive energy"
	}

	urgencyLine := "Show appropriate priority level"
	if rc.Priority == triage.PriorityUrgent {
		urgencyLine = "Emphasize urgency and immediate action"
	}

	languageLine := "Use friendly, accessible language"
	if rc.CustomerTier == "enterprise" {
		languageLine = "Use enterprise-appropriate language"
	}

	solution := analysis.Knowledge.Solution
	if strings.TrimSpace(solution) == "" {
		solution = r.templates.FallbackSolution
	}

	return fmt.Sprintf(`You are a professional customer support representative for a technology company. Generate a helpful, empathetic, and professional response to this customer email.

CUSTOMER EMAIL:
From: %s
Subject: %s
Body: %s

CONTEXT ANALYSIS:
- Customer Sentiment: %s
- Priority Level: %s
- Customer Tier: %s
- Dominant Emotion: %s
- Request Type: %s
- Knowledge Base Category: %s

RELEVANT SOLUTION INFORMATION:
%s

RESPONSE REQUIREMENTS:
1. Professional and empathetic tone
2. Address the customer's specific concerns
3. %s
4. %s
5. Include specific next steps or solutions
6. %s
7. Keep response concise but complete (150-250 words)
8. End with appropriate call-to-action

Generate a professional customer support response:`,
		email.Sender, email.Subject, email.Body,
		rc.Sentiment, rc.Priority, rc.CustomerTier, rc.Emotion,
		analysis.Extracted.RequestType, rc.KnowledgeCategory,
		solution,
		toneLine, urgencyLine, languageLine)
}

func (r *Responder) opening(sentiment string) string {
	options := r.templates.Openings[sentiment]
	if len(options) == 0 {
		options = r.templates.Openings[triage.SentimentNeutral]
	}
	if len(options) == 0 {
		return "Thank you for contacting our support team."
	}
	// First option for deterministic output.
	return options[0]
}

func (r *Responder) priorityAck(p triage.Priority) string {
	if ack, ok := r.templates.PriorityAcks[string(p)]; ok {
		return ack
	}
	return r.templates.PriorityAcks[string(triage.PriorityNormal)]
}

func (r *Responder) closing(tier string) string {
	if c, ok := r.templates.Closings[tier]; ok {
		return c
	}
	return r.templates.Closings["standard"]
}

func contextOf(a triage.Analysis) Context {
	tier := a.Extracted.CustomerTier
	if tier == "" {
		tier = "standard"
	}
	emotion := a.Extracted.Emotions.Dominant
	if emotion == "" {
		emotion = "neutral"
	}
	sentiment := a.Sentiment.Label
	if sentiment == "" {
		sentiment = triage.SentimentNeutral
	}
	priority := a.Priority
	if !priority.Valid() {
		priority = triage.PriorityNormal
	}
	return Context{
		Sentiment:         sentiment,
		Priority:          priority,
		KnowledgeCategory: a.Knowledge.Category,
		CustomerTier:      tier,
		Emotion:           emotion,
		EmotionIntensity:  a.Extracted.Emotions.Intensity,
	}
}
