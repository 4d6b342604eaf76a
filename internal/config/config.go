// Package config holds the immutable classification tables the triage
// pipeline is built from: knowledge base entries, keyword lexicons, and
// response templates.
//
// Everything has a compiled-in default mirroring the production tables; an
// optional YAML file overlays individual sections. Components receive their
// slice of the config at construction time and never mutate it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KnowledgeEntry is one knowledge-base category. Declaration order matters:
// the matcher breaks score ties in favor of earlier entries.
type KnowledgeEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Solution string   `yaml:"solution"`
	Escalate bool     `yaml:"escalate"`
}

// SentimentLexicon backs the keyword tier of the sentiment resolver.
type SentimentLexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// PriorityRules feeds the analysis-time priority policy.
type PriorityRules struct {
	Urgent   []string `yaml:"urgent"`
	High     []string `yaml:"high"`
	Normal   []string `yaml:"normal"`
	Low      []string `yaml:"low"`
	Critical []string `yaml:"critical"`
}

// IngestRules feeds the ingestion-time priority policy and the support
// prefilter. The keyword lists are intentionally different from
// PriorityRules: ingestion is a cheap admission filter, analysis is the
// authoritative classification, and the two disagree in marginal cases.
type IngestRules struct {
	Urgent     []string `yaml:"urgent"`
	Critical   []string `yaml:"critical"`
	Escalation []string `yaml:"escalation"`
	High       []string `yaml:"high"`
	Support    []string `yaml:"support"`
}

// RequestTypeRule maps a request type to its trigger keywords. First match
// in declaration order wins.
type RequestTypeRule struct {
	Type     string   `yaml:"type"`
	Keywords []string `yaml:"keywords"`
}

// ResolutionRule maps a resolution-time bucket to its trigger keywords.
type ResolutionRule struct {
	Estimate string   `yaml:"estimate"`
	Keywords []string `yaml:"keywords"`
}

// EmotionRule maps an emotion category to its indicator keywords.
type EmotionRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ExtractionRules feeds the feature extractor.
type ExtractionRules struct {
	RequestTypes       []RequestTypeRule `yaml:"request_types"`
	DefaultRequestType string            `yaml:"default_request_type"`
	TechnicalTerms     []string          `yaml:"technical_terms"`
	Resolutions        []ResolutionRule  `yaml:"resolutions"`
	DefaultResolution  string            `yaml:"default_resolution"`
	Emotions           []EmotionRule     `yaml:"emotions"`
	EnterpriseDomains  []string          `yaml:"enterprise_domains"`
	StartupIndicators  []string          `yaml:"startup_indicators"`
}

// ResponseTemplates backs the deterministic side of response generation:
// the template fallback path and the enhancement pass.
type ResponseTemplates struct {
	// Openings is keyed by sentiment label; the first entry is used by the
	// template fallback for deterministic output.
	Openings map[string][]string `yaml:"openings"`
	// PriorityAcks is keyed by priority label.
	PriorityAcks map[string]string `yaml:"priority_acks"`
	// Closings is keyed by customer tier; tiers without an entry fall back
	// to "standard".
	Closings map[string]string `yaml:"closings"`
	// Apology is prepended when a highly negative email's draft does not
	// already open personally.
	Apology string `yaml:"apology"`
	// FallbackSolution is used when no knowledge solution is available.
	FallbackSolution string `yaml:"fallback_solution"`
}

// Config is the full immutable configuration for the triage pipeline.
type Config struct {
	Knowledge        []KnowledgeEntry  `yaml:"knowledge"`
	DefaultKnowledge string            `yaml:"default_knowledge"`
	Sentiment        SentimentLexicon  `yaml:"sentiment"`
	Priority         PriorityRules     `yaml:"priority"`
	Ingest           IngestRules       `yaml:"ingest"`
	Extraction       ExtractionRules   `yaml:"extraction"`
	Templates        ResponseTemplates `yaml:"templates"`
}

// Load reads an optional YAML overlay on top of Default. An empty path
// returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline relies on.
func (c Config) Validate() error {
	if len(c.Knowledge) == 0 {
		return fmt.Errorf("config: knowledge base is empty")
	}
	found := false
	for _, e := range c.Knowledge {
		if e.Name == c.DefaultKnowledge {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: default knowledge category %q not declared", c.DefaultKnowledge)
	}
	for _, label := range []string{"Positive", "Negative", "Neutral"} {
		if len(c.Templates.Openings[label]) == 0 {
			return fmt.Errorf("config: no opening template for sentiment %q", label)
		}
	}
	if _, ok := c.Templates.Closings["standard"]; !ok {
		return fmt.Errorf("config: missing standard closing template")
	}
	return nil
}
