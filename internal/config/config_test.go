package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/helpdeskhq/support-triage/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	if err := config.Default().Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if len(cfg.Knowledge) == 0 {
		t.Fatal("expected compiled-in knowledge base")
	}
	if cfg.DefaultKnowledge != "general_inquiry" {
		t.Errorf("DefaultKnowledge = %q", cfg.DefaultKnowledge)
	}
}

func TestLoadOverlaysSingleSection(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "overlay.yaml")
	overlay := `sentiment:
  positive: ["stellar"]
  negative: ["dreadful"]
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sentiment.Positive) != 1 || cfg.Sentiment.Positive[0] != "stellar" {
		t.Errorf("Sentiment.Positive = %v, want overlay applied", cfg.Sentiment.Positive)
	}
	// Sections absent from the overlay keep their defaults.
	if len(cfg.Knowledge) == 0 {
		t.Error("overlay wiped the knowledge base")
	}
	if len(cfg.Ingest.Support) == 0 {
		t.Error("overlay wiped the support filter keywords")
	}
}

func TestLoadRejectsInvalidOverlay(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	overlay := `knowledge:
  - name: only_category
    keywords: ["x"]
    solution: "do x"
default_knowledge: missing_category
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for undeclared default category")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
