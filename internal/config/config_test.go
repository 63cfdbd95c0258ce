package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Port)
	}
	if cfg.MaxSourcesPerKind != 5 {
		t.Errorf("Expected 5 sources per kind, got %d", cfg.MaxSourcesPerKind)
	}
	if cfg.MaxContentLength != 10000 {
		t.Errorf("Expected 10000 content length, got %d", cfg.MaxContentLength)
	}
	if cfg.WikipediaLang != "en" {
		t.Errorf("Expected en Wikipedia, got %s", cfg.WikipediaLang)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SUMMARY_WORD_LIMIT", "250")
	t.Setenv("LLM_MODEL", "llama3")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.SummaryWordLimit != 250 {
		t.Errorf("Expected word limit 250, got %d", cfg.SummaryWordLimit)
	}
	if cfg.LLMModel != "llama3" {
		t.Errorf("Expected model llama3, got %s", cfg.LLMModel)
	}
}

func TestInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("HISTORY_WINDOW", "not-a-number")

	cfg := Load()
	if cfg.HistoryWindow != 5 {
		t.Errorf("Expected default history window 5, got %d", cfg.HistoryWindow)
	}
}
