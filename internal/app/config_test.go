package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_MODE", "")
	t.Setenv("SIMILAR_SCORE_THRESHOLD", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogMode != "dev" {
		t.Fatalf("LogMode = %q, want dev", cfg.LogMode)
	}
	if cfg.SimilarScoreThreshold != 0.5 {
		t.Fatalf("SimilarScoreThreshold = %v, want 0.5", cfg.SimilarScoreThreshold)
	}
	if cfg.SimilarMaxItems != 2 {
		t.Fatalf("SimilarMaxItems = %d, want 2", cfg.SimilarMaxItems)
	}
	if cfg.ReadyTimeout != 60*time.Second {
		t.Fatalf("ReadyTimeout = %v, want 60s", cfg.ReadyTimeout)
	}
}

func TestLoadConfigFileOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := "marketplace_id: 9\nsimilar_max_items: 5\nlink_skip_linked: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MARKETPLACE_ID", "3")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MarketplaceID != 9 {
		t.Fatalf("MarketplaceID = %d, want file value 9", cfg.MarketplaceID)
	}
	if cfg.SimilarMaxItems != 5 {
		t.Fatalf("SimilarMaxItems = %d, want 5", cfg.SimilarMaxItems)
	}
	if !cfg.LinkSkipLinked {
		t.Fatalf("LinkSkipLinked = false, want true")
	}
	// Keys absent from the file keep their environment baseline.
	if cfg.FeedPath != "feed.xml" {
		t.Fatalf("FeedPath = %q, want feed.xml", cfg.FeedPath)
	}
}

func TestLoadConfigMissingFileFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig accepted a missing config file")
	}
}
