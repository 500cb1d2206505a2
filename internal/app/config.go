package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/altegra/catalog-backend/internal/platform/envutil"
)

// Config is the complete run configuration. Environment variables provide the
// baseline; an optional YAML file named by CONFIG_FILE overlays on top of it,
// which is how per-marketplace run profiles are kept in version control.
type Config struct {
	LogMode string `yaml:"log_mode"`

	FeedPath      string `yaml:"feed_path"`
	MarketplaceID int    `yaml:"marketplace_id"`

	ReadyTimeout  time.Duration `yaml:"ready_timeout"`
	ReadyInterval time.Duration `yaml:"ready_interval"`

	IndexBatchSize int `yaml:"index_batch_size"`

	SimilarScoreThreshold float64 `yaml:"similar_score_threshold"`
	SimilarMaxItems       int     `yaml:"similar_max_items"`
	LinkConcurrency       int     `yaml:"link_concurrency"`
	LinkSkipLinked        bool    `yaml:"link_skip_linked"`
}

// LoadConfig resolves the environment baseline and applies the CONFIG_FILE
// overlay when one is named. A named but unreadable file is an error; an
// unset CONFIG_FILE is not.
func LoadConfig() (Config, error) {
	cfg := Config{
		LogMode:               envutil.String("LOG_MODE", "dev"),
		FeedPath:              envutil.String("FEED_PATH", "feed.xml"),
		MarketplaceID:         envutil.Int("MARKETPLACE_ID", 1),
		ReadyTimeout:          envutil.Duration("READY_TIMEOUT", 60*time.Second),
		ReadyInterval:         envutil.Duration("READY_INTERVAL", 2*time.Second),
		IndexBatchSize:        envutil.Int("INDEX_BATCH_SIZE", 500),
		SimilarScoreThreshold: envutil.Float("SIMILAR_SCORE_THRESHOLD", 0.5),
		SimilarMaxItems:       envutil.Int("SIMILAR_MAX_ITEMS", 2),
		LinkConcurrency:       envutil.Int("LINK_CONCURRENCY", 8),
		LinkSkipLinked:        envutil.Bool("LINK_SKIP_LINKED", false),
	}

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
