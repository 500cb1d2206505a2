package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/data/repos"
	"github.com/altegra/catalog-backend/internal/ingestion/feed"
	"github.com/altegra/catalog-backend/internal/modules/catalog/steps"
	"github.com/altegra/catalog-backend/internal/platform/elastic"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

type PipelineService interface {
	Run(ctx context.Context, snapshot *feed.Catalog) (PipelineResult, error)
}

// PipelineOptions carries the run-level knobs, resolved from configuration by
// the caller. Zero values fall back to the step defaults.
type PipelineOptions struct {
	MarketplaceID  int
	IndexBatchSize int

	ScoreThreshold  float64
	MaxSimilar      int
	LinkConcurrency int
	SkipLinked      bool
}

type PipelineResult struct {
	Categories      int           `json:"categories"`
	Skus            int           `json:"skus"`
	UnresolvedPaths int           `json:"unresolved_paths"`
	Indexed         int           `json:"indexed"`
	Linked          int           `json:"linked"`
	LinkFailed      int           `json:"link_failed"`
	Elapsed         time.Duration `json:"elapsed"`
}

type pipelineService struct {
	db    *gorm.DB
	log   *logger.Logger
	repos *repos.Repos
	index elastic.SearchIndex
	opts  PipelineOptions
}

func NewPipelineService(db *gorm.DB, log *logger.Logger, r *repos.Repos, index elastic.SearchIndex, opts PipelineOptions) (PipelineService, error) {
	if db == nil || log == nil || r == nil || index == nil {
		return nil, fmt.Errorf("pipeline service: missing dependency")
	}
	return &pipelineService{
		db:    db,
		log:   log.With("service", "PipelineService"),
		repos: r,
		index: index,
		opts:  opts,
	}, nil
}

// Run executes the full catalog pipeline over one feed snapshot: recreate the
// search index, ingest and normalize the feed, index every stored SKU, then
// link similar items. Each stage is fatal except per-item link failures, which
// the linking step absorbs and reports.
func (s *pipelineService) Run(ctx context.Context, snapshot *feed.Catalog) (PipelineResult, error) {
	start := time.Now()
	result := PipelineResult{}

	if err := s.index.EnsureIndex(ctx); err != nil {
		return result, fmt.Errorf("pipeline: ensure index: %w", err)
	}

	ingested, err := steps.IngestFeed(ctx,
		steps.IngestFeedDeps{DB: s.db, Log: s.log, Categories: s.repos.Categories, Skus: s.repos.Skus},
		steps.IngestFeedInput{Feed: snapshot, MarketplaceID: s.opts.MarketplaceID},
	)
	if err != nil {
		return result, fmt.Errorf("pipeline: %w", err)
	}
	result.Categories = ingested.Categories
	result.Skus = ingested.Skus
	result.UnresolvedPaths = ingested.UnresolvedPaths

	indexed, err := steps.IndexProducts(ctx,
		steps.IndexProductsDeps{DB: s.db, Log: s.log, Skus: s.repos.Skus, Index: s.index},
		steps.IndexProductsInput{BatchSize: s.opts.IndexBatchSize},
	)
	if err != nil {
		return result, fmt.Errorf("pipeline: %w", err)
	}
	result.Indexed = indexed.Indexed

	linked, err := steps.LinkSimilar(ctx,
		steps.LinkSimilarDeps{DB: s.db, Log: s.log, Skus: s.repos.Skus, Index: s.index},
		steps.LinkSimilarInput{
			ScoreThreshold: s.opts.ScoreThreshold,
			MaxSimilar:     s.opts.MaxSimilar,
			MaxConcurrency: s.opts.LinkConcurrency,
			SkipLinked:     s.opts.SkipLinked,
		},
	)
	if err != nil {
		return result, fmt.Errorf("pipeline: %w", err)
	}
	result.Linked = linked.Linked
	result.LinkFailed = linked.Failed

	result.Elapsed = time.Since(start)
	s.log.Info("pipeline finished",
		"categories", result.Categories,
		"skus", result.Skus,
		"indexed", result.Indexed,
		"linked", result.Linked,
		"link_failed", result.LinkFailed,
		"elapsed", result.Elapsed,
	)
	return result, nil
}
