// Package steps implements the staged catalog pipeline: feed ingestion and
// normalization, search indexing, and similarity linking. Each step takes an
// explicit Deps/Input pair and returns an Output with run counters.
package steps

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/catalog"
	"github.com/altegra/catalog-backend/internal/data/repos"
	"github.com/altegra/catalog-backend/internal/domain"
	"github.com/altegra/catalog-backend/internal/ingestion/feed"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

type IngestFeedDeps struct {
	DB         *gorm.DB
	Log        *logger.Logger
	Categories repos.CategoryRepo
	Skus       repos.SkuRepo
}

type IngestFeedInput struct {
	Feed          *feed.Catalog
	MarketplaceID int
}

type IngestFeedOutput struct {
	Categories int `json:"categories"`
	Skus       int `json:"skus"`
	// UnresolvedPaths counts offers whose declared category id resolved to
	// no path at all. They are stored with empty category levels, not dropped.
	UnresolvedPaths int `json:"unresolved_paths"`
}

// IngestFeed stores the category set, then resolves, normalizes and stores
// every offer of the snapshot. Unresolvable category references yield partial
// paths and never abort the ingest.
func IngestFeed(ctx context.Context, deps IngestFeedDeps, in IngestFeedInput) (IngestFeedOutput, error) {
	out := IngestFeedOutput{}
	if deps.DB == nil || deps.Log == nil || deps.Categories == nil || deps.Skus == nil {
		return out, fmt.Errorf("ingest_feed: missing deps")
	}
	if in.Feed == nil {
		return out, fmt.Errorf("ingest_feed: missing feed")
	}
	if in.MarketplaceID <= 0 {
		in.MarketplaceID = 1
	}
	log := deps.Log.With("step", "ingest_feed")

	categories := make([]*domain.Category, 0, len(in.Feed.Categories))
	treeInput := make([]domain.Category, 0, len(in.Feed.Categories))
	for _, raw := range in.Feed.Categories {
		c := raw.Domain()
		categories = append(categories, &c)
		treeInput = append(treeInput, c)
	}
	if err := deps.Categories.Create(ctx, nil, categories); err != nil {
		return out, fmt.Errorf("ingest_feed: store categories: %w", err)
	}
	out.Categories = len(categories)

	tree := catalog.NewCategoryTree(treeInput)
	normalizer := catalog.NewNormalizer(in.MarketplaceID)

	skus := make([]*domain.Sku, 0, len(in.Feed.Offers))
	for _, offer := range in.Feed.Offers {
		path := tree.ResolvePath(offer.CategoryID)
		if len(path) == 0 {
			out.UnresolvedPaths++
			log.Warn("category path unresolved",
				"offer_id", offer.ID,
				"category_id", offer.CategoryID,
			)
		}
		sku, err := normalizer.Normalize(offer, path)
		if err != nil {
			return out, fmt.Errorf("ingest_feed: %w", err)
		}
		skus = append(skus, sku)
	}
	if err := deps.Skus.Create(ctx, nil, skus); err != nil {
		return out, fmt.Errorf("ingest_feed: store skus: %w", err)
	}
	out.Skus = len(skus)

	log.Info("feed ingested",
		"categories", out.Categories,
		"skus", out.Skus,
		"unresolved_paths", out.UnresolvedPaths,
	)
	return out, nil
}
