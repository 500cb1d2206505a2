package steps

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/data/repos"
	"github.com/altegra/catalog-backend/internal/domain"
	"github.com/altegra/catalog-backend/internal/platform/elastic"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

const defaultIndexBatchSize = 500

type IndexProductsDeps struct {
	DB    *gorm.DB
	Log   *logger.Logger
	Skus  repos.SkuRepo
	Index elastic.SearchIndex
}

type IndexProductsInput struct {
	BatchSize int
}

type IndexProductsOutput struct {
	Indexed int `json:"indexed"`
}

// IndexProducts scans every stored SKU and bulk-upserts them into the search
// index keyed by SKU id. An index failure is fatal for the stage: the linking
// stage must only run over a fully indexed snapshot.
func IndexProducts(ctx context.Context, deps IndexProductsDeps, in IndexProductsInput) (IndexProductsOutput, error) {
	out := IndexProductsOutput{}
	if deps.DB == nil || deps.Log == nil || deps.Skus == nil || deps.Index == nil {
		return out, fmt.Errorf("index_products: missing deps")
	}
	if in.BatchSize <= 0 {
		in.BatchSize = defaultIndexBatchSize
	}
	log := deps.Log.With("step", "index_products")

	skus, err := deps.Skus.List(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("index_products: list skus: %w", err)
	}

	for start := 0; start < len(skus); start += in.BatchSize {
		end := start + in.BatchSize
		if end > len(skus) {
			end = len(skus)
		}
		docs := make([]elastic.Document, 0, end-start)
		for _, sku := range skus[start:end] {
			doc, err := productDocument(sku)
			if err != nil {
				return out, fmt.Errorf("index_products: build document for %s: %w", sku.ID, err)
			}
			docs = append(docs, doc)
		}
		if err := deps.Index.BulkUpsert(ctx, docs); err != nil {
			return out, fmt.Errorf("index_products: bulk upsert: %w", err)
		}
		out.Indexed += len(docs)
	}

	log.Info("products indexed", "indexed", out.Indexed)
	return out, nil
}

// productDocument projects a SKU onto the search document: the similarity
// fields plus identifying metadata.
func productDocument(sku *domain.Sku) (elastic.Document, error) {
	features, err := sku.FeatureMap()
	if err != nil {
		return elastic.Document{}, err
	}
	return elastic.Document{
		ID: sku.ID.String(),
		Fields: map[string]any{
			"uuid":           sku.ID.String(),
			"marketplace_id": sku.MarketplaceID,
			"source_id":      sku.SourceID,
			"title":          sku.Title,
			"description":    sku.Description,
			"brand":          sku.Brand,
			"features":       features,
		},
	}, nil
}
