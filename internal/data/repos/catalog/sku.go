package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/domain"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

type SkuRepo interface {
	Create(ctx context.Context, tx *gorm.DB, skus []*domain.Sku) error
	// List returns the full SKU set in insertion order. The linking stage
	// depends on this order being stable for a fixed catalog.
	List(ctx context.Context, tx *gorm.DB) ([]*domain.Sku, error)
	// ListUnlinked returns only rows the linker has never updated
	// (similar_sku IS NULL), in the same stable order as List.
	ListUnlinked(ctx context.Context, tx *gorm.DB) ([]*domain.Sku, error)
	// UpdateSimilar persists the ordered similar-item id list for one SKU.
	// ids may be empty; the column is then an empty JSON array, which is
	// distinct from the untouched NULL.
	UpdateSimilar(ctx context.Context, tx *gorm.DB, id uuid.UUID, ids []uuid.UUID) error
	CountLinked(ctx context.Context, tx *gorm.DB) (int64, error)
}

type skuRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkuRepo(db *gorm.DB, baseLog *logger.Logger) SkuRepo {
	return &skuRepo{db: db, log: baseLog.With("repo", "SkuRepo")}
}

func (r *skuRepo) Create(ctx context.Context, tx *gorm.DB, skus []*domain.Sku) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(skus) == 0 {
		return nil
	}

	// Keep batches small because descriptions are large.
	const batchSize = 200
	return transaction.WithContext(ctx).CreateInBatches(skus, batchSize).Error
}

func (r *skuRepo) List(ctx context.Context, tx *gorm.DB) ([]*domain.Sku, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Sku
	if err := transaction.WithContext(ctx).
		Order("inserted_at ASC, uuid ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skuRepo) ListUnlinked(ctx context.Context, tx *gorm.DB) ([]*domain.Sku, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Sku
	if err := transaction.WithContext(ctx).
		Where("similar_sku IS NULL").
		Order("inserted_at ASC, uuid ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *skuRepo) UpdateSimilar(ctx context.Context, tx *gorm.DB, id uuid.UUID, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return fmt.Errorf("sku id required")
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode similar ids for %s: %w", id, err)
	}
	return transaction.WithContext(ctx).
		Model(&domain.Sku{}).
		Where("uuid = ?", id).
		Updates(map[string]interface{}{
			"similar_sku": datatypes.JSON(raw),
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *skuRepo) CountLinked(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Sku{}).
		Where("similar_sku IS NOT NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
