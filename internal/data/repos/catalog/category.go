package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/domain"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, categories []*domain.Category) error
	GetAll(ctx context.Context, tx *gorm.DB) ([]domain.Category, error)
	// ResolvePathSQL resolves a root-first ancestor path with a recursive CTE,
	// as a relational alternative to the in-memory tree. The walk is depth
	// capped so cyclic parent data cannot recurse forever.
	ResolvePathSQL(ctx context.Context, tx *gorm.DB, leafID int) ([]string, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(ctx context.Context, tx *gorm.DB, categories []*domain.Category) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(categories) == 0 {
		return nil
	}

	const batchSize = 500
	return transaction.WithContext(ctx).CreateInBatches(categories, batchSize).Error
}

func (r *categoryRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]domain.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []domain.Category
	if err := transaction.WithContext(ctx).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

const resolvePathQuery = `
WITH RECURSIVE category_path AS (
    SELECT id, parent_id, name, 1 AS level
    FROM category
    WHERE id = ?
    UNION ALL
    SELECT c.id, c.parent_id, c.name, cp.level + 1
    FROM category c
    JOIN category_path cp ON cp.parent_id = c.id
    WHERE cp.level < 64
)
SELECT name FROM category_path ORDER BY level DESC`

func (r *categoryRepo) ResolvePathSQL(ctx context.Context, tx *gorm.DB, leafID int) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var names []string
	if err := transaction.WithContext(ctx).
		Raw(resolvePathQuery, leafID).
		Scan(&names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
