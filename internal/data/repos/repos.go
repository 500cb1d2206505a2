package repos

import (
	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/data/repos/catalog"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

type CategoryRepo = catalog.CategoryRepo
type SkuRepo = catalog.SkuRepo

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}

func NewSkuRepo(db *gorm.DB, baseLog *logger.Logger) SkuRepo {
	return catalog.NewSkuRepo(db, baseLog)
}

// Repos bundles every repository for wiring.
type Repos struct {
	Categories CategoryRepo
	Skus       SkuRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) Repos {
	return Repos{
		Categories: NewCategoryRepo(db, baseLog),
		Skus:       NewSkuRepo(db, baseLog),
	}
}
