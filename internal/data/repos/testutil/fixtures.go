package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/domain"
)

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, id int, parentID *int, name string) *domain.Category {
	tb.Helper()
	c := &domain.Category{
		ID:       id,
		ParentID: parentID,
		Name:     name,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedSku(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, features map[string]string) *domain.Sku {
	tb.Helper()
	if features == nil {
		features = map[string]string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		tb.Fatalf("seed sku features: %v", err)
	}
	s := &domain.Sku{
		ID:            uuid.New(),
		MarketplaceID: 1,
		SourceID:      "src-" + title,
		Title:         title,
		CategoryID:    1,
		Features:      datatypes.JSON(raw),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sku: %v", err)
	}
	return s
}
