package steps

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/altegra/catalog-backend/internal/ingestion/feed"
)

func intPtr(v int) *int { return &v }

func TestIngestFeedStoresCategoriesAndSkus(t *testing.T) {
	ctx := context.Background()
	snapshot := &feed.Catalog{
		Categories: []feed.Category{
			{ID: 1, Name: "Home"},
			{ID: 2, ParentID: intPtr(1), Name: "Kitchen"},
			{ID: 3, ParentID: intPtr(2), Name: "Cookware"},
		},
		Offers: []feed.Offer{
			{
				ID:         "offer-1",
				Name:       "Cast iron pan",
				Vendor:     "Ferrum",
				CategoryID: 3,
				Price:      "1990.50",
				CurrencyID: "RUB",
				Params: []feed.Param{
					{Name: "Diameter", Value: "26 cm"},
				},
			},
			{
				ID:         "offer-2",
				Name:       "Mystery item",
				CategoryID: 99,
				Price:      "10",
			},
		},
	}

	categories := &fakeCategoryRepo{}
	skus := newFakeSkuRepo()
	deps := IngestFeedDeps{DB: &gorm.DB{}, Log: testLogger(t), Categories: categories, Skus: skus}

	out, err := IngestFeed(ctx, deps, IngestFeedInput{Feed: snapshot, MarketplaceID: 7})
	if err != nil {
		t.Fatalf("IngestFeed: %v", err)
	}
	if out.Categories != 3 || out.Skus != 2 || out.UnresolvedPaths != 1 {
		t.Fatalf("out = %+v, want categories=3 skus=2 unresolved=1", out)
	}
	if len(categories.created) != 3 {
		t.Fatalf("stored %d categories, want 3", len(categories.created))
	}
	if len(skus.skus) != 2 {
		t.Fatalf("stored %d skus, want 2", len(skus.skus))
	}

	pan := skus.skus[0]
	if pan.MarketplaceID != 7 {
		t.Fatalf("MarketplaceID = %d, want 7", pan.MarketplaceID)
	}
	if pan.SourceID != "offer-1" || pan.Title != "Cast iron pan" || pan.Brand != "Ferrum" {
		t.Fatalf("identifying fields not mapped: %+v", pan)
	}
	if pan.CategoryLvl1 == nil || *pan.CategoryLvl1 != "Home" {
		t.Fatalf("CategoryLvl1 = %v, want Home", pan.CategoryLvl1)
	}
	if pan.CategoryLvl3 == nil || *pan.CategoryLvl3 != "Cookware" {
		t.Fatalf("CategoryLvl3 = %v, want Cookware", pan.CategoryLvl3)
	}
	if pan.PriceAfterDiscounts != 1990.50 {
		t.Fatalf("PriceAfterDiscounts = %v, want 1990.50", pan.PriceAfterDiscounts)
	}
	features, err := pan.FeatureMap()
	if err != nil {
		t.Fatalf("FeatureMap: %v", err)
	}
	if features["Diameter"] != "26 cm" {
		t.Fatalf("features = %v, want Diameter=26 cm", features)
	}

	// The offer pointing at an unknown category is kept, with empty levels.
	mystery := skus.skus[1]
	if mystery.SourceID != "offer-2" {
		t.Fatalf("SourceID = %q, want offer-2", mystery.SourceID)
	}
	if mystery.CategoryLvl1 != nil {
		t.Fatalf("CategoryLvl1 = %v, want nil for unresolved path", *mystery.CategoryLvl1)
	}
}

func TestIngestFeedRejectsMissingFeed(t *testing.T) {
	deps := IngestFeedDeps{DB: &gorm.DB{}, Log: testLogger(t), Categories: &fakeCategoryRepo{}, Skus: newFakeSkuRepo()}
	if _, err := IngestFeed(context.Background(), deps, IngestFeedInput{}); err == nil {
		t.Fatalf("IngestFeed accepted a nil feed")
	}
}
