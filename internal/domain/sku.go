package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Sku is the canonical denormalized record for one catalog offer. The row is
// insert-only except for SimilarSku, which the linking stage sets exactly once
// per run. A NULL SimilarSku means the linker never reached this row; an empty
// JSON array means it ran and found nothing above the score threshold.
type Sku struct {
	ID            uuid.UUID `gorm:"type:uuid;column:uuid;primaryKey" json:"uuid"`
	MarketplaceID int       `gorm:"column:marketplace_id" json:"marketplace_id"`
	SourceID      string    `gorm:"column:source_id;type:text;index" json:"source_id"`

	Title       string `gorm:"column:title;type:text" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Brand       string `gorm:"column:brand;type:text" json:"brand"`
	SellerName  string `gorm:"column:seller_name;type:text" json:"seller_name"`
	ImageURL    string `gorm:"column:first_image_url;type:text" json:"first_image_url"`

	CategoryID        int     `gorm:"column:category_id;index" json:"category_id"`
	CategoryLvl1      *string `gorm:"column:category_lvl_1;type:text" json:"category_lvl_1,omitempty"`
	CategoryLvl2      *string `gorm:"column:category_lvl_2;type:text" json:"category_lvl_2,omitempty"`
	CategoryLvl3      *string `gorm:"column:category_lvl_3;type:text" json:"category_lvl_3,omitempty"`
	CategoryRemaining *string `gorm:"column:category_remaining;type:text" json:"category_remaining,omitempty"`

	Features datatypes.JSON `gorm:"column:features;type:jsonb" json:"features"`

	RatingCount          int     `gorm:"column:rating_count" json:"rating_count"`
	RatingValue          float64 `gorm:"column:rating_value" json:"rating_value"`
	PriceBeforeDiscounts float64 `gorm:"column:price_before_discounts" json:"price_before_discounts"`
	Discount             float64 `gorm:"column:discount" json:"discount"`
	PriceAfterDiscounts  float64 `gorm:"column:price_after_discounts" json:"price_after_discounts"`
	Bonuses              int     `gorm:"column:bonuses" json:"bonuses"`
	Sales                int     `gorm:"column:sales" json:"sales"`

	Currency string `gorm:"column:currency;type:text" json:"currency"`
	Barcode  string `gorm:"column:barcode;type:text" json:"barcode"`

	SimilarSku datatypes.JSON `gorm:"column:similar_sku;type:jsonb" json:"similar_sku,omitempty"`

	InsertedAt time.Time `gorm:"column:inserted_at;not null;default:now()" json:"inserted_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Sku) TableName() string { return "sku" }

// FeatureMap decodes the flattened attribute set. A NULL column decodes to an
// empty map.
func (s *Sku) FeatureMap() (map[string]string, error) {
	if len(s.Features) == 0 {
		return map[string]string{}, nil
	}
	out := map[string]string{}
	if err := json.Unmarshal(s.Features, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SimilarSkuIDs decodes the persisted similar-item link list. Returns
// (nil, false, nil) when the linker has not touched the row yet.
func (s *Sku) SimilarSkuIDs() ([]uuid.UUID, bool, error) {
	if len(s.SimilarSku) == 0 {
		return nil, false, nil
	}
	ids := []uuid.UUID{}
	if err := json.Unmarshal(s.SimilarSku, &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}
