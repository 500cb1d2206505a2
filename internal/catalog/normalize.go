package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/altegra/catalog-backend/internal/domain"
	"github.com/altegra/catalog-backend/internal/ingestion/feed"
)

const categoryRemainingSeparator = "/"

// Normalizer converts raw feed offers plus their resolved category path into
// canonical SKU records. It is stateless apart from the marketplace id and
// safe for concurrent use.
type Normalizer struct {
	marketplaceID int
}

func NewNormalizer(marketplaceID int) *Normalizer {
	return &Normalizer{marketplaceID: marketplaceID}
}

// Normalize mints a fresh SKU id for every call; the offer's own id survives
// only as SourceID. Missing or malformed numeric fields fall back to their
// defaults, never to an error.
func (n *Normalizer) Normalize(offer feed.Offer, path []string) (*domain.Sku, error) {
	features, err := flattenParams(offer.Params)
	if err != nil {
		return nil, fmt.Errorf("normalize offer %q: encode features: %w", offer.ID, err)
	}

	price := parsePrice(offer.Price)

	sku := &domain.Sku{
		ID:            uuid.New(),
		MarketplaceID: n.marketplaceID,
		SourceID:      strings.TrimSpace(offer.ID),

		Title:       offer.Name,
		Description: offer.Description,
		Brand:       offer.Vendor,
		SellerName:  offer.VendorCode,
		ImageURL:    offer.Picture,

		CategoryID: offer.CategoryID,

		Features: features,

		PriceBeforeDiscounts: price,
		PriceAfterDiscounts:  price,

		Currency: offer.CurrencyID,
		Barcode:  offer.Barcode,
	}
	sku.CategoryLvl1, sku.CategoryLvl2, sku.CategoryLvl3, sku.CategoryRemaining = splitCategoryLevels(path)
	return sku, nil
}

// splitCategoryLevels maps a root-first category path onto the three fixed
// level slots plus a joined remainder. A short path leaves the deeper slots
// nil; an empty path leaves everything nil.
func splitCategoryLevels(path []string) (lvl1, lvl2, lvl3, remaining *string) {
	if len(path) > 0 {
		lvl1 = &path[0]
	}
	if len(path) > 1 {
		lvl2 = &path[1]
	}
	if len(path) > 2 {
		lvl3 = &path[2]
	}
	if len(path) > 3 {
		rest := strings.Join(path[3:], categoryRemainingSeparator)
		remaining = &rest
	}
	return lvl1, lvl2, lvl3, remaining
}

// flattenParams collapses raw attribute pairs into the feature map. A pair
// contributes only when both trimmed name and value are non-empty; a repeated
// name overwrites the earlier value (declaration order wins last).
func flattenParams(params []feed.Param) (datatypes.JSON, error) {
	features := make(map[string]string, len(params))
	for _, p := range params {
		name := strings.TrimSpace(p.Name)
		value := strings.TrimSpace(p.Value)
		if name == "" || value == "" {
			continue
		}
		features[name] = value
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func parsePrice(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}
