// Package feed parses YML-style catalog feeds: a flat list of <category>
// elements followed by <offer> elements. Parsing is streaming so large
// snapshots do not load into memory twice.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/altegra/catalog-backend/internal/domain"
)

// Category is one raw category record. ParentID is nil for root categories.
type Category struct {
	ID       int    `xml:"id,attr"`
	ParentID *int   `xml:"parentId,attr"`
	Name     string `xml:",chardata"`
}

// Param is one raw attribute name/value pair of an offer.
type Param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Offer is one raw catalog entry. Numeric fields stay unparsed strings here;
// the normalizer applies defaults instead of failing on malformed values.
type Offer struct {
	ID          string  `xml:"id,attr"`
	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	Vendor      string  `xml:"vendor"`
	VendorCode  string  `xml:"vendorCode"`
	Picture     string  `xml:"picture"`
	CategoryID  int     `xml:"categoryId"`
	Price       string  `xml:"price"`
	CurrencyID  string  `xml:"currencyId"`
	Barcode     string  `xml:"barcode"`
	Params      []Param `xml:"param"`
}

// Catalog is one fully parsed feed snapshot.
type Catalog struct {
	Categories []Category
	Offers     []Offer
}

// Domain converts the raw category to its canonical record.
func (c Category) Domain() domain.Category {
	return domain.Category{
		ID:       c.ID,
		ParentID: c.ParentID,
		Name:     c.Name,
	}
}

// Parse decodes a feed from r by walking the token stream and decoding each
// category and offer element as it closes.
func Parse(r io.Reader) (*Catalog, error) {
	dec := xml.NewDecoder(r)
	out := &Catalog{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("feed: read token: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "category":
			var c Category
			if err := dec.DecodeElement(&c, &start); err != nil {
				return nil, fmt.Errorf("feed: decode category: %w", err)
			}
			out.Categories = append(out.Categories, c)
		case "offer":
			var o Offer
			if err := dec.DecodeElement(&o, &start); err != nil {
				return nil, fmt.Errorf("feed: decode offer: %w", err)
			}
			out.Offers = append(out.Offers, o)
		}
	}
	return out, nil
}
