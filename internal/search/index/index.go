// Package index derives the in-memory search index from catalog records and
// memoises it for a bounded time window.
package index

import (
	"github.com/vkusplato/menu-search/internal/catalog"
	"github.com/vkusplato/menu-search/internal/search/rustext"
)

// Item is one catalog record with its searchable fields pre-normalised and
// tokenised. Items are built once per index rebuild and read-only afterward.
type Item struct {
	ID                    int64
	Name                  string
	NormalizedTitle       string
	TitleTokens           []string
	Description           string
	NormalizedDescription string
	DescriptionTokens     []string
	CategoryName          string
	CategoryTokens        []string
	SubcategoryName       string
	SubcategoryTokens     []string
	Price                 float64
	DiscountPercent       float64
	ImageURL              string
}

// Build derives an Item per record. Pure and deterministic: the same records
// always produce byte-identical items.
func Build(records []catalog.Record) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = Item{
			ID:                    r.ID,
			Name:                  r.Name,
			NormalizedTitle:       rustext.Normalize(r.Name),
			TitleTokens:           rustext.NormalizeAndTokenize(r.Name),
			Description:           r.Description,
			NormalizedDescription: rustext.Normalize(r.Description),
			DescriptionTokens:     rustext.NormalizeAndTokenize(r.Description),
			CategoryName:          r.CategoryName,
			CategoryTokens:        rustext.NormalizeAndTokenize(r.CategoryName),
			SubcategoryName:       r.SubcategoryName,
			SubcategoryTokens:     rustext.NormalizeAndTokenize(r.SubcategoryName),
			Price:                 r.Price,
			DiscountPercent:       r.DiscountPercent,
			ImageURL:              r.ImageURL,
		}
	}
	return items
}
