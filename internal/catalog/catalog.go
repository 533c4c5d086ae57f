// Package catalog supplies the search engine with an immutable snapshot of
// the storefront menu. The engine never queries storage itself; it consumes
// the flat Record list this package produces.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vkusplato/menu-search/pkg/postgres"
	"github.com/vkusplato/menu-search/pkg/resilience"
)

// Record is one active menu item with its category names resolved.
type Record struct {
	ID              int64
	Name            string
	Description     string
	CategoryName    string
	SubcategoryName string
	Price           float64
	DiscountPercent float64
	ImageURL        string
}

// Store reads menu items from PostgreSQL. Read-only; catalog mutations are
// the back-office's concern and reach this service only as invalidation
// events.
type Store struct {
	db      *postgres.Client
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

// NewStore creates a Store with a circuit breaker around the fetch.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:      db,
		breaker: resilience.NewCircuitBreaker("catalog", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "catalog-store"),
	}
}

const activeItemsQuery = `
SELECT
	mi.id,
	mi.name,
	COALESCE(mi.composition, ''),
	mi.price,
	COALESCE(mi.discount_percent, 0),
	COALESCE(mi.image_url, ''),
	COALESCE(c1.name, ''),
	COALESCE(c2.name, '')
FROM menu_items mi
JOIN ref_dish_categories c ON c.id = mi.ref_category_id
LEFT JOIN ref_dish_categories c1 ON c1.id = COALESCE(c.parent_id, c.id) AND c1.level = 1
LEFT JOIN ref_dish_categories c2 ON c2.id = CASE
	WHEN c.level = 2 THEN c.id
	WHEN c.level = 3 THEN c.parent_id
	ELSE NULL
END
WHERE mi.is_active = TRUE
  AND c.is_active = TRUE
ORDER BY mi.name`

// ActiveItems returns all active menu items with their category and
// subcategory names, ordered by name.
func (s *Store) ActiveItems(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.breaker.Execute(func() error {
		rows, err := s.db.DB.QueryContext(ctx, activeItemsQuery)
		if err != nil {
			return fmt.Errorf("querying menu items: %w", err)
		}
		defer rows.Close()

		records, err = scanRecords(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog fetched", "items", len(records))
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	records := make([]Record, 0, 256)
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.Description,
			&r.Price,
			&r.DiscountPercent,
			&r.ImageURL,
			&r.CategoryName,
			&r.SubcategoryName,
		); err != nil {
			return nil, fmt.Errorf("scanning menu item: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu items: %w", err)
	}
	return records, nil
}
