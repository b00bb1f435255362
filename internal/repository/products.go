package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/pkg/models"
)

// ProductRepository keeps a catalog of every product the scrapers have
// ever seen, keyed by product URL. Writes come from the fire-and-forget
// persistence path; correctness of the API response never depends on
// this table.
type ProductRepository struct {
	db     Querier
	logger *logrus.Logger
}

func NewProductRepository(db Querier, logger *logrus.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

// UpsertProducts writes the batch in a single multi-row statement.
// Existing rows (same product URL) are refreshed with the latest
// price, image and attributes.
func (r *ProductRepository) UpsertProducts(ctx context.Context, products []models.ScrapedProduct) error {
	if len(products) == 0 {
		return nil
	}

	const fieldsPerRow = 12
	placeholders := make([]string, 0, len(products))
	args := make([]any, 0, len(products)*fieldsPerRow)
	for i, p := range products {
		base := i * fieldsPerRow
		marks := make([]string, fieldsPerRow)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
		args = append(args,
			uuid.New(), p.ProductURL, p.Retailer, p.ProductName, p.Price, p.ImageURL,
			p.Attributes.Gender, p.Attributes.Category, p.Attributes.Color,
			p.Attributes.Material, p.Attributes.Fit, p.Attributes.Brand)
	}

	query := fmt.Sprintf(`
		INSERT INTO products
			(id, product_url, retailer, name, price, image_url,
			 gender, category, color, material, fit, brand)
		VALUES %s
		ON CONFLICT (product_url) DO UPDATE SET
			retailer = EXCLUDED.retailer,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			image_url = EXCLUDED.image_url,
			gender = EXCLUDED.gender,
			category = EXCLUDED.category,
			color = EXCLUDED.color,
			material = EXCLUDED.material,
			fit = EXCLUDED.fit,
			brand = EXCLUDED.brand,
			updated_at = now()`, strings.Join(placeholders, ", "))

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}
