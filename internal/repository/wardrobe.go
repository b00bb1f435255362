package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/services"
	"github.com/outfitai/backend/pkg/models"
)

type WardrobeRepository struct {
	db     Querier
	logger *logrus.Logger
}

func NewWardrobeRepository(db Querier, logger *logrus.Logger) *WardrobeRepository {
	return &WardrobeRepository{db: db, logger: logger}
}

const wardrobeColumns = `id, user_id, name, category, color, material, brand, size,
	image_url, notes, added_at, last_worn, purchase_date`

func (r *WardrobeRepository) CreateItem(ctx context.Context, item *models.WardrobeItem) error {
	query := `
		INSERT INTO wardrobe_items
			(id, user_id, name, category, color, material, brand, size,
			 image_url, notes, added_at, purchase_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.UserID, item.Name, item.Category, item.Color, item.Material,
		item.Brand, item.Size, item.ImageURL, item.Notes, item.AddedAt, item.PurchaseDate)
	if err != nil {
		return fmt.Errorf("failed to create wardrobe item: %w", mapError(err))
	}
	return nil
}

func (r *WardrobeRepository) GetItem(ctx context.Context, userID, id uuid.UUID) (*models.WardrobeItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM wardrobe_items WHERE id = $1 AND user_id = $2`, wardrobeColumns)

	var item models.WardrobeItem
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&item.ID, &item.UserID, &item.Name, &item.Category, &item.Color, &item.Material,
		&item.Brand, &item.Size, &item.ImageURL, &item.Notes, &item.AddedAt,
		&item.LastWorn, &item.PurchaseDate)
	if err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *WardrobeRepository) ListItems(ctx context.Context, userID uuid.UUID) ([]models.WardrobeItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM wardrobe_items
		WHERE user_id = $1
		ORDER BY added_at DESC`, wardrobeColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wardrobe items: %w", err)
	}
	defer rows.Close()

	var items []models.WardrobeItem
	for rows.Next() {
		var item models.WardrobeItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Name, &item.Category, &item.Color, &item.Material,
			&item.Brand, &item.Size, &item.ImageURL, &item.Notes, &item.AddedAt,
			&item.LastWorn, &item.PurchaseDate); err != nil {
			return nil, fmt.Errorf("failed to scan wardrobe item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *WardrobeRepository) UpdateItem(ctx context.Context, item *models.WardrobeItem) error {
	query := `
		UPDATE wardrobe_items
		SET name = $3, category = $4, color = $5, material = $6, brand = $7,
			size = $8, image_url = $9, notes = $10, purchase_date = $11
		WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query,
		item.ID, item.UserID, item.Name, item.Category, item.Color, item.Material,
		item.Brand, item.Size, item.ImageURL, item.Notes, item.PurchaseDate)
	if err != nil {
		return fmt.Errorf("failed to update wardrobe item: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *WardrobeRepository) DeleteItem(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM wardrobe_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete wardrobe item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

// MarkWorn stamps last_worn on the given items and appends a row to the
// wear history. Items not owned by the user are silently skipped by the
// user_id predicate.
func (r *WardrobeRepository) MarkWorn(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, eventContext string) error {
	now := time.Now().UTC()

	query := `UPDATE wardrobe_items SET last_worn = $3 WHERE user_id = $1 AND id = ANY($2)`
	if _, err := r.db.Exec(ctx, query, userID, itemIDs, now); err != nil {
		return fmt.Errorf("failed to mark items worn: %w", err)
	}

	ids := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		ids[i] = id.String()
	}
	historyQuery := `
		INSERT INTO worn_outfit_history (id, user_id, item_ids, event_context, worn_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.Exec(ctx, historyQuery, uuid.New(), userID, strings.Join(ids, ","), eventContext, now); err != nil {
		return fmt.Errorf("failed to record wear history: %w", err)
	}
	return nil
}
