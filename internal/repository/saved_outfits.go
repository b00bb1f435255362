package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/services"
	"github.com/outfitai/backend/pkg/models"
)

// SavedOutfitRepository owns the save workflow rows. The unique
// (user_id, recommendation_id) constraint is the single source of
// truth for duplicate saves; a violation surfaces as ErrConflict.
type SavedOutfitRepository struct {
	db     Querier
	logger *logrus.Logger
}

func NewSavedOutfitRepository(db Querier, logger *logrus.Logger) *SavedOutfitRepository {
	return &SavedOutfitRepository{db: db, logger: logger}
}

func (r *SavedOutfitRepository) CreateSavedOutfit(ctx context.Context, outfit *models.SavedOutfit) error {
	query := `
		INSERT INTO saved_outfits (id, user_id, recommendation_id, saved_at, rating, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		outfit.ID, outfit.UserID, outfit.RecommendationID, outfit.SavedAt, outfit.Rating, outfit.Notes)
	if err != nil {
		return mapError(err)
	}
	return nil
}

const savedOutfitColumns = `id, user_id, recommendation_id, saved_at, rating, notes`

func (r *SavedOutfitRepository) GetSavedOutfit(ctx context.Context, userID, id uuid.UUID) (*models.SavedOutfit, error) {
	query := fmt.Sprintf(`SELECT %s FROM saved_outfits WHERE id = $1 AND user_id = $2`, savedOutfitColumns)

	var outfit models.SavedOutfit
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&outfit.ID, &outfit.UserID, &outfit.RecommendationID,
		&outfit.SavedAt, &outfit.Rating, &outfit.Notes)
	if err != nil {
		return nil, mapError(err)
	}
	return &outfit, nil
}

func (r *SavedOutfitRepository) ListSavedOutfits(ctx context.Context, userID uuid.UUID) ([]models.SavedOutfit, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM saved_outfits
		WHERE user_id = $1
		ORDER BY saved_at DESC`, savedOutfitColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved outfits: %w", err)
	}
	defer rows.Close()

	var outfits []models.SavedOutfit
	for rows.Next() {
		var outfit models.SavedOutfit
		if err := rows.Scan(
			&outfit.ID, &outfit.UserID, &outfit.RecommendationID,
			&outfit.SavedAt, &outfit.Rating, &outfit.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan saved outfit: %w", err)
		}
		outfits = append(outfits, outfit)
	}
	return outfits, rows.Err()
}

// DeleteSavedOutfit removes a saved outfit owned by the user. Missing
// and unowned rows are indistinguishable to the caller.
func (r *SavedOutfitRepository) DeleteSavedOutfit(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM saved_outfits WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved outfit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}
