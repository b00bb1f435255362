package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/pkg/models"
)

// RecommendationRepository owns the append-only generated
// recommendations table. Components are stored as a JSONB document;
// the pipeline always reads them back whole.
type RecommendationRepository struct {
	db     Querier
	logger *logrus.Logger
}

func NewRecommendationRepository(db Querier, logger *logrus.Logger) *RecommendationRepository {
	return &RecommendationRepository{db: db, logger: logger}
}

func (r *RecommendationRepository) CreateRecommendation(ctx context.Context, rec *models.GeneratedRecommendation) error {
	componentsJSON, err := json.Marshal(rec.Components)
	if err != nil {
		return fmt.Errorf("failed to encode components: %w", err)
	}

	query := `
		INSERT INTO generated_recommendations
			(id, user_id, created_at, event_type_context, style_goal_context,
			 inspiration_source_info, analyzed_image_description, components_json, overall_reasoning)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		rec.ID, rec.UserID, rec.CreatedAt, rec.EventTypeContext, rec.StyleGoalContext,
		rec.InspirationSource, rec.AnalyzedImageSummary, componentsJSON, rec.OverallReasoning)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", mapError(err))
	}
	return nil
}

const recommendationColumns = `id, user_id, created_at, event_type_context, style_goal_context,
	inspiration_source_info, analyzed_image_description, components_json, overall_reasoning`

func (r *RecommendationRepository) GetRecommendation(ctx context.Context, id uuid.UUID) (*models.GeneratedRecommendation, error) {
	query := fmt.Sprintf(`SELECT %s FROM generated_recommendations WHERE id = $1`, recommendationColumns)

	rec, err := scanRecommendation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

func (r *RecommendationRepository) ListRecommendations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.GeneratedRecommendation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM generated_recommendations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, recommendationColumns)

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []models.GeneratedRecommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (*models.GeneratedRecommendation, error) {
	var (
		rec            models.GeneratedRecommendation
		componentsJSON []byte
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.CreatedAt, &rec.EventTypeContext, &rec.StyleGoalContext,
		&rec.InspirationSource, &rec.AnalyzedImageSummary, &componentsJSON, &rec.OverallReasoning)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(componentsJSON, &rec.Components); err != nil {
		return nil, fmt.Errorf("failed to decode components: %w", err)
	}
	return &rec, nil
}
