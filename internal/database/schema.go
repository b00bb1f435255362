package database

import (
	"context"
	"fmt"
	"time"
)

// ensureSchema creates the tables the service owns. Statements are
// idempotent so a restart against an existing database is a no-op.
func (db *Database) ensureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			age_range TEXT NOT NULL DEFAULT '',
			body_type TEXT NOT NULL DEFAULT 'Unspecified',
			skin_tone TEXT NOT NULL DEFAULT 'Unspecified',
			height_cm INT,
			weight_kg DOUBLE PRECISION,
			body_measurements TEXT NOT NULL DEFAULT '',
			profile_picture_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS wardrobe_items (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			material TEXT NOT NULL DEFAULT '',
			brand TEXT NOT NULL DEFAULT '',
			size TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_worn TIMESTAMPTZ,
			purchase_date TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wardrobe_items_user ON wardrobe_items(user_id)`,
		`CREATE TABLE IF NOT EXISTS generated_recommendations (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			event_type_context TEXT NOT NULL,
			style_goal_context TEXT NOT NULL DEFAULT '',
			inspiration_source_info TEXT NOT NULL DEFAULT '',
			analyzed_image_description TEXT NOT NULL DEFAULT '',
			components_json JSONB NOT NULL,
			overall_reasoning TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generated_recommendations_user ON generated_recommendations(user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS saved_outfits (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recommendation_id UUID NOT NULL REFERENCES generated_recommendations(id) ON DELETE CASCADE,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			rating INT,
			notes TEXT NOT NULL DEFAULT '',
			UNIQUE (user_id, recommendation_id)
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			product_url TEXT NOT NULL UNIQUE,
			retailer TEXT NOT NULL,
			name TEXT NOT NULL,
			price TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			material TEXT NOT NULL DEFAULT '',
			fit TEXT NOT NULL DEFAULT '',
			brand TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS worn_outfit_history (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			item_ids TEXT NOT NULL,
			event_context TEXT NOT NULL DEFAULT '',
			worn_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.PG.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	db.logger.Info("Database schema verified")
	return nil
}
