package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/services"
	"github.com/outfitai/backend/pkg/models"
)

type UserRepository struct {
	db     Querier
	logger *logrus.Logger
}

func NewUserRepository(db Querier, logger *logrus.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, email, full_name, gender, age_range, body_type, skin_tone,
	height_cm, weight_kg, body_measurements, profile_picture_url, created_at, updated_at`

func (r *UserRepository) CreateUser(ctx context.Context, user *models.UserProfile, passwordHash string) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, body_type, skin_tone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, passwordHash, user.FullName,
		user.BodyType, user.SkinTone, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

func (r *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var user models.UserProfile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &user.Gender, &user.AgeRange,
		&user.BodyType, &user.SkinTone, &user.HeightCm, &user.WeightKg,
		&user.BodyMeasurements, &user.ProfilePictureURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, string, error) {
	query := fmt.Sprintf(`SELECT %s, password_hash FROM users WHERE email = $1`, userColumns)

	var (
		user models.UserProfile
		hash string
	)
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.Gender, &user.AgeRange,
		&user.BodyType, &user.SkinTone, &user.HeightCm, &user.WeightKg,
		&user.BodyMeasurements, &user.ProfilePictureURL, &user.CreatedAt, &user.UpdatedAt,
		&hash)
	if err != nil {
		return nil, "", mapError(err)
	}
	return &user, hash, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *models.UserProfile) error {
	query := `
		UPDATE users
		SET full_name = $2, gender = $3, age_range = $4, body_type = $5, skin_tone = $6,
			height_cm = $7, weight_kg = $8, body_measurements = $9, profile_picture_url = $10,
			updated_at = $11
		WHERE id = $1`

	user.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.FullName, user.Gender, user.AgeRange, user.BodyType, user.SkinTone,
		user.HeightCm, user.WeightKg, user.BodyMeasurements, user.ProfilePictureURL,
		user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}
