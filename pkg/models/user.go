package models

import (
	"time"

	"github.com/google/uuid"
)

type BodyType string

const (
	BodyTypeUnspecified BodyType = "Unspecified"
	BodyTypePear        BodyType = "Pear"
	BodyTypeApple       BodyType = "Apple"
	BodyTypeHourglass   BodyType = "Hourglass"
	BodyTypeRectangle   BodyType = "Rectangle"
	BodyTypeEctomorph   BodyType = "Ectomorph"
	BodyTypeMesomorph   BodyType = "Mesomorph"
	BodyTypeEndomorph   BodyType = "Endomorph"
)

type SkinTone string

const (
	SkinToneUnspecified SkinTone = "Unspecified"
	SkinToneWarm        SkinTone = "Warm"
	SkinToneCool        SkinTone = "Cool"
	SkinToneNeutral     SkinTone = "Neutral"
)

// UserProfile is a read-only input to the recommendation pipeline;
// it is owned and mutated by the user-management endpoints only.
type UserProfile struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	FullName          string    `json:"full_name,omitempty" db:"full_name"`
	Gender            string    `json:"gender,omitempty" db:"gender"`
	AgeRange          string    `json:"age_range,omitempty" db:"age_range"`
	BodyType          BodyType  `json:"body_type,omitempty" db:"body_type"`
	SkinTone          SkinTone  `json:"skin_tone,omitempty" db:"skin_tone"`
	HeightCm          *int      `json:"height_cm,omitempty" db:"height_cm"`
	WeightKg          *float64  `json:"weight_kg,omitempty" db:"weight_kg"`
	BodyMeasurements  string    `json:"body_measurements,omitempty" db:"body_measurements"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty" db:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateProfileRequest struct {
	FullName         string   `json:"full_name" binding:"max=100"`
	Gender           string   `json:"gender" binding:"max=30"`
	AgeRange         string   `json:"age_range" binding:"max=20"`
	BodyType         BodyType `json:"body_type"`
	SkinTone         SkinTone `json:"skin_tone"`
	HeightCm         *int     `json:"height_cm" binding:"omitempty,gt=0"`
	WeightKg         *float64 `json:"weight_kg" binding:"omitempty,gt=0"`
	BodyMeasurements string   `json:"body_measurements" binding:"max=200"`
}
