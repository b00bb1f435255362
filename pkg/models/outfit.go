package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemCategory is the closed set of garment categories used across the
// wardrobe, the generative response contract and product enrichment.
type ItemCategory string

const (
	CategoryTop       ItemCategory = "Top"
	CategoryBottom    ItemCategory = "Bottom"
	CategoryOuterwear ItemCategory = "Outerwear"
	CategoryShoes     ItemCategory = "Shoes"
	CategoryAccessory ItemCategory = "Accessory"
	CategoryDress     ItemCategory = "Dress"
	CategoryOther     ItemCategory = "Other"
)

func ItemCategories() []ItemCategory {
	return []ItemCategory{
		CategoryTop, CategoryBottom, CategoryOuterwear, CategoryShoes,
		CategoryAccessory, CategoryDress, CategoryOther,
	}
}

func (c ItemCategory) Valid() bool {
	switch c {
	case CategoryTop, CategoryBottom, CategoryOuterwear, CategoryShoes,
		CategoryAccessory, CategoryDress, CategoryOther:
		return true
	}
	return false
}

type SortBy string

const (
	SortRelevance SortBy = "relevance"
	SortPriceAsc  SortBy = "price_asc"
	SortPriceDesc SortBy = "price_desc"
)

type WardrobeItem struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	UserID       uuid.UUID    `json:"user_id" db:"user_id"`
	Name         string       `json:"name" db:"name" validate:"required,min=2,max=100"`
	Category     ItemCategory `json:"category" db:"category" validate:"required"`
	Color        string       `json:"color,omitempty" db:"color" validate:"max=50"`
	Material     string       `json:"material,omitempty" db:"material" validate:"max=50"`
	Brand        string       `json:"brand,omitempty" db:"brand" validate:"max=50"`
	Size         string       `json:"size,omitempty" db:"size" validate:"max=20"`
	ImageURL     string       `json:"image_url,omitempty" db:"image_url"`
	Notes        string       `json:"notes,omitempty" db:"notes"`
	AddedAt      time.Time    `json:"added_at" db:"added_at"`
	LastWorn     *time.Time   `json:"last_worn,omitempty" db:"last_worn"`
	PurchaseDate *time.Time   `json:"purchase_date,omitempty" db:"purchase_date"`
}

type WardrobeItemRequest struct {
	Name         string       `json:"name" binding:"required,min=2,max=100"`
	Category     ItemCategory `json:"category" binding:"required,itemcategory"`
	Color        string       `json:"color" binding:"max=50"`
	Material     string       `json:"material" binding:"max=50"`
	Brand        string       `json:"brand" binding:"max=50"`
	Size         string       `json:"size" binding:"max=20"`
	ImageURL     string       `json:"image_url" binding:"omitempty,url"`
	Notes        string       `json:"notes"`
	PurchaseDate *time.Time   `json:"purchase_date"`
}

type MarkWornRequest struct {
	ItemIDs      []uuid.UUID `json:"item_ids" binding:"required,min=1"`
	EventContext string      `json:"event_context"`
}

// RecommendationContext is the request-scoped input bundle for one
// pipeline run. At most one inspiration source is active at a time;
// an uploaded image takes priority over a URL, which takes priority
// over the profile-picture flag.
type RecommendationContext struct {
	EventType               string   `json:"event_type" binding:"required"`
	StyleGoal               string   `json:"style_goal"`
	Location                string   `json:"location"`
	EventDate               string   `json:"event_date"` // YYYY-MM-DD
	InspirationImageURL     string   `json:"inspirational_image_url" binding:"omitempty,url"`
	UseProfilePicture       bool     `json:"use_profile_picture_for_inspiration"`
	ColorPalette            string   `json:"color_palette"`
	Retailers               []string `json:"retailers_to_search"`
	ProductLimitPerRetailer int      `json:"product_limit_per_retailer" binding:"omitempty,min=1,max=5"`
	SortBy                  SortBy   `json:"sort_by" binding:"omitempty,oneof=relevance price_asc price_desc"`
	MinRating               *float64 `json:"min_rating" binding:"omitempty,min=0,max=5"`
}

// ProductAttributes holds the structured attributes extracted from a
// product title by the best-effort enrichment pass. Empty fields mean
// the attribute was not identified.
type ProductAttributes struct {
	Gender   string `json:"gender,omitempty"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`
	Material string `json:"material,omitempty"`
	Fit      string `json:"fit,omitempty"`
	Brand    string `json:"brand,omitempty"`
}

// ScrapedProduct is one retailer search result. ProductURL is the
// canonical identity used for deduplication and the products table
// unique key.
type ScrapedProduct struct {
	Retailer    string            `json:"retailer"`
	ProductName string            `json:"product_name"`
	Price       string            `json:"price"`
	ProductURL  string            `json:"product_url"`
	ImageURL    string            `json:"image_url,omitempty"`
	Rating      *float64          `json:"rating,omitempty"`
	Attributes  ProductAttributes `json:"attributes,omitempty"`
}

type ComponentAttributes struct {
	Color    string `json:"color,omitempty"`
	Material string `json:"material,omitempty"`
	Fit      string `json:"fit,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
}

// OutfitComponentSuggestion is one recommended piece of an outfit.
// Invariant: FallbackSearchURL is set if and only if ScrapedProducts
// is empty.
type OutfitComponentSuggestion struct {
	Category          ItemCategory        `json:"item_category"`
	Description       string              `json:"description"`
	SearchQuery       string              `json:"search_query"`
	Attributes        ComponentAttributes `json:"attributes,omitempty"`
	ScrapedProducts   []ScrapedProduct    `json:"scraped_products"`
	FallbackSearchURL string              `json:"fallback_search_url,omitempty"`
}

// GeneratedRecommendation is the immutable output of one successful
// pipeline run. Rows are append-only; nothing mutates them after
// creation.
type GeneratedRecommendation struct {
	ID                   uuid.UUID                   `json:"id" db:"id"`
	UserID               uuid.UUID                   `json:"user_id" db:"user_id"`
	CreatedAt            time.Time                   `json:"created_at" db:"created_at"`
	EventTypeContext     string                      `json:"event_type_context" db:"event_type_context"`
	StyleGoalContext     string                      `json:"style_goal_context,omitempty" db:"style_goal_context"`
	InspirationSource    string                      `json:"inspiration_source_info,omitempty" db:"inspiration_source_info"`
	AnalyzedImageSummary string                      `json:"analyzed_image_description,omitempty" db:"analyzed_image_description"`
	Components           []OutfitComponentSuggestion `json:"components"`
	OverallReasoning     string                      `json:"overall_reasoning" db:"overall_reasoning"`
}

type SavedOutfit struct {
	ID               uuid.UUID                `json:"id" db:"id"`
	UserID           uuid.UUID                `json:"user_id" db:"user_id"`
	RecommendationID uuid.UUID                `json:"recommendation_id" db:"recommendation_id"`
	SavedAt          time.Time                `json:"saved_at" db:"saved_at"`
	Rating           *int                     `json:"rating,omitempty" db:"rating"`
	Notes            string                   `json:"notes,omitempty" db:"notes"`
	Recommendation   *GeneratedRecommendation `json:"recommendation,omitempty"`
}

type SaveOutfitRequest struct {
	RecommendationID uuid.UUID `json:"recommendation_id" binding:"required"`
	Rating           *int      `json:"rating" binding:"omitempty,min=1,max=5"`
	Notes            string    `json:"notes"`
}

// WeatherContext is the fail-soft weather/location block fed into the
// prompt. A nil WeatherContext renders as an explicit "unavailable"
// marker, never an omitted section.
type WeatherContext struct {
	LocationName string  `json:"location_name"`
	EventDate    string  `json:"event_date,omitempty"`
	TemperatureC float64 `json:"temperature_c"`
	Condition    string  `json:"condition"`
	Description  string  `json:"description"`
	IsForecast   bool    `json:"is_forecast"`
}
