package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outfitai/backend/pkg/models"
)

func TestFormatWardrobe_EmptyYieldsPurchaseDirective(t *testing.T) {
	assert.Equal(t, emptyWardrobeDirective, FormatWardrobe(nil))
	assert.Equal(t, emptyWardrobeDirective, FormatWardrobe([]models.WardrobeItem{}))
}

func TestFormatWardrobe_ListsItems(t *testing.T) {
	items := []models.WardrobeItem{
		{Name: "Blue Oxford Shirt", Category: models.CategoryTop, Color: "Blue", Material: "Cotton"},
		{Name: "Black Chinos", Category: models.CategoryBottom, Brand: "Uniqlo"},
	}

	block := FormatWardrobe(items)
	assert.Contains(t, block, "Blue Oxford Shirt")
	assert.Contains(t, block, "Category: Top")
	assert.Contains(t, block, "Color: Blue")
	assert.Contains(t, block, "Brand: Uniqlo")
	assert.NotContains(t, block, emptyWardrobeDirective)
}

func TestFormatWeather_NilYieldsUnavailableMarker(t *testing.T) {
	assert.Equal(t, weatherUnavailableMarker, FormatWeather(nil))
}

func TestFormatWeather_RendersContext(t *testing.T) {
	block := FormatWeather(&models.WeatherContext{
		LocationName: "Udaipur, India",
		EventDate:    "2026-09-05",
		TemperatureC: 31.4,
		Condition:    "Clouds",
		Description:  "scattered clouds",
	})

	assert.Contains(t, block, "Udaipur, India")
	assert.Contains(t, block, "2026-09-05")
	assert.Contains(t, block, "31.4°C")
	assert.Contains(t, block, "Clouds (scattered clouds)")
}

func TestFormatUserProfile_SkipsUnspecifiedFields(t *testing.T) {
	height := 178
	user := &models.UserProfile{
		Gender:   "Male",
		BodyType: models.BodyTypeUnspecified,
		SkinTone: models.SkinToneWarm,
		HeightCm: &height,
	}

	block := FormatUserProfile(user)
	assert.Contains(t, block, "Gender: Male")
	assert.Contains(t, block, "Skin Tone: Warm")
	assert.Contains(t, block, "Height: 178 cm")
	assert.NotContains(t, block, "Body Type")
}

func TestFormatEventContext_ImageAnalysisBeatsURLMention(t *testing.T) {
	reqCtx := &models.RecommendationContext{
		EventType:           "Wedding reception",
		InspirationImageURL: "https://example.com/look.jpg",
	}

	withAnalysis := FormatEventContext(reqCtx, "A flowing pastel lehenga look")
	assert.Contains(t, withAnalysis, "A flowing pastel lehenga look")
	assert.NotContains(t, withAnalysis, "https://example.com/look.jpg")

	withoutAnalysis := FormatEventContext(reqCtx, "")
	assert.Contains(t, withoutAnalysis, "https://example.com/look.jpg")
}

func TestBuildRecommendationPrompt_Deterministic(t *testing.T) {
	user := &models.UserProfile{Gender: "Female", AgeRange: "25-34"}
	reqCtx := &models.RecommendationContext{EventType: "Job interview"}

	build := func() string {
		return BuildRecommendationPrompt(
			FormatUserProfile(user),
			FormatWardrobe(nil),
			FormatEventContext(reqCtx, ""),
			FormatWeather(nil),
		)
	}

	first := build()
	require.Equal(t, first, build())

	assert.Contains(t, first, emptyWardrobeDirective)
	assert.Contains(t, first, weatherUnavailableMarker)
	assert.Contains(t, first, "Job interview")

	// The response contract must enumerate every allowed category.
	for _, cat := range models.ItemCategories() {
		assert.True(t, strings.Contains(first, string(cat)), "prompt missing category %s", cat)
	}
}
