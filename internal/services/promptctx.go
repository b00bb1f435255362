package services

import (
	"fmt"
	"strings"

	"github.com/outfitai/backend/pkg/models"
)

// Prompt context formatting. All functions here are pure: structured
// input in, deterministic text out. Section markers are always emitted
// so the prompt keeps a stable shape even when data is missing.

const emptyWardrobeDirective = "User's Wardrobe: Empty. Suggest items that can be purchased."

const weatherUnavailableMarker = "**Location/Weather Context**: Not provided or unavailable."

func FormatUserProfile(user *models.UserProfile) string {
	parts := []string{"User Profile:"}
	if user.Gender != "" {
		parts = append(parts, fmt.Sprintf("- Gender: %s", user.Gender))
	}
	if user.AgeRange != "" {
		parts = append(parts, fmt.Sprintf("- Age Range: %s", user.AgeRange))
	}
	if user.BodyType != "" && user.BodyType != models.BodyTypeUnspecified {
		parts = append(parts, fmt.Sprintf("- Body Type: %s", user.BodyType))
	}
	if user.SkinTone != "" && user.SkinTone != models.SkinToneUnspecified {
		parts = append(parts, fmt.Sprintf("- Skin Tone: %s", user.SkinTone))
	}
	if user.HeightCm != nil {
		parts = append(parts, fmt.Sprintf("- Height: %d cm", *user.HeightCm))
	}
	if user.WeightKg != nil {
		parts = append(parts, fmt.Sprintf("- Weight: %g kg", *user.WeightKg))
	}
	if user.BodyMeasurements != "" {
		parts = append(parts, fmt.Sprintf("- Body Measurements: %s", user.BodyMeasurements))
	}
	return strings.Join(parts, "\n")
}

// FormatWardrobe renders the owned-items block. An empty wardrobe
// always yields the explicit purchase directive; an empty block would
// invite the model to hallucinate owned items.
func FormatWardrobe(items []models.WardrobeItem) string {
	if len(items) == 0 {
		return emptyWardrobeDirective
	}

	lines := []string{"User's Wardrobe (items they own):"}
	for _, item := range items {
		desc := fmt.Sprintf("- %s (Category: %s", item.Name, item.Category)
		if item.Color != "" {
			desc += fmt.Sprintf(", Color: %s", item.Color)
		}
		if item.Material != "" {
			desc += fmt.Sprintf(", Material: %s", item.Material)
		}
		if item.Brand != "" {
			desc += fmt.Sprintf(", Brand: %s", item.Brand)
		}
		desc += ")"
		lines = append(lines, desc)
	}
	return strings.Join(lines, "\n")
}

// FormatEventContext renders the event/style block, folding in the
// inspiration-image analysis when one was produced.
func FormatEventContext(reqCtx *models.RecommendationContext, analyzedImageDesc string) string {
	parts := []string{"**Event Context**"}
	parts = append(parts, fmt.Sprintf("- Event/Occasion/Outfit: %s", reqCtx.EventType))
	if reqCtx.StyleGoal != "" {
		parts = append(parts, fmt.Sprintf("- Desired Style/Mood: %s", reqCtx.StyleGoal))
	}
	if reqCtx.ColorPalette != "" {
		parts = append(parts, fmt.Sprintf("- Color Palette to Follow: %s", reqCtx.ColorPalette))
	}
	if analyzedImageDesc != "" {
		parts = append(parts, fmt.Sprintf("- Analysis of Inspirational Image Provided: %s", analyzedImageDesc))
	} else if reqCtx.InspirationImageURL != "" {
		parts = append(parts, fmt.Sprintf("- User provided an inspirational image URL: %s", reqCtx.InspirationImageURL))
	}
	return strings.Join(parts, "\n")
}

// FormatWeather renders the weather block. A nil context always yields
// the explicit unavailable marker so the prompt structure stays stable.
func FormatWeather(weather *models.WeatherContext) string {
	if weather == nil {
		return weatherUnavailableMarker
	}

	forecastFor := "Today"
	if weather.EventDate != "" {
		forecastFor = weather.EventDate
	}
	description := weather.Description
	if description == "" {
		description = "no additional details"
	}
	return strings.Join([]string{
		"**Location & Weather Context**",
		fmt.Sprintf("- Location: %s", weather.LocationName),
		fmt.Sprintf("- Forecast for: %s", forecastFor),
		fmt.Sprintf("- Temperature: %.1f°C", weather.TemperatureC),
		fmt.Sprintf("- Condition: %s (%s)", weather.Condition, description),
	}, "\n")
}

func allowedCategoriesList() string {
	cats := models.ItemCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// BuildRecommendationPrompt assembles the full stylist prompt from the
// formatted context blocks plus the strict JSON response contract.
func BuildRecommendationPrompt(profileBlock, wardrobeBlock, eventBlock, weatherBlock string) string {
	responseFormat := fmt.Sprintf(`{
  "components": [
    {
      "item_category": "A value from: %s",
      "description": "A highly detailed, descriptive summary of the item.",
      "search_query": "A short, 3-4 word search query INCLUDING THE GENDER (e.g., 'men white linen shirt', 'women tan loafers').",
      "attributes": {
        "color": "e.g., 'dark wash blue', 'off-white'",
        "material": "e.g., 'denim', 'silk', 'cotton-blend'",
        "fit": "e.g., 'slim-fit', 'A-line', 'oversized'",
        "pattern": "e.g., 'floral', 'striped', 'solid'"
      }
    }
  ],
  "overall_reasoning": "A brief explanation for the outfit."
}`, allowedCategoriesList())

	return fmt.Sprintf(`You are a culturally-aware, world-class fashion stylist with mastery in outfit recreation, age-appropriate fashion, gender-specific styling, body shape adaptation, weather readiness, and color theory.

**PRIMARY OBJECTIVE**
Recreate a complete outfit for the user's event. When an inspiration image analysis is provided, match its spirit, silhouette, and signature elements while strictly adapting the outfit to the user's personal profile.

**STYLING RULES (in order):**
1. Event first: functional events (hiking, sports) prioritize comfort and durability; formal or cultural events prioritize appropriate silhouettes, fabrics, and accessories.
2. Gender alignment is non-negotiable: every item must match the user's gender. Unisex items are allowed only when they genuinely suit the outfit and event.
3. Style must be age-appropriate for the user's age group.
4. Choose silhouettes that flatter the stated body type.
5. The color palette must complement the user's skin tone; if a palette is given in the event context, follow it strictly.
6. Make the outfit fully weather-appropriate for the given location and date.
7. Reuse relevant wardrobe items where possible and mix owned items with new suggestions.

**INPUT DATA:**
%s

%s

%s

%s

**RESPONSE FORMAT:**
Respond with only one valid JSON object, adhering strictly to the expected schema. No markdown, comments, or additional text - just the JSON object.

%s`, profileBlock, wardrobeBlock, eventBlock, weatherBlock, responseFormat)
}
