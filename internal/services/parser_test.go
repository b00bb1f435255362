package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outfitai/backend/pkg/models"
)

const validResponse = `{
	"components": [
		{"item_category": "Top", "description": "Crisp white linen shirt", "search_query": "men white linen shirt"},
		{"item_category": "Bottom", "description": "Charcoal wool trousers", "search_query": "men charcoal trousers"},
		{"item_category": "Shoes", "description": "Black leather oxfords", "search_query": "men black oxfords"}
	],
	"overall_reasoning": "A classic interview look."
}`

func TestParseRecommendation_Valid(t *testing.T) {
	components, reasoning, err := ParseRecommendation(validResponse)
	require.NoError(t, err)

	require.Len(t, components, 3)
	assert.Equal(t, models.CategoryTop, components[0].Category)
	assert.Equal(t, "Crisp white linen shirt", components[0].Description)
	assert.Equal(t, "men white linen shirt", components[0].SearchQuery)
	assert.Equal(t, "A classic interview look.", reasoning)
}

func TestParseRecommendation_CodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json tag", "```json\n" + validResponse + "\n```"},
		{"bare fences", "```\n" + validResponse + "\n```"},
		{"trailing prose", "```json\n" + validResponse + "\n```\nI hope this outfit works for you!"},
		{"leading prose", "Here is your outfit:\n```json\n" + validResponse + "\n```"},
		{"inline backticks in prose", "Wrapped in ``` fences below:\n```json\n" + validResponse + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components, reasoning, err := ParseRecommendation(tt.raw)
			require.NoError(t, err)
			assert.Len(t, components, 3)
			assert.Equal(t, "A classic interview look.", reasoning)
		})
	}
}

func TestParseRecommendation_OutfitUnwrap(t *testing.T) {
	wrapped := `{"outfit": ` + validResponse + `}`

	components, reasoning, err := ParseRecommendation(wrapped)
	require.NoError(t, err)
	assert.Len(t, components, 3)
	assert.Equal(t, "A classic interview look.", reasoning)
}

func TestParseRecommendation_OutfitUnwrapInsideFences(t *testing.T) {
	raw := "```json\n" + `{"outfit": ` + validResponse + `}` + "\n```"

	components, _, err := ParseRecommendation(raw)
	require.NoError(t, err)
	assert.Len(t, components, 3)
}

func TestParseRecommendation_UnknownCategoryFailsWholeParse(t *testing.T) {
	raw := `{
		"components": [
			{"item_category": "Top", "description": "Fine shirt"},
			{"item_category": "Headwear", "description": "Wide-brim hat"}
		]
	}`

	components, _, err := ParseRecommendation(raw)
	require.Error(t, err)
	assert.Nil(t, components)

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.NotEmpty(t, malformed.RawPrefix)
}

func TestParseRecommendation_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I'm sorry, I can't respond in JSON today."},
		{"json array", `[{"item_category": "Top", "description": "shirt"}]`},
		{"missing components", `{"overall_reasoning": "nice outfit"}`},
		{"outfit not object", `{"outfit": "a lovely look"}`},
		{"outfit missing components", `{"outfit": {"overall_reasoning": "trust me"}}`},
		{"empty description", `{"components": [{"item_category": "Top", "description": "   "}]}`},
		{"missing description", `{"components": [{"item_category": "Top"}]}`},
		{"components not array", `{"components": {"item_category": "Top", "description": "shirt"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRecommendation(tt.raw)
			require.Error(t, err)

			var malformed *MalformedResponseError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestParseRecommendation_RawPrefixTruncated(t *testing.T) {
	long := "not json at all "
	for len(long) < 2000 {
		long += long
	}

	_, _, err := ParseRecommendation(long)
	require.Error(t, err)

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.LessOrEqual(t, len(malformed.RawPrefix), rawPrefixLimit)
}

func TestParseRecommendation_PreservesComponentCountAndOrder(t *testing.T) {
	raw := `{
		"components": [
			{"item_category": "Dress", "description": "Floral midi dress", "search_query": "women floral midi dress"},
			{"item_category": "Accessory", "description": "Gold hoop earrings"},
			{"item_category": "Shoes", "description": "Tan block heels", "search_query": "women tan block heels"},
			{"item_category": "Outerwear", "description": "Cropped denim jacket", "search_query": "women cropped denim jacket"}
		]
	}`

	components, _, err := ParseRecommendation(raw)
	require.NoError(t, err)

	require.Len(t, components, 4)
	assert.Equal(t, models.CategoryDress, components[0].Category)
	assert.Equal(t, models.CategoryAccessory, components[1].Category)
	assert.Equal(t, models.CategoryShoes, components[2].Category)
	assert.Equal(t, models.CategoryOuterwear, components[3].Category)

	// A missing search query keeps the component; product resolution
	// skips it later.
	assert.Empty(t, components[1].SearchQuery)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"plain fences", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"json tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
		{"unclosed fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"inline fence mid-line ignored", "see ``` marks\n{\"a\": 1}", "see ``` marks\n{\"a\": 1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFences(tt.raw))
		})
	}
}
