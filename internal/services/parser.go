package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/outfitai/backend/pkg/models"
)

// recommendationSchema validates the decoded generative payload after
// shape normalization. The category enum is injected so the schema and
// the ItemCategory type cannot drift apart.
var recommendationSchema = mustCompileRecommendationSchema()

func mustCompileRecommendationSchema() *gojsonschema.Schema {
	cats := models.ItemCategories()
	enum := make([]string, len(cats))
	for i, c := range cats {
		enum[i] = fmt.Sprintf("%q", string(c))
	}

	raw := fmt.Sprintf(`{
		"type": "object",
		"required": ["components"],
		"properties": {
			"components": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["item_category", "description"],
					"properties": {
						"item_category": {"type": "string", "enum": [%s]},
						"description": {"type": "string", "minLength": 1},
						"search_query": {"type": "string"},
						"attributes": {"type": "object"}
					}
				}
			},
			"overall_reasoning": {"type": "string"}
		}
	}`, strings.Join(enum, ", "))

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid recommendation schema: %v", err))
	}
	return schema
}

// stripCodeFences removes a leading/trailing triple-backtick wrapper
// (optionally tagged, e.g. ```json) from the raw model text. When a
// fenced block is present, anything outside the fences is discarded;
// models occasionally append prose after the closing fence.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)

	start := fenceIndex(text)
	if start == -1 {
		return text
	}

	inner := text[start+3:]
	// Drop an optional language tag directly after the opening fence.
	if nl := strings.IndexByte(inner, '\n'); nl != -1 {
		tag := strings.TrimSpace(inner[:nl])
		if tag == "" || isFenceTag(tag) {
			inner = inner[nl+1:]
		}
	}

	if end := strings.Index(inner, "```"); end != -1 {
		inner = inner[:end]
	}
	return strings.TrimSpace(inner)
}

// fenceIndex locates an opening fence. Only a fence that starts a line
// qualifies; backticks quoted mid-sentence in leading prose must not
// swallow the payload that follows them.
func fenceIndex(s string) int {
	if strings.HasPrefix(s, "```") {
		return 0
	}
	if i := strings.Index(s, "\n```"); i != -1 {
		return i + 1
	}
	return -1
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(tag) <= 12
}

type parsedRecommendation struct {
	Components       []models.OutfitComponentSuggestion `json:"components"`
	OverallReasoning string                             `json:"overall_reasoning"`
}

// ParseRecommendation turns raw generative output into the validated
// component list and overall reasoning. It tolerates exactly two
// deviations from the canonical shape: code-fence wrapping, and the
// whole payload nested under a top-level "outfit" key. Anything else
// fails with a MalformedResponseError carrying a truncated excerpt of
// the raw text.
func ParseRecommendation(raw string) ([]models.OutfitComponentSuggestion, string, error) {
	cleaned := stripCodeFences(raw)

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, "", newMalformedResponseError(fmt.Sprintf("response is not valid JSON: %v", err), raw)
	}

	// The one permitted normalization: unwrap {"outfit": {"components": [...]}}.
	if _, ok := payload["components"]; !ok {
		outfitRaw, ok := payload["outfit"]
		if !ok {
			return nil, "", newMalformedResponseError("missing required 'components' key", raw)
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(outfitRaw, &nested); err != nil {
			return nil, "", newMalformedResponseError("'outfit' key is not an object", raw)
		}
		if _, ok := nested["components"]; !ok {
			return nil, "", newMalformedResponseError("'outfit' object is missing 'components'", raw)
		}
		payload = nested
	}

	normalized, err := json.Marshal(payload)
	if err != nil {
		return nil, "", newMalformedResponseError(fmt.Sprintf("failed to re-encode payload: %v", err), raw)
	}

	result, err := recommendationSchema.Validate(gojsonschema.NewBytesLoader(normalized))
	if err != nil {
		return nil, "", newMalformedResponseError(fmt.Sprintf("schema validation error: %v", err), raw)
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, "", newMalformedResponseError(strings.Join(reasons, "; "), raw)
	}

	var parsed parsedRecommendation
	if err := json.Unmarshal(normalized, &parsed); err != nil {
		return nil, "", newMalformedResponseError(fmt.Sprintf("failed to decode components: %v", err), raw)
	}

	for i := range parsed.Components {
		parsed.Components[i].Description = strings.TrimSpace(parsed.Components[i].Description)
		parsed.Components[i].SearchQuery = strings.TrimSpace(parsed.Components[i].SearchQuery)
		if parsed.Components[i].Description == "" {
			return nil, "", newMalformedResponseError(fmt.Sprintf("component %d has an empty description", i), raw)
		}
	}

	return parsed.Components, strings.TrimSpace(parsed.OverallReasoning), nil
}
