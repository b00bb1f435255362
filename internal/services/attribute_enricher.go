package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/pkg/models"
)

// AttributeEnricher extracts structured attributes (gender, category,
// color, material, fit, brand) from scraped product titles in a single
// batched generative call. Enrichment is strictly best-effort: any
// failure returns the input unchanged.
type AttributeEnricher struct {
	generator TextGenerator
	timeout   time.Duration
	logger    *logrus.Logger
}

func NewAttributeEnricher(generator TextGenerator, timeout time.Duration, logger *logrus.Logger) *AttributeEnricher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AttributeEnricher{generator: generator, timeout: timeout, logger: logger}
}

const enrichmentPromptHeader = `You are a fashion data extraction expert. For each product name in the JSON list below, extract the following attributes: gender (Men/Women/Unisex), category (e.g., T-Shirt, Jeans, Kurta, Sneakers), color, material, fit (e.g., Slim, Regular, Oversized), and brand.

If an attribute cannot be determined from the name, use an empty string.

Respond with ONLY a JSON object of this exact shape, with one entry per input product, in the same order:
{"enriched_products": [{"gender": "...", "category": "...", "color": "...", "material": "...", "fit": "...", "brand": "..."}]}

Product names:
`

type enrichmentResponse struct {
	EnrichedProducts []models.ProductAttributes `json:"enriched_products"`
}

// Enrich annotates products with extracted attributes. The returned
// slice is the same slice passed in; entries are updated in place only
// when the whole batch succeeds and the counts line up.
func (e *AttributeEnricher) Enrich(ctx context.Context, products []models.ScrapedProduct) []models.ScrapedProduct {
	if len(products) == 0 || !e.generator.Available() {
		return products
	}

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.ProductName
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return products
	}

	enrichCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.generator.Generate(enrichCtx, enrichmentPromptHeader+string(namesJSON))
	if err != nil {
		e.logger.WithError(err).Warn("Attribute enrichment call failed, returning products as-is")
		return products
	}

	var resp enrichmentResponse
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &resp); err != nil {
		e.logger.WithError(err).Warn("Attribute enrichment returned unparseable JSON")
		return products
	}
	if len(resp.EnrichedProducts) != len(products) {
		e.logger.WithFields(logrus.Fields{
			"expected": len(products),
			"got":      len(resp.EnrichedProducts),
		}).Warn("Attribute enrichment count mismatch, discarding batch")
		return products
	}

	for i := range products {
		products[i].Attributes = normalizeAttributes(resp.EnrichedProducts[i])
	}
	e.logger.WithField("count", len(products)).Debug("Product attributes enriched")
	return products
}

func normalizeAttributes(attrs models.ProductAttributes) models.ProductAttributes {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "n/a") || strings.EqualFold(s, "unknown") || strings.EqualFold(s, "null") {
			return ""
		}
		return s
	}
	return models.ProductAttributes{
		Gender:   clean(attrs.Gender),
		Category: clean(attrs.Category),
		Color:    clean(attrs.Color),
		Material: clean(attrs.Material),
		Fit:      clean(attrs.Fit),
		Brand:    clean(attrs.Brand),
	}
}
