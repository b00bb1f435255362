package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outfitai/backend/internal/scraping"
	"github.com/outfitai/backend/pkg/models"
)

type stubFinder struct {
	available bool
	results   map[string][]models.ScrapedProduct
}

func (f *stubFinder) Available() bool { return f.available }

func (f *stubFinder) FindProducts(_ context.Context, query string, _ []string, _ int) []models.ScrapedProduct {
	return f.results[query]
}

type captureStore struct {
	batches chan []models.ScrapedProduct
}

func (s *captureStore) UpsertProducts(_ context.Context, products []models.ScrapedProduct) error {
	s.batches <- products
	return nil
}

type stubEnricher struct {
	gender string
}

func (e *stubEnricher) Enrich(_ context.Context, products []models.ScrapedProduct) []models.ScrapedProduct {
	for i := range products {
		products[i].Attributes.Gender = e.gender
		products[i].Attributes.Category = products[i].ProductName
	}
	return products
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func product(url, name, price string) models.ScrapedProduct {
	return models.ScrapedProduct{
		Retailer:    "Myntra",
		ProductName: name,
		Price:       price,
		ProductURL:  url,
	}
}

func TestResolve_AttachesProductsAndPreservesOrder(t *testing.T) {
	finder := &stubFinder{
		available: true,
		results: map[string][]models.ScrapedProduct{
			"men white shirt": {product("https://a/1", "White Shirt", "₹999")},
			"men black shoes": {product("https://a/2", "Black Shoes", "₹2,499")},
		},
	}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	components := []models.OutfitComponentSuggestion{
		{Category: models.CategoryTop, Description: "White shirt", SearchQuery: "men white shirt"},
		{Category: models.CategoryShoes, Description: "Black shoes", SearchQuery: "men black shoes"},
	}

	out := resolver.Resolve(context.Background(), components, ResolveOptions{})
	require.Len(t, out, 2)

	assert.Equal(t, models.CategoryTop, out[0].Category)
	require.Len(t, out[0].ScrapedProducts, 1)
	assert.Equal(t, "https://a/1", out[0].ScrapedProducts[0].ProductURL)
	assert.Empty(t, out[0].FallbackSearchURL)

	assert.Equal(t, models.CategoryShoes, out[1].Category)
	require.Len(t, out[1].ScrapedProducts, 1)
	assert.Empty(t, out[1].FallbackSearchURL)
}

func TestResolve_EnrichedAttributesReachComponents(t *testing.T) {
	finder := &stubFinder{
		available: true,
		results: map[string][]models.ScrapedProduct{
			"men white shirt": {product("https://a/1", "White Shirt", "₹999")},
			"men black shoes": {
				product("https://a/2", "Black Shoes", "₹2,499"),
				product("https://a/3", "Brown Shoes", "₹1,999"),
			},
		},
	}
	store := &captureStore{batches: make(chan []models.ScrapedProduct, 1)}
	resolver := NewProductResolver(finder, &stubEnricher{gender: "Men"}, store, testLogger())

	components := []models.OutfitComponentSuggestion{
		{Category: models.CategoryTop, Description: "White shirt", SearchQuery: "men white shirt"},
		{Category: models.CategoryShoes, Description: "Black shoes", SearchQuery: "men black shoes"},
	}

	out := resolver.Resolve(context.Background(), components, ResolveOptions{})
	require.Len(t, out, 2)

	// Attributes from the batched enrichment must land on the products
	// the caller receives, component by component.
	require.Len(t, out[0].ScrapedProducts, 1)
	assert.Equal(t, "Men", out[0].ScrapedProducts[0].Attributes.Gender)
	assert.Equal(t, "White Shirt", out[0].ScrapedProducts[0].Attributes.Category)

	require.Len(t, out[1].ScrapedProducts, 2)
	assert.Equal(t, "Men", out[1].ScrapedProducts[0].Attributes.Gender)
	assert.Equal(t, "Black Shoes", out[1].ScrapedProducts[0].Attributes.Category)
	assert.Equal(t, "Brown Shoes", out[1].ScrapedProducts[1].Attributes.Category)

	select {
	case batch := <-store.batches:
		require.Len(t, batch, 3)
		for _, p := range batch {
			assert.Equal(t, "Men", p.Attributes.Gender)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("products were never persisted")
	}
}

func TestResolve_EmptyResultsGetDeterministicFallbackURL(t *testing.T) {
	finder := &stubFinder{available: true, results: map[string][]models.ScrapedProduct{}}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	components := []models.OutfitComponentSuggestion{
		{Category: models.CategoryTop, Description: "Silk blouse", SearchQuery: "women silk blouse"},
	}

	first := resolver.Resolve(context.Background(), components, ResolveOptions{})
	second := resolver.Resolve(context.Background(), components, ResolveOptions{})

	require.Len(t, first, 1)
	assert.Empty(t, first[0].ScrapedProducts)
	assert.Equal(t, scraping.GoogleShoppingURL("women silk blouse"), first[0].FallbackSearchURL)
	assert.Equal(t, first[0].FallbackSearchURL, second[0].FallbackSearchURL)
}

func TestResolve_AllFailuresStillSucceedOverall(t *testing.T) {
	// Finder returns nothing for every query, as if every retailer
	// returned a server error.
	finder := &stubFinder{available: true, results: map[string][]models.ScrapedProduct{}}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	components := []models.OutfitComponentSuggestion{
		{Category: models.CategoryTop, Description: "Shirt", SearchQuery: "men shirt"},
		{Category: models.CategoryBottom, Description: "Trousers", SearchQuery: "men trousers"},
		{Category: models.CategoryShoes, Description: "Loafers", SearchQuery: "men loafers"},
	}

	out := resolver.Resolve(context.Background(), components, ResolveOptions{})
	require.Len(t, out, 3)
	for _, comp := range out {
		assert.Empty(t, comp.ScrapedProducts)
		assert.NotEmpty(t, comp.FallbackSearchURL)
	}
}

func TestResolve_ComponentWithoutQueryIsSkipped(t *testing.T) {
	finder := &stubFinder{
		available: true,
		results: map[string][]models.ScrapedProduct{
			"": {product("https://a/never", "Should not appear", "₹1")},
		},
	}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	components := []models.OutfitComponentSuggestion{
		{Category: models.CategoryAccessory, Description: "Gold hoop earrings"},
	}

	out := resolver.Resolve(context.Background(), components, ResolveOptions{})
	require.Len(t, out, 1)
	assert.Empty(t, out[0].ScrapedProducts)
	assert.Equal(t, scraping.GoogleShoppingURL("Gold hoop earrings"), out[0].FallbackSearchURL)
}

func TestResolve_DeduplicatesByURLFirstWins(t *testing.T) {
	shared := product("https://a/shared", "Shared Item", "₹500")
	finder := &stubFinder{
		available: true,
		results: map[string][]models.ScrapedProduct{
			"query one": {shared, product("https://a/1", "Unique One", "₹100")},
			"query two": {shared, product("https://a/2", "Unique Two", "₹200")},
		},
	}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	components := []models.OutfitComponentSuggestion{
		{Category: models.CategoryTop, Description: "One", SearchQuery: "query one"},
		{Category: models.CategoryBottom, Description: "Two", SearchQuery: "query two"},
	}

	out := resolver.Resolve(context.Background(), components, ResolveOptions{})

	require.Len(t, out[0].ScrapedProducts, 2)
	require.Len(t, out[1].ScrapedProducts, 1)
	assert.Equal(t, "https://a/2", out[1].ScrapedProducts[0].ProductURL)
}

func TestResolve_SortsByParsedPrice(t *testing.T) {
	finder := &stubFinder{
		available: true,
		results: map[string][]models.ScrapedProduct{
			"men sneakers": {
				product("https://a/1", "Mid", "₹1,299"),
				product("https://a/2", "Cheap", "₹499"),
				product("https://a/3", "Unpriced", "N/A"),
				product("https://a/4", "Pricey", "₹4,999"),
			},
		},
	}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	components := []models.OutfitComponentSuggestion{
		{Category: models.CategoryShoes, Description: "Sneakers", SearchQuery: "men sneakers"},
	}

	asc := resolver.Resolve(context.Background(), components, ResolveOptions{SortBy: models.SortPriceAsc})
	require.Len(t, asc[0].ScrapedProducts, 4)
	assert.Equal(t, "Cheap", asc[0].ScrapedProducts[0].ProductName)
	assert.Equal(t, "Mid", asc[0].ScrapedProducts[1].ProductName)
	assert.Equal(t, "Pricey", asc[0].ScrapedProducts[2].ProductName)
	assert.Equal(t, "Unpriced", asc[0].ScrapedProducts[3].ProductName)

	desc := resolver.Resolve(context.Background(), components, ResolveOptions{SortBy: models.SortPriceDesc})
	assert.Equal(t, "Pricey", desc[0].ScrapedProducts[0].ProductName)
	assert.Equal(t, "Unpriced", desc[0].ScrapedProducts[3].ProductName)
}

func TestResolve_MinRatingKeepsUnratedProducts(t *testing.T) {
	lowRated := product("https://a/low", "Low", "₹100")
	low := 3.0
	lowRated.Rating = &low

	highRated := product("https://a/high", "High", "₹200")
	high := 4.6
	highRated.Rating = &high

	finder := &stubFinder{
		available: true,
		results: map[string][]models.ScrapedProduct{
			"men watch": {lowRated, highRated, product("https://a/none", "Unrated", "₹300")},
		},
	}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	minRating := 4.0
	out := resolver.Resolve(context.Background(),
		[]models.OutfitComponentSuggestion{
			{Category: models.CategoryAccessory, Description: "Watch", SearchQuery: "men watch"},
		},
		ResolveOptions{MinRating: &minRating})

	require.Len(t, out[0].ScrapedProducts, 2)
	names := []string{out[0].ScrapedProducts[0].ProductName, out[0].ScrapedProducts[1].ProductName}
	assert.Contains(t, names, "High")
	assert.Contains(t, names, "Unrated")
}

func TestResolve_PersistsProductsInBackground(t *testing.T) {
	finder := &stubFinder{
		available: true,
		results: map[string][]models.ScrapedProduct{
			"men belt": {product("https://a/belt", "Leather Belt", "₹799")},
		},
	}
	store := &captureStore{batches: make(chan []models.ScrapedProduct, 1)}
	resolver := NewProductResolver(finder, nil, store, testLogger())

	resolver.Resolve(context.Background(),
		[]models.OutfitComponentSuggestion{
			{Category: models.CategoryAccessory, Description: "Belt", SearchQuery: "men belt"},
		},
		ResolveOptions{})

	select {
	case batch := <-store.batches:
		require.Len(t, batch, 1)
		assert.Equal(t, "https://a/belt", batch[0].ProductURL)
	case <-time.After(2 * time.Second):
		t.Fatal("products were never persisted")
	}
}

func TestResolve_FinderUnavailableSkipsStraightToFallback(t *testing.T) {
	finder := &stubFinder{available: false}
	resolver := NewProductResolver(finder, nil, nil, testLogger())

	out := resolver.Resolve(context.Background(),
		[]models.OutfitComponentSuggestion{
			{Category: models.CategoryTop, Description: "Shirt", SearchQuery: "men shirt"},
		},
		ResolveOptions{})

	require.Len(t, out, 1)
	assert.Empty(t, out[0].ScrapedProducts)
	assert.Equal(t, scraping.GoogleShoppingURL("men shirt"), out[0].FallbackSearchURL)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{"₹1,299", 1299, true},
		{"Rs. 999", 999, true},
		{"1299.50", 1299.50, true},
		{"₹ 2,49,999", 249999, true},
		{"N/A", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		val, ok := parsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, "parsePrice(%q)", tt.in)
		if tt.ok {
			assert.Equal(t, tt.expected, val, "parsePrice(%q)", tt.in)
		}
	}
}
