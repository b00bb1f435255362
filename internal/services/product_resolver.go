package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/outfitai/backend/internal/scraping"
	"github.com/outfitai/backend/pkg/models"
)

// ProductFinder is the retailer-search contract the resolver fans out
// through. Implemented by scraping.Service.
type ProductFinder interface {
	Available() bool
	FindProducts(ctx context.Context, query string, retailers []string, limitPerRetailer int) []models.ScrapedProduct
}

// ProductEnricher annotates scraped products with extracted
// attributes. Enrich returns a slice of the same length and order as
// its input; on failure it returns the input unchanged.
type ProductEnricher interface {
	Enrich(ctx context.Context, products []models.ScrapedProduct) []models.ScrapedProduct
}

// ProductStore persists scraped products for later analytics. The
// resolver calls it fire-and-forget; persistence failures never affect
// the recommendation response.
type ProductStore interface {
	UpsertProducts(ctx context.Context, products []models.ScrapedProduct) error
}

// ResolveOptions carries the per-request knobs for product resolution.
type ResolveOptions struct {
	Retailers        []string
	LimitPerRetailer int
	SortBy           models.SortBy
	MinRating        *float64
}

const productPersistTimeout = 30 * time.Second

// ProductResolver attaches real shopping results to parsed outfit
// components. Every failure inside resolution is isolated: the worst
// outcome for a component is an empty product list with a fallback
// search link, never a pipeline error.
type ProductResolver struct {
	finder   ProductFinder
	enricher ProductEnricher
	store    ProductStore
	logger   *logrus.Logger
}

func NewProductResolver(finder ProductFinder, enricher ProductEnricher, store ProductStore, logger *logrus.Logger) *ProductResolver {
	return &ProductResolver{
		finder:   finder,
		enricher: enricher,
		store:    store,
		logger:   logger,
	}
}

// Resolve searches retailers for every component with a search query,
// concurrently. Components finish in any order internally but the
// returned slice preserves the input ordering. Duplicate product URLs
// across components are kept only at their first occurrence.
func (r *ProductResolver) Resolve(ctx context.Context, components []models.OutfitComponentSuggestion, opts ResolveOptions) []models.OutfitComponentSuggestion {
	if len(components) == 0 {
		return components
	}

	resolved := make([][]models.ScrapedProduct, len(components))
	if r.finder != nil && r.finder.Available() {
		var wg sync.WaitGroup
		for i := range components {
			query := components[i].SearchQuery
			if query == "" {
				continue
			}
			wg.Add(1)
			go func(idx int, query string) {
				defer wg.Done()
				resolved[idx] = r.finder.FindProducts(ctx, query, opts.Retailers, opts.LimitPerRetailer)
			}(i, query)
		}
		wg.Wait()
	}

	// Dedup by product URL across components, first occurrence wins.
	// Components are walked in input order so the winner is stable.
	seen := make(map[string]bool)
	var all []models.ScrapedProduct
	for i := range components {
		kept := resolved[i][:0]
		for _, p := range resolved[i] {
			if p.ProductURL == "" || seen[p.ProductURL] {
				continue
			}
			seen[p.ProductURL] = true
			kept = append(kept, p)
		}
		resolved[i] = kept
		all = append(all, kept...)
	}

	if len(all) > 0 {
		if r.enricher != nil {
			all = r.enricher.Enrich(ctx, all)
			// The batch holds copies; scatter the enriched entries
			// back into the per-component slices so attributes reach
			// the response, not only the persisted rows.
			offset := 0
			for i := range resolved {
				offset += copy(resolved[i], all[offset:])
			}
		}
		r.persistAsync(all)
	}

	out := make([]models.OutfitComponentSuggestion, len(components))
	copy(out, components)
	for i := range out {
		products := r.finalize(resolved[i], opts)
		out[i].ScrapedProducts = products
		if len(products) == 0 {
			out[i].FallbackSearchURL = scraping.GoogleShoppingURL(fallbackQuery(out[i]))
		} else {
			out[i].FallbackSearchURL = ""
		}
	}
	return out
}

// finalize applies the min-rating filter and the requested sort to one
// component's products. Products without a known rating pass the
// filter; dropping them would erase retailers that never expose one.
func (r *ProductResolver) finalize(products []models.ScrapedProduct, opts ResolveOptions) []models.ScrapedProduct {
	if opts.MinRating != nil {
		kept := products[:0]
		for _, p := range products {
			if p.Rating != nil && *p.Rating < *opts.MinRating {
				continue
			}
			kept = append(kept, p)
		}
		products = kept
	}

	switch opts.SortBy {
	case models.SortPriceAsc:
		sortByPrice(products, true)
	case models.SortPriceDesc:
		sortByPrice(products, false)
	}
	return products
}

// persistAsync hands the batch to the product store on a supervised
// background goroutine. The request does not wait for it.
func (r *ProductResolver) persistAsync(products []models.ScrapedProduct) {
	if r.store == nil {
		return
	}
	batch := make([]models.ScrapedProduct, len(products))
	copy(batch, products)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.WithField("panic", rec).Error("Product persistence goroutine panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), productPersistTimeout)
		defer cancel()

		if err := r.store.UpsertProducts(ctx, batch); err != nil {
			r.logger.WithError(err).Warn("Background product persistence failed")
			return
		}
		r.logger.WithField("count", len(batch)).Debug("Scraped products persisted")
	}()
}

// fallbackQuery picks the text behind a component's fallback search
// link: the model's search query when present, else the description.
func fallbackQuery(component models.OutfitComponentSuggestion) string {
	if component.SearchQuery != "" {
		return component.SearchQuery
	}
	return component.Description
}

// sortByPrice stable-sorts products numerically by price. Products
// whose price cannot be parsed sort after all parseable ones.
func sortByPrice(products []models.ScrapedProduct, ascending bool) {
	sort.SliceStable(products, func(i, j int) bool {
		pi, iOK := parsePrice(products[i].Price)
		pj, jOK := parsePrice(products[j].Price)
		if iOK != jOK {
			return iOK
		}
		if !iOK {
			return false
		}
		if ascending {
			return pi < pj
		}
		return pi > pj
	})
}

// parsePrice extracts a numeric value from a display price such as
// "₹1,299", "Rs. 999" or "1299.00".
func parsePrice(price string) (float64, bool) {
	cleaned := strings.TrimSpace(price)
	cleaned = strings.TrimPrefix(cleaned, "Rs.")
	cleaned = strings.TrimPrefix(cleaned, "Rs")

	var sb strings.Builder
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0, false
	}
	return val, true
}
