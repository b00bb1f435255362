package scraping

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/outfitai/backend/internal/config"
	"github.com/outfitai/backend/pkg/models"
)

// transient retries per retailer fetch, on top of the initial attempt.
const maxFetchRetries = 2

// Service runs retailer searches through a rendering proxy. A single
// weighted semaphore caps concurrent proxy requests process-wide, not
// per call, so parallel pipeline runs cannot stack up renders.
type Service struct {
	cfg        *config.ScraperConfig
	httpClient *http.Client
	sem        *semaphore.Weighted
	logger     *logrus.Logger
}

func NewService(cfg *config.ScraperConfig, logger *logrus.Logger) *Service {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 2
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		sem:        semaphore.NewWeighted(maxConcurrency),
		logger:     logger,
	}
}

// Available reports whether the proxy credentials are configured.
// Without them every scrape would fail, so the resolver skips straight
// to fallback URLs.
func (s *Service) Available() bool {
	return s.cfg.APIKey != ""
}

// FindProducts searches the given retailers for a query and aggregates
// the results. If the exact query finds nothing anywhere, the search is
// retried once with a broadened query (the last two words) before
// giving up. An empty result is not an error; the caller decides what
// an empty slice means.
func (s *Service) FindProducts(ctx context.Context, query string, retailers []string, limitPerRetailer int) []models.ScrapedProduct {
	query = strings.TrimSpace(query)
	if query == "" || len(retailers) == 0 || !s.Available() {
		return nil
	}
	if limitPerRetailer <= 0 {
		limitPerRetailer = s.cfg.LimitPerRetailer
	}

	products := s.searchAll(ctx, query, retailers, limitPerRetailer)
	if len(products) > 0 {
		return products
	}

	if broadened, ok := broadenQuery(query); ok {
		s.logger.WithFields(logrus.Fields{
			"query":     query,
			"broadened": broadened,
		}).Info("No products found, retrying with broadened query")
		return s.searchAll(ctx, broadened, retailers, limitPerRetailer)
	}
	return nil
}

func (s *Service) searchAll(ctx context.Context, query string, retailers []string, limit int) []models.ScrapedProduct {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		products []models.ScrapedProduct
	)

	for _, retailer := range retailers {
		site, ok := siteConfigs[retailer]
		if !ok {
			s.logger.WithField("retailer", retailer).Warn("Unsupported retailer requested")
			continue
		}

		wg.Add(1)
		go func(site siteConfig) {
			defer wg.Done()

			found, err := s.scrapeSite(ctx, site, query)
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"retailer": site.name,
					"query":    query,
				}).Warn("Retailer scrape failed")
				return
			}
			if len(found) > limit {
				found = found[:limit]
			}

			mu.Lock()
			products = append(products, found...)
			mu.Unlock()
		}(site)
	}

	wg.Wait()
	return products
}

func (s *Service) scrapeSite(ctx context.Context, site siteConfig, query string) ([]models.ScrapedProduct, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring scrape slot: %w", err)
	}
	defer s.sem.Release(1)

	target := strings.Replace(site.urlTemplate, "{query}", url.QueryEscape(query), 1)

	var doc *goquery.Document
	operation := func() error {
		fetched, err := s.fetchRendered(ctx, target)
		if err != nil {
			return err
		}
		doc = fetched
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxFetchRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	products := site.parse(doc, site.baseURL)
	s.logger.WithFields(logrus.Fields{
		"retailer": site.name,
		"query":    query,
		"found":    len(products),
	}).Debug("Retailer scrape complete")
	return products, nil
}

// fetchRendered requests the target page through the JS-rendering
// proxy and parses the returned HTML. Client errors (4xx) are
// permanent; server errors and transport failures are retried.
func (s *Service) fetchRendered(ctx context.Context, target string) (*goquery.Document, error) {
	params := url.Values{}
	params.Set("api_key", s.cfg.APIKey)
	params.Set("url", target)
	params.Set("render", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.cfg.ProxyEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("proxy returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parsing response HTML: %w", err))
	}
	return doc, nil
}

// broadenQuery drops everything but the last two words of a query
// ("red silk evening gown" -> "evening gown"). Queries of two words or
// fewer cannot be broadened.
func broadenQuery(query string) (string, bool) {
	words := strings.Fields(query)
	if len(words) <= 2 {
		return "", false
	}
	return strings.Join(words[len(words)-2:], " "), true
}

// GoogleShoppingURL builds the deterministic fallback search link used
// when no retailer returned a product for a component.
func GoogleShoppingURL(query string) string {
	return "https://www.google.com/search?tbm=shop&q=" + url.QueryEscape(query)
}
