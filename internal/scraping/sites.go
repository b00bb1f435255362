package scraping

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/outfitai/backend/pkg/models"
)

// siteConfig describes one supported retailer: its search URL template
// (with {query} placeholder) and the extractor for its result markup.
type siteConfig struct {
	name        string
	baseURL     string
	urlTemplate string
	parse       func(doc *goquery.Document, baseURL string) []models.ScrapedProduct
}

var siteConfigs = map[string]siteConfig{
	"Myntra": {
		name:        "Myntra",
		baseURL:     "https://www.myntra.com",
		urlTemplate: "https://www.myntra.com/{query}",
		parse:       parseMyntra,
	},
	"Ajio": {
		name:        "Ajio",
		baseURL:     "https://www.ajio.com",
		urlTemplate: "https://www.ajio.com/search/?text={query}",
		parse:       parseAjio,
	},
	"Amazon": {
		name:        "Amazon",
		baseURL:     "https://www.amazon.in",
		urlTemplate: "https://www.amazon.in/s?k={query}",
		parse:       parseAmazon,
	},
}

// SupportedRetailers returns the retailer names with a configured parser.
func SupportedRetailers() []string {
	names := make([]string, 0, len(siteConfigs))
	for name := range siteConfigs {
		names = append(names, name)
	}
	return names
}

func parseMyntra(doc *goquery.Document, baseURL string) []models.ScrapedProduct {
	var products []models.ScrapedProduct
	doc.Find("li.product-base").Each(func(_ int, item *goquery.Selection) {
		brand := strings.TrimSpace(item.Find("h3.product-brand").Text())
		name := strings.TrimSpace(item.Find("h4.product-product").Text())
		price := strings.TrimSpace(item.Find("span.product-discountedPrice, div.product-price").First().Text())
		href := item.Find("a").First().AttrOr("href", "")

		if brand == "" || name == "" || href == "" {
			return
		}
		if price == "" {
			price = "N/A"
		}
		products = append(products, models.ScrapedProduct{
			Retailer:    "Myntra",
			ProductName: brand + " " + name,
			Price:       price,
			ProductURL:  resolveURL(baseURL, href),
			ImageURL:    item.Find("img.img-responsive").AttrOr("src", ""),
		})
	})
	return products
}

func parseAjio(doc *goquery.Document, baseURL string) []models.ScrapedProduct {
	var products []models.ScrapedProduct
	doc.Find("a.rilrtl-products-list__item-link").Each(func(_ int, link *goquery.Selection) {
		item := link.Closest("div.item")
		if item.Length() == 0 {
			return
		}

		brand := strings.TrimSpace(item.Find("div.brand").Text())
		name := strings.TrimSpace(item.Find("div.nameCls").Text())
		price := strings.TrimSpace(item.Find("span.price").First().Text())
		href := link.AttrOr("href", "")

		if brand == "" || name == "" || href == "" {
			return
		}
		if price == "" {
			price = "N/A"
		}
		products = append(products, models.ScrapedProduct{
			Retailer:    "Ajio",
			ProductName: brand + " " + name,
			Price:       price,
			ProductURL:  resolveURL(baseURL, href),
			ImageURL:    item.Find("img.rilrtl-lazy-img").AttrOr("src", ""),
		})
	})
	return products
}

func parseAmazon(doc *goquery.Document, baseURL string) []models.ScrapedProduct {
	var products []models.ScrapedProduct
	doc.Find("div[data-component-type='s-search-result']").Each(func(_ int, item *goquery.Selection) {
		name := strings.TrimSpace(item.Find("h2 a.a-link-normal span.a-text-normal").Text())
		price := strings.TrimSpace(item.Find("span.a-price-whole").First().Text())
		href := item.Find("h2 a.a-link-normal").AttrOr("href", "")

		if name == "" || price == "" || href == "" {
			return
		}
		products = append(products, models.ScrapedProduct{
			Retailer:    "Amazon",
			ProductName: name,
			Price:       "₹" + price,
			ProductURL:  resolveURL(baseURL, href),
			ImageURL:    item.Find("img.s-image").AttrOr("src", ""),
			Rating:      parseRating(item.Find("span.a-icon-alt").First().Text()),
		})
	})
	return products
}

// parseRating extracts the leading number from rating alt text like
// "4.3 out of 5 stars". Missing or unparseable text yields nil.
func parseRating(text string) *float64 {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return nil
	}
	val, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

// resolveURL joins a possibly-relative href against the retailer base.
func resolveURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
