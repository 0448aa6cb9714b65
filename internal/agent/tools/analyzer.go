package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Product is one simulated listing entry.
type Product struct {
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Price float64 `json:"price"`
}

// PriceRange is the min/max price span of one analyzed page.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PageAnalysis is the structured result of one page analysis.
type PageAnalysis struct {
	URL          string     `json:"url"`
	Domain       string     `json:"domain"`
	PageType     string     `json:"page_type"`
	Products     []Product  `json:"products"`
	ProductCount int        `json:"product_count"`
	Brands       []string   `json:"brands"`
	PriceRange   PriceRange `json:"price_range"`
}

// analyzePage dispatches to one of three canned analyses keyed by
// the target domain. The extraction results are simulated; there is
// no real scraping.
func (t *Toolset) analyzePage(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	target := strParam(params, "url")
	if target == "" {
		return nil, errors.New("url parameter is required")
	}

	analysis := t.analyze(target)
	out, err := asMap(analysis)
	if err != nil {
		return nil, err
	}
	out["success"] = true
	return out, nil
}

func (t *Toolset) analyze(target string) PageAnalysis {
	domain := hostOf(target)
	switch {
	case strings.Contains(domain, "amazon."):
		return t.cannedAnalysis(target, domain, "product_listing", amazonCatalog)
	case strings.Contains(domain, "ebay."):
		return t.cannedAnalysis(target, domain, "auction_listing", ebayCatalog)
	default:
		return t.cannedAnalysis(target, domain, "generic_page", genericCatalog)
	}
}

type catalogEntry struct {
	name     string
	brand    string
	minPrice float64
	maxPrice float64
}

var amazonCatalog = []catalogEntry{
	{"Wireless Earbuds", "Sony", 39, 199},
	{"Smartphone Case", "Spigen", 9, 45},
	{"Mechanical Keyboard", "Logitech", 49, 179},
	{"USB-C Charger", "Anker", 15, 69},
	{"Fitness Tracker", "Fitbit", 59, 149},
	{"Bluetooth Speaker", "JBL", 29, 129},
}

var ebayCatalog = []catalogEntry{
	{"Vintage Camera", "Canon", 45, 420},
	{"Collectible Watch", "Seiko", 80, 650},
	{"Refurbished Laptop", "Lenovo", 150, 700},
	{"Gaming Console", "Nintendo", 90, 350},
	{"Record Player", "Audio-Technica", 60, 280},
}

var genericCatalog = []catalogEntry{
	{"Featured Item", "House Brand", 10, 120},
	{"Popular Pick", "Generic", 5, 80},
	{"Staff Choice", "Local", 12, 95},
}

// cannedAnalysis produces a randomized-but-structured listing from a
// fixed per-site catalog.
func (t *Toolset) cannedAnalysis(target, domain, pageType string, catalog []catalogEntry) PageAnalysis {
	count := 2 + t.intn(len(catalog)-1)
	products := make([]Product, 0, count)
	brandSet := make(map[string]struct{})
	minPrice := math.MaxFloat64
	maxPrice := 0.0

	for i := 0; i < count; i++ {
		entry := catalog[(i+t.intn(len(catalog)))%len(catalog)]
		price := entry.minPrice + t.float64n()*(entry.maxPrice-entry.minPrice)
		price = math.Round(price*100) / 100
		products = append(products, Product{
			Name:  fmt.Sprintf("%s #%d", entry.name, i+1),
			Brand: entry.brand,
			Price: price,
		})
		brandSet[entry.brand] = struct{}{}
		if price < minPrice {
			minPrice = price
		}
		if price > maxPrice {
			maxPrice = price
		}
	}

	brands := make([]string, 0, len(brandSet))
	for brand := range brandSet {
		brands = append(brands, brand)
	}

	return PageAnalysis{
		URL:          target,
		Domain:       domain,
		PageType:     pageType,
		Products:     products,
		ProductCount: len(products),
		Brands:       brands,
		PriceRange:   PriceRange{Min: minPrice, Max: maxPrice},
	}
}

func hostOf(raw string) string {
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

func asMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
