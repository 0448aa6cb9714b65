package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCandidateURLsSiteTemplates(t *testing.T) {
	amazon := candidateURLs("https://www.amazon.com", "wireless mouse")
	if len(amazon) != 3 {
		t.Fatalf("expected 3 amazon candidates, got %d", len(amazon))
	}
	if !strings.Contains(amazon[0], "/s?k=wireless+mouse") {
		t.Fatalf("unexpected amazon search URL: %s", amazon[0])
	}

	ebay := candidateURLs("https://www.ebay.com", "camera")
	if len(ebay) != 2 || !strings.Contains(ebay[0], "/sch/i.html?_nkw=camera") {
		t.Fatalf("unexpected ebay candidates: %v", ebay)
	}

	generic := candidateURLs("https://shop.example.com/", "shoes")
	if len(generic) != 2 || generic[0] != "https://shop.example.com/search?q=shoes" {
		t.Fatalf("unexpected generic candidates: %v", generic)
	}
}

func TestAggregatePriceRanges(t *testing.T) {
	overallMin, overallMax, ok := aggregatePriceRanges([]PriceRange{
		{Min: 100, Max: 200},
		{Min: 50, Max: 300},
	})
	if !ok {
		t.Fatalf("expected aggregation to succeed")
	}
	if overallMin != 50 || overallMax != 300 {
		t.Fatalf("expected overall 50/300, got %v/%v", overallMin, overallMax)
	}

	if _, _, ok := aggregatePriceRanges(nil); ok {
		t.Fatalf("expected no aggregate for empty input")
	}
}

func TestSummarizeAnalyses(t *testing.T) {
	summary := summarizeAnalyses([]PageAnalysis{
		{ProductCount: 3, Brands: []string{"Sony", "JBL"}, PriceRange: PriceRange{Min: 100, Max: 200}},
		{ProductCount: 2, Brands: []string{"Sony"}, PriceRange: PriceRange{Min: 50, Max: 300}},
	})
	if summary["total_products"] != 5 {
		t.Fatalf("expected 5 total products, got %v", summary["total_products"])
	}
	brands := summary["brands"].([]string)
	if len(brands) != 2 {
		t.Fatalf("expected deduplicated brand set, got %v", brands)
	}
	pr := summary["price_range"].(map[string]interface{})
	if pr["overall_min"] != 50.0 || pr["overall_max"] != 300.0 {
		t.Fatalf("unexpected aggregate price range: %v", pr)
	}
}

func TestBrowseProductsHappyPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ts, slept := newTestToolset(server.URL)

	out, err := ts.browseProducts(context.Background(), map[string]interface{}{
		"base_url": server.URL,
		"query":    "shoes",
	})
	if err != nil {
		t.Fatalf("browseProducts: %v", err)
	}
	if out["successful"] != 2 || out["failed"] != 0 {
		t.Fatalf("expected 2 successes, got %v successful / %v failed", out["successful"], out["failed"])
	}
	visited := out["visited"].([]map[string]interface{})
	if len(visited) != 2 {
		t.Fatalf("expected 2 visited pages, got %d", len(visited))
	}
	summary := out["summary"].(map[string]interface{})
	if summary["pages_analyzed"] != 2 {
		t.Fatalf("expected 2 analyzed pages, got %v", summary["pages_analyzed"])
	}
	if summary["total_products"].(int) < 4 {
		t.Fatalf("expected at least 4 products across pages, got %v", summary["total_products"])
	}
	// one pacing delay between the two pages
	if len(*slept) == 0 {
		t.Fatalf("expected an inter-request delay")
	}
}

func TestBrowseProductsRecordsFailuresAndContinues(t *testing.T) {
	var headCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// validity probes hit /search paths; screenshot probes hit /width paths
		if strings.Contains(r.URL.Path, "/width/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		headCount++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ts, slept := newTestToolset(server.URL)

	out, err := ts.browseProducts(context.Background(), map[string]interface{}{
		"base_url": server.URL,
		"query":    "shoes",
	})
	if err != nil {
		t.Fatalf("browseProducts: %v", err)
	}
	if out["successful"] != 0 || out["failed"] != 2 {
		t.Fatalf("expected every page to fail, got %v successful / %v failed", out["successful"], out["failed"])
	}
	visited := out["visited"].([]map[string]interface{})
	for _, entry := range visited {
		if entry["status"] != "failed" {
			t.Fatalf("expected failed status, got %v", entry["status"])
		}
		if !strings.Contains(entry["error"].(string), "after 3 attempts") {
			t.Fatalf("expected bounded retry in error, got %v", entry["error"])
		}
	}
	if headCount == 0 {
		t.Fatalf("expected validity probes to run")
	}
	// retries double the delay: first page sleeps 1ms then 2ms
	if len(*slept) < 2 || (*slept)[1] != 2*(*slept)[0] {
		t.Fatalf("expected doubling retry delay, got %v", *slept)
	}
}

func TestBrowseProductsSkipsUnreachableCandidates(t *testing.T) {
	ts, _ := newTestToolset("")
	ts.probe = &http.Client{Transport: failingTransport{}}

	out, err := ts.browseProducts(context.Background(), map[string]interface{}{
		"base_url": "https://unreachable.example.com",
		"query":    "shoes",
	})
	if err != nil {
		t.Fatalf("browseProducts: %v", err)
	}
	if out["successful"] != 0 || out["failed"] != 0 {
		t.Fatalf("expected no visited pages, got %v/%v", out["successful"], out["failed"])
	}
	if out["candidates"] != 2 {
		t.Fatalf("expected 2 generated candidates, got %v", out["candidates"])
	}
}

func TestBrowseProductsRequiresParameters(t *testing.T) {
	ts, _ := newTestToolset("")
	if _, err := ts.browseProducts(context.Background(), map[string]interface{}{"query": "x"}); err == nil {
		t.Fatalf("expected error for missing base_url")
	}
	if _, err := ts.browseProducts(context.Background(), map[string]interface{}{"base_url": "https://a.com"}); err == nil {
		t.Fatalf("expected error for missing query")
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial refused")
}
