package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// browseProducts generates candidate listing URLs for a shopping
// site, filters them by a validity probe, then screenshots and
// analyzes each surviving URL in turn. Per-URL failures are recorded
// without stopping the loop.
func (t *Toolset) browseProducts(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	baseURL := strParam(params, "base_url")
	if baseURL == "" {
		return nil, errors.New("base_url parameter is required")
	}
	query := strParam(params, "query")
	if query == "" {
		return nil, errors.New("query parameter is required")
	}
	maxURLs := intParam(params, "max_urls", t.cfg.Automation.MaxURLs)
	if maxURLs <= 0 {
		maxURLs = t.cfg.Automation.MaxURLs
	}

	candidates := candidateURLs(baseURL, query)

	var valid []string
	for _, candidate := range candidates {
		if len(valid) >= maxURLs {
			break
		}
		if t.validURL(ctx, candidate) {
			valid = append(valid, candidate)
		} else {
			t.logger.Printf("dropping unreachable candidate: %s", candidate)
		}
	}

	visited := make([]map[string]interface{}, 0, len(valid))
	var analyses []PageAnalysis
	successes, failures := 0, 0

	for i, pageURL := range valid {
		if i > 0 {
			// pace requests so the target site is not hammered
			if err := t.sleep(ctx, t.cfg.Automation.InterRequestDelay); err != nil {
				return nil, fmt.Errorf("interrupted between pages: %w", err)
			}
		}

		entry := map[string]interface{}{"url": pageURL}
		shot, err := t.screenshotWithRetry(ctx, pageURL)
		if err != nil {
			failures++
			entry["status"] = "failed"
			entry["error"] = err.Error()
			visited = append(visited, entry)
			t.logger.Printf("page %s failed: %v", pageURL, err)
			continue
		}
		analysis := t.analyze(pageURL)
		analyses = append(analyses, analysis)
		successes++
		entry["status"] = "ok"
		entry["screenshot"] = shot
		if m, err := asMap(analysis); err == nil {
			entry["analysis"] = m
		}
		visited = append(visited, entry)
	}

	summary := summarizeAnalyses(analyses)

	return map[string]interface{}{
		"success":    true,
		"base_url":   baseURL,
		"query":      query,
		"candidates": len(candidates),
		"visited":    visited,
		"successful": successes,
		"failed":     failures,
		"summary":    summary,
	}, nil
}

// candidateURLs builds listing URLs for the query. Two e-commerce
// domains get site-specific templates; everything else falls back to
// a generic search path.
func candidateURLs(baseURL, query string) []string {
	base := strings.TrimSuffix(baseURL, "/")
	q := url.QueryEscape(query)
	host := hostOf(baseURL)

	switch {
	case strings.Contains(host, "amazon."):
		return []string{
			base + "/s?k=" + q,
			base + "/s?k=" + q + "&s=price-asc-rank",
			base + "/s?k=" + q + "&s=review-rank",
		}
	case strings.Contains(host, "ebay."):
		return []string{
			base + "/sch/i.html?_nkw=" + q,
			base + "/sch/i.html?_nkw=" + q + "&_sop=15",
		}
	default:
		return []string{
			base + "/search?q=" + q,
			base + "/search?q=" + q + "&sort=price",
		}
	}
}

// validURL checks scheme and reachability.
func (t *Toolset) validURL(ctx context.Context, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return false
	}
	resp, err := t.probe.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// screenshotWithRetry retries the capture while the preview service
// is unavailable, doubling the delay each attempt.
func (t *Toolset) screenshotWithRetry(ctx context.Context, pageURL string) (map[string]interface{}, error) {
	delay := t.cfg.Automation.RetryDelay
	attempts := t.cfg.Automation.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		shot, err := t.captureScreenshot(ctx, map[string]interface{}{"url": pageURL})
		if err == nil {
			if available, _ := shot["service_available"].(bool); available {
				return shot, nil
			}
			lastErr = errors.New("preview service unavailable")
		} else {
			lastErr = err
		}
		if attempt < attempts {
			if err := t.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}
	}
	return nil, fmt.Errorf("screenshot failed after %d attempts: %w", attempts, lastErr)
}

// summarizeAnalyses aggregates per-page analyses into overall counts,
// the brand set, and the overall price range.
func summarizeAnalyses(analyses []PageAnalysis) map[string]interface{} {
	totalProducts := 0
	brandSet := make(map[string]struct{})
	var ranges []PriceRange
	for _, a := range analyses {
		totalProducts += a.ProductCount
		for _, brand := range a.Brands {
			brandSet[brand] = struct{}{}
		}
		ranges = append(ranges, a.PriceRange)
	}
	brands := make([]string, 0, len(brandSet))
	for brand := range brandSet {
		brands = append(brands, brand)
	}

	summary := map[string]interface{}{
		"pages_analyzed": len(analyses),
		"total_products": totalProducts,
		"brands":         brands,
	}
	if overallMin, overallMax, ok := aggregatePriceRanges(ranges); ok {
		summary["price_range"] = map[string]interface{}{
			"overall_min": overallMin,
			"overall_max": overallMax,
		}
	}
	return summary
}

// aggregatePriceRanges folds per-page ranges into the overall span.
func aggregatePriceRanges(ranges []PriceRange) (float64, float64, bool) {
	if len(ranges) == 0 {
		return 0, 0, false
	}
	overallMin := ranges[0].Min
	overallMax := ranges[0].Max
	for _, r := range ranges[1:] {
		if r.Min < overallMin {
			overallMin = r.Min
		}
		if r.Max > overallMax {
			overallMax = r.Max
		}
	}
	return overallMin, overallMax, true
}
