package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/webpilot-ai/webpilot/tools/websearch/models"
)

// searchWeb queries up to two independent sources. Each source's
// failure is caught and logged on its own so one outage does not
// suppress the other's results.
func (t *Toolset) searchWeb(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	query := strParam(params, "query")
	if query == "" {
		return nil, errors.New("query parameter is required")
	}
	source := strParam(params, "source")
	if source == "" {
		source = "both"
	}
	limit := intParam(params, "limit", t.cfg.WebSearch.MaxResults)
	if limit <= 0 {
		limit = t.cfg.WebSearch.MaxResults
	}

	var results []models.Result
	var sourceErrors []string

	if source == "wikipedia" || source == "both" {
		hits, err := t.wikipedia.Discover(ctx, query, limit)
		if err != nil {
			t.logger.Printf("wikipedia search failed: %v", err)
			sourceErrors = append(sourceErrors, fmt.Sprintf("wikipedia: %v", err))
		} else {
			results = append(results, hits...)
		}
	}
	if source == "duckduckgo" || source == "both" {
		hits, err := t.duckduckgo.Discover(ctx, query, limit)
		if err != nil {
			t.logger.Printf("duckduckgo search failed: %v", err)
			sourceErrors = append(sourceErrors, fmt.Sprintf("duckduckgo: %v", err))
		} else {
			results = append(results, hits...)
		}
	}

	if len(results) == 0 && len(sourceErrors) > 0 {
		return nil, fmt.Errorf("all search sources failed: %v", sourceErrors)
	}
	if len(results) > limit {
		results = results[:limit]
	}

	out := map[string]interface{}{
		"success": true,
		"query":   query,
		"source":  source,
		"results": results,
		"count":   len(results),
	}
	if len(sourceErrors) > 0 {
		out["source_errors"] = sourceErrors
	}
	return out, nil
}
