package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/webpilot-ai/webpilot/tools/websearch/models"
)

// Search queries the MediaWiki opensearch endpoint.
type Search struct {
	Endpoint string
	Client   *http.Client
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://www.mediawiki.org/wiki/API:Opensearch
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = "https://en.wikipedia.org/w/api.php"
	}
	u := fmt.Sprintf("%s?action=opensearch&search=%s&limit=%d&namespace=0&format=json",
		endpoint, url.QueryEscape(q), k)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	httpc := s.Client
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	// opensearch responds with [query, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("unexpected opensearch response shape")
	}
	var titles, descriptions, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, err
	}
	_ = json.Unmarshal(raw[2], &descriptions)
	if err := json.Unmarshal(raw[3], &urls); err != nil {
		return nil, err
	}

	var out []models.Result
	for i, title := range titles {
		if i >= k {
			break
		}
		r := models.Result{Title: title, Source: "wikipedia"}
		if i < len(urls) {
			r.URL = urls[i]
		}
		if i < len(descriptions) {
			r.Snippet = descriptions[i]
		}
		out = append(out, r)
	}
	return out, nil
}
