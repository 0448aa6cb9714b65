package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/webpilot-ai/webpilot/tools/websearch/models"
)

// Search queries the DuckDuckGo instant-answer API.
type Search struct {
	Endpoint string
	Client   *http.Client
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://duckduckgo.com/api
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = "https://api.duckduckgo.com/"
	}
	u := fmt.Sprintf("%s?q=%s&format=json&no_html=1&skip_disambig=1",
		strings.TrimSuffix(endpoint, "?"), url.QueryEscape(q))

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
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	var raw struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	if raw.AbstractText != "" {
		out = append(out, models.Result{
			Title:   raw.Heading,
			URL:     raw.AbstractURL,
			Snippet: raw.AbstractText,
			Source:  "duckduckgo",
		})
	}
	for _, topic := range raw.RelatedTopics {
		if len(out) >= k {
			break
		}
		if topic.Text == "" {
			continue
		}
		out = append(out, models.Result{
			Title:   topic.Text,
			URL:     topic.FirstURL,
			Snippet: topic.Text,
			Source:  "duckduckgo",
		})
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
