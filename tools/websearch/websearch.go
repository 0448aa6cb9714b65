package websearch

import (
	"context"
	"errors"
	"net/http"

	"github.com/webpilot-ai/webpilot/tools/websearch/duckduckgo"
	"github.com/webpilot-ai/webpilot/tools/websearch/models"
	"github.com/webpilot-ai/webpilot/tools/websearch/wikipedia"
)

type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	WikipediaProvider  Provider = "wikipedia"
	DuckDuckGoProvider Provider = "duckduckgo"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

func NewWebSearcher(provider Provider, endpoint string, client *http.Client) (WebSearcher, error) {
	switch provider {
	case WikipediaProvider:
		return wikipedia.Search{Endpoint: endpoint, Client: client}, nil
	case DuckDuckGoProvider:
		return duckduckgo.Search{Endpoint: endpoint, Client: client}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
