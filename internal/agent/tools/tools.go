package tools

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/webpilot-ai/webpilot/config"
	"github.com/webpilot-ai/webpilot/internal/agent/core"
	"github.com/webpilot-ai/webpilot/tools/screenshot"
	"github.com/webpilot-ai/webpilot/tools/websearch"
)

// Toolset bundles the tool executors and their outbound clients.
type Toolset struct {
	logger     *log.Logger
	cfg        config.ToolsConfig
	shots      *screenshot.Service
	wikipedia  websearch.WebSearcher
	duckduckgo websearch.WebSearcher
	probe      *http.Client

	rngMu sync.Mutex
	rng   *rand.Rand

	sleep func(ctx context.Context, d time.Duration) error
}

// New builds the toolset from configuration.
func New(cfg config.ToolsConfig, logger *log.Logger) *Toolset {
	if logger == nil {
		logger = log.New(log.Writer(), "[TOOLS] ", log.LstdFlags)
	}
	searchClient := &http.Client{Timeout: cfg.WebSearch.Timeout}
	wiki, _ := websearch.NewWebSearcher(websearch.WikipediaProvider, cfg.WebSearch.WikipediaEndpoint, searchClient)
	ddg, _ := websearch.NewWebSearcher(websearch.DuckDuckGoProvider, cfg.WebSearch.DuckDuckGoEndpoint, searchClient)

	return &Toolset{
		logger:     logger,
		cfg:        cfg,
		shots:      screenshot.New(cfg.Screenshot.BaseURL, cfg.Screenshot.ProbeTimeout),
		wikipedia:  wiki,
		duckduckgo: ddg,
		probe:      &http.Client{Timeout: cfg.Screenshot.ProbeTimeout},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:      sleepCtx,
	}
}

// Register populates the registry with every tool. Called once at
// startup; the registry is read-only afterwards.
func (t *Toolset) Register(reg *core.Registry) {
	reg.Register(core.Tool{
		Name:        "screenshot",
		Description: "Take a screenshot of a web page via the preview service",
		Parameters: map[string]core.ParamSpec{
			"url":    {Type: "string", Description: "target page URL"},
			"width":  {Type: "int", Description: "viewport width", Default: t.cfg.Screenshot.DefaultWidth},
			"height": {Type: "int", Description: "viewport height", Default: t.cfg.Screenshot.DefaultHeight},
		},
		Execute: t.captureScreenshot,
	})
	reg.Register(core.Tool{
		Name:        "web_search",
		Description: "Search the web via Wikipedia and the DuckDuckGo instant-answer API",
		Parameters: map[string]core.ParamSpec{
			"query":  {Type: "string", Description: "search query"},
			"source": {Type: "string", Description: "wikipedia, duckduckgo or both", Default: "both"},
			"limit":  {Type: "int", Description: "maximum number of results", Default: t.cfg.WebSearch.MaxResults},
		},
		Execute: t.searchWeb,
	})
	reg.Register(core.Tool{
		Name:        "analyze_page",
		Description: "Analyze a web page and extract product information",
		Parameters: map[string]core.ParamSpec{
			"url": {Type: "string", Description: "page URL to analyze"},
		},
		Execute: t.analyzePage,
	})
	reg.Register(core.Tool{
		Name:        "browse_products",
		Description: "Browse product listings on a shopping site: generate search URLs, screenshot and analyze each",
		Parameters: map[string]core.ParamSpec{
			"base_url": {Type: "string", Description: "shopping site base URL"},
			"query":    {Type: "string", Description: "product search query"},
			"max_urls": {Type: "int", Description: "maximum URLs to visit", Default: t.cfg.Automation.MaxURLs},
		},
		Execute: t.browseProducts,
	})
	reg.Register(core.Tool{
		Name:        "multi_screenshot",
		Description: "Take screenshots of several pages, one after another",
		Parameters: map[string]core.ParamSpec{
			"urls": {Type: "[]string", Description: "page URLs to capture"},
		},
		Execute: t.multiScreenshot,
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func strParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func strSliceParam(params map[string]interface{}, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (t *Toolset) intn(n int) int {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return t.rng.Intn(n)
}

func (t *Toolset) float64n() float64 {
	t.rngMu.Lock()
	defer t.rngMu.Unlock()
	return t.rng.Float64()
}
