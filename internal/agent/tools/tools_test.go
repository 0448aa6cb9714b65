package tools

import (
	"context"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/webpilot-ai/webpilot/config"
	"github.com/webpilot-ai/webpilot/tools/screenshot"
	"github.com/webpilot-ai/webpilot/tools/websearch/models"
)

func testConfig() config.ToolsConfig {
	return config.ToolsConfig{
		Screenshot: config.ScreenshotConfig{
			DefaultWidth:  1080,
			DefaultHeight: 1920,
			ProbeTimeout:  2 * time.Second,
		},
		WebSearch: config.WebSearchConfig{MaxResults: 5},
		Automation: config.AutomationConfig{
			MaxRetries:        3,
			RetryDelay:        time.Millisecond,
			InterRequestDelay: time.Millisecond,
			MaxURLs:           5,
		},
	}
}

// newTestToolset builds a toolset with deterministic randomness and a
// sleep stub that records requested delays instead of waiting.
func newTestToolset(shotsBase string) (*Toolset, *[]time.Duration) {
	var slept []time.Duration
	cfg := testConfig()
	ts := &Toolset{
		logger: log.New(io.Discard, "", 0),
		cfg:    cfg,
		shots:  screenshot.New(shotsBase, cfg.Screenshot.ProbeTimeout),
		probe:  &http.Client{Timeout: cfg.Screenshot.ProbeTimeout},
		rng:    rand.New(rand.NewSource(42)),
		sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return ctx.Err()
		},
	}
	return ts, &slept
}

type fakeSearcher struct {
	results []models.Result
	err     error
}

func (f fakeSearcher) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}
