package tools

import (
	"context"
	"errors"
	"fmt"
)

// captureScreenshot builds the deterministic preview URL and probes
// it. A failed probe only marks the service unavailable; the call
// itself still succeeds.
func (t *Toolset) captureScreenshot(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	target := strParam(params, "url")
	if target == "" {
		return nil, errors.New("url parameter is required")
	}
	width := intParam(params, "width", t.cfg.Screenshot.DefaultWidth)
	height := intParam(params, "height", t.cfg.Screenshot.DefaultHeight)

	previewURL := t.shots.PreviewURL(target, width, height)

	available, probeErr := t.shots.Probe(ctx, previewURL)
	if probeErr != nil {
		t.logger.Printf("screenshot probe for %s failed: %v", target, probeErr)
	}

	return map[string]interface{}{
		"success":           true,
		"url":               target,
		"screenshot_url":    previewURL,
		"width":             width,
		"height":            height,
		"service_available": available,
	}, nil
}

// multiScreenshot captures a list of pages sequentially with a fixed
// delay between calls.
func (t *Toolset) multiScreenshot(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	urls := strSliceParam(params, "urls")
	if len(urls) == 0 {
		return nil, errors.New("urls parameter is required")
	}

	shots := make([]map[string]interface{}, 0, len(urls))
	for i, u := range urls {
		if i > 0 {
			if err := t.sleep(ctx, t.cfg.Automation.InterRequestDelay); err != nil {
				return nil, fmt.Errorf("interrupted between screenshots: %w", err)
			}
		}
		shot, err := t.captureScreenshot(ctx, map[string]interface{}{"url": u})
		if err != nil {
			shots = append(shots, map[string]interface{}{"success": false, "url": u, "error": err.Error()})
			continue
		}
		shots = append(shots, shot)
	}

	return map[string]interface{}{
		"success":     true,
		"screenshots": shots,
		"count":       len(shots),
	}, nil
}
