package screenshot

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Service builds preview URLs against a thum.io-style screenshot
// service and probes them for reachability.
type Service struct {
	BaseURL      string
	ProbeTimeout time.Duration
	Client       *http.Client
}

func New(baseURL string, probeTimeout time.Duration) *Service {
	if baseURL == "" {
		baseURL = "https://image.thum.io/get"
	}
	if probeTimeout == 0 {
		probeTimeout = 10 * time.Second
	}
	return &Service{
		BaseURL:      baseURL,
		ProbeTimeout: probeTimeout,
		Client:       &http.Client{Timeout: probeTimeout},
	}
}

// PreviewURL returns the deterministic preview-service URL for the
// target page at the given dimensions.
func (s *Service) PreviewURL(target string, width, height int) string {
	return fmt.Sprintf("%s/width/%d/crop/%d/noanimate/%s", s.BaseURL, width, height, target)
}

// Probe issues a HEAD request against the preview URL and reports
// whether the service answered with a success status. The error is
// informational; callers treat a failed probe as service unavailable,
// not as a failed screenshot.
func (s *Service) Probe(ctx context.Context, previewURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, previewURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return true, nil
	}
	return false, fmt.Errorf("preview service returned status %d", resp.StatusCode)
}
