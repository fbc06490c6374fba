// Package page mines the creator's public page for post candidates.
// There is no structured API, so extraction runs a cascade of
// strategies over the raw HTML, ordered by decreasing structure and
// reliability: the framework hydration blob first, then streamed
// hydration chunks, then plain markup patterns as a last resort.
package page

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lowlimit/podbot/app/episode"
	"github.com/lowlimit/podbot/app/show"
)

const fetchTimeout = 15 * time.Second

// Strategy is one extraction attempt over the page markup. A strategy
// that cannot parse its input returns nil; it never fails the cascade.
type Strategy struct {
	Name string
	Run  func(html []byte) []episode.RawCandidate
}

type Extractor struct {
	httpClient *http.Client
	userAgent  string
	strategies []Strategy
}

func NewExtractor(httpClient *http.Client, userAgent string, thresholds show.Thresholds) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		strategies: []Strategy{
			{Name: "hydration", Run: hydrationStrategy(thresholds.Hydration)},
			{Name: "stream", Run: streamStrategy(thresholds.Stream)},
			{Name: "html", Run: htmlStrategy},
		},
	}
}

// Fetch downloads the page and runs the cascade. A fetch failure aborts
// the whole page phase for this cycle; extraction failures do not.
func (e *Extractor) Fetch(ctx context.Context, url string) ([]episode.RawCandidate, error) {
	html, err := e.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	return e.Extract(html), nil
}

// Extract runs the strategies in priority order and returns the first
// non-empty result set. Later strategies are strictly fallback, never
// merged: a lower-confidence strategy must not dilute ids and titles a
// higher-confidence one already recovered.
func (e *Extractor) Extract(html []byte) []episode.RawCandidate {
	for _, strategy := range e.strategies {
		candidates := strategy.Run(html)
		if len(candidates) > 0 {
			slog.Debug("Page extraction succeeded",
				"strategy", strategy.Name,
				"candidates", len(candidates))
			return candidates
		}
		slog.Debug("Page extraction strategy found nothing", "strategy", strategy.Name)
	}
	return nil
}

func (e *Extractor) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return html, nil
}
