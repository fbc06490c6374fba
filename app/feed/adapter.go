// Package feed adapts the podcast's syndication feed into canonical
// episode records.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lowlimit/podbot/app/episode"
)

const fetchTimeout = 15 * time.Second

type Adapter struct {
	httpClient  *http.Client
	parser      *gofeed.Parser
	normalizer  *episode.Normalizer
	userAgent   string
	fallbackURL string
}

// NewAdapter creates a feed adapter. fallbackURL is used as the episode
// link when a feed item carries none (typically the show's directory
// page).
func NewAdapter(httpClient *http.Client, normalizer *episode.Normalizer, userAgent, fallbackURL string) *Adapter {
	return &Adapter{
		httpClient:  httpClient,
		parser:      gofeed.NewParser(),
		normalizer:  normalizer,
		userAgent:   userAgent,
		fallbackURL: fallbackURL,
	}
}

// Fetch downloads and parses the feed, returning episodes published
// strictly after the watermark, in feed order.
func (a *Adapter) Fetch(ctx context.Context, url string, since time.Time) ([]episode.Episode, error) {
	data, err := a.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := a.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	episodes := make([]episode.Episode, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || item.PublishedParsed == nil {
			continue
		}
		if !item.PublishedParsed.After(since) {
			continue
		}

		link := item.Link
		if link == "" {
			link = a.fallbackURL
		}

		ep, ok := a.normalizer.FromFeedItem(item.Title, link, item.PublishedParsed)
		if !ok {
			continue
		}

		a.logItemHints(item)
		episodes = append(episodes, ep)
	}

	return episodes, nil
}

// logItemHints surfaces the secondary identifiers a feed item carries.
// They are best-effort hints only; dedup keys stay title-derived so
// keys remain stable across feed hosting changes.
func (a *Adapter) logItemHints(item *gofeed.Item) {
	var enclosureURL string
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enclosureURL = item.Enclosures[0].URL
	}

	var episodeNumber string
	if item.ITunesExt != nil {
		episodeNumber = item.ITunesExt.Episode
	}

	slog.Debug("Feed item discovered",
		"title", item.Title,
		"guid", item.GUID,
		"episode", episodeNumber,
		"enclosure", enclosureURL)
}

func (a *Adapter) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
