// Package checker orchestrates one content-check cycle: feed source
// first (cheap, structured), then the page extraction cascade
// (expensive, unstructured), with every candidate flowing through
// normalization, ledger dedup and dispatch. No failure in a cycle may
// escape this package; every path degrades to skip-and-log.
package checker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lowlimit/podbot/app/episode"
	"github.com/lowlimit/podbot/app/ledger"
)

// Pause between successive thread creations. A throttling courtesy to
// the chat platform's rate limiter, not a correctness requirement.
const defaultAnnounceDelay = time.Second

type Mode string

const (
	ModeFull Mode = "full"
	ModeFeed Mode = "feed"
	ModePage Mode = "page"
)

type Checker struct {
	store      *ledger.Store
	feedSource FeedSource
	pageSource PageSource
	normalizer *episode.Normalizer
	dispatcher Dispatcher
	archive    Archive
	feedURL    string
	pageURL    string

	announceDelay time.Duration

	// Serializes cycles: a manual trigger landing while a scheduled
	// cycle is in flight must not race on the ledger file.
	mu sync.Mutex
}

func NewChecker(store *ledger.Store, feedSource FeedSource, pageSource PageSource,
	normalizer *episode.Normalizer, dispatcher Dispatcher, archive Archive,
	feedURL, pageURL string) *Checker {
	return &Checker{
		store:         store,
		feedSource:    feedSource,
		pageSource:    pageSource,
		normalizer:    normalizer,
		dispatcher:    dispatcher,
		archive:       archive,
		feedURL:       feedURL,
		pageURL:       pageURL,
		announceDelay: defaultAnnounceDelay,
	}
}

// Run executes one check cycle. Overlapping invocations are skipped,
// not queued: the next scheduled cycle covers whatever a skipped
// trigger would have found. Source fetch failures are returned after
// both phases ran; a feed failure never blocks the page phase.
func (c *Checker) Run(ctx context.Context, mode Mode) error {
	if !c.mu.TryLock() {
		slog.Info("Check already in flight, skipping", "mode", mode)
		return nil
	}
	defer c.mu.Unlock()

	slog.Info("Content check started", "mode", mode)

	led := c.store.Load()

	var errs []error
	if mode != ModePage {
		if err := c.checkFeed(ctx, led); err != nil {
			slog.Error("Feed check failed, continuing with page source", "error", err)
			errs = append(errs, err)
		}
	}
	if mode != ModeFeed {
		if err := c.checkPage(ctx, led); err != nil {
			slog.Error("Page check failed", "error", err)
			errs = append(errs, err)
		}
	}

	slog.Info("Content check finished", "mode", mode)

	return errors.Join(errs...)
}

func (c *Checker) checkFeed(ctx context.Context, led *ledger.Ledger) error {
	phaseStart := time.Now().UTC()

	episodes, err := c.feedSource.Fetch(ctx, c.feedURL, led.LastPodcastCheck)
	if err != nil {
		return err
	}

	announced, failed := c.announceAll(led, episodes)

	// The watermark only moves forward, only after a successful fetch,
	// and only when every dispatch went through. A failed episode was
	// published before phaseStart; advancing past it would filter it
	// out of every later fetch with its key never recorded.
	if failed == 0 && phaseStart.After(led.LastPodcastCheck) {
		led.LastPodcastCheck = phaseStart
	}
	if err := c.store.Save(led); err != nil {
		slog.Error("Failed to save ledger after feed phase", "error", err)
	}

	slog.Info("Feed phase completed", "found", len(episodes), "announced", announced, "failed", failed)

	return nil
}

func (c *Checker) checkPage(ctx context.Context, led *ledger.Ledger) error {
	phaseStart := time.Now().UTC()

	candidates, err := c.pageSource.Fetch(ctx, c.pageURL)
	if err != nil {
		return err
	}

	episodes := make([]episode.Episode, 0, len(candidates))
	for _, candidate := range candidates {
		ep, ok := c.normalizer.FromCandidate(candidate)
		if !ok {
			slog.Debug("Candidate rejected by normalizer", "id", candidate.ID, "title", candidate.Title)
			continue
		}
		episodes = append(episodes, ep)
	}

	announced, failed := c.announceAll(led, episodes)

	// Informational only: page candidates carry no reliable publish
	// time, so this watermark never gates inclusion and may advance
	// even past failed dispatches (their keys stay unrecorded).
	if phaseStart.After(led.LastPatreonCheck) {
		led.LastPatreonCheck = phaseStart
	}
	if err := c.store.Save(led); err != nil {
		slog.Error("Failed to save ledger after page phase", "error", err)
	}

	slog.Info("Page phase completed", "candidates", len(candidates), "announced", announced, "failed", failed)

	return nil
}

// announceAll dispatches every not-yet-seen episode sequentially and
// reports how many dispatches succeeded and how many failed. The
// ledger is persisted after each successful dispatch, never before: a
// crash between thread creation and ledger write costs at most one
// duplicate announcement, never a silently lost one.
func (c *Checker) announceAll(led *ledger.Ledger, episodes []episode.Episode) (announced, failed int) {

	for _, ep := range episodes {
		key := ep.DedupKey()
		if led.Contains(key) {
			slog.Debug("Episode already announced", "key", key)
			continue
		}

		if announced+failed > 0 && c.announceDelay > 0 {
			time.Sleep(c.announceDelay)
		}

		threadID, err := c.dispatcher.Announce(ep)
		if err != nil {
			// Key stays unrecorded so the next cycle retries.
			slog.Error("Announcement failed", "key", key, "title", ep.Title, "error", err)
			failed++
			continue
		}

		led.Record(key)
		if err := c.store.Save(led); err != nil {
			slog.Error("Failed to save ledger after announcement", "key", key, "error", err)
		}

		if c.archive != nil {
			if err := c.archive.Record(ep, threadID); err != nil {
				slog.Warn("Failed to archive announcement", "key", key, "error", err)
			}
		}

		announced++
	}

	return announced, failed
}

// AnnounceManual dispatches a single operator-supplied episode and
// records it like any discovered one.
func (c *Checker) AnnounceManual(title, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	source := episode.SourceFeed
	if strings.Contains(url, "patreon.com") {
		source = episode.SourcePage
	}

	ep := episode.Episode{
		Source: source,
		RawID:  title,
		Title:  title,
		URL:    url,
	}

	threadID, err := c.dispatcher.Announce(ep)
	if err != nil {
		return err
	}

	led := c.store.Load()
	led.Record(ep.DedupKey())
	if err := c.store.Save(led); err != nil {
		slog.Error("Failed to save ledger after manual announcement", "error", err)
	}

	if c.archive != nil {
		if err := c.archive.Record(ep, threadID); err != nil {
			slog.Warn("Failed to archive manual announcement", "error", err)
		}
	}

	return nil
}

// ClearLedger resets the ledger to a fresh state (watermarks = now,
// no seen keys).
func (c *Checker) ClearLedger() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	led := c.store.Load()
	led.Clear()
	return c.store.Save(led)
}

// Status is a point-in-time snapshot of the ledger for the status
// command and the ops API.
type Status struct {
	LastPodcastCheck time.Time
	LastPatreonCheck time.Time
	SeenEpisodes     int
}

func (c *Checker) Status() Status {
	led := c.store.Load()
	return Status{
		LastPodcastCheck: led.LastPodcastCheck,
		LastPatreonCheck: led.LastPatreonCheck,
		SeenEpisodes:     len(led.SeenEpisodes),
	}
}
