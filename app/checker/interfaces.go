package checker

import (
	"context"
	"time"

	"github.com/lowlimit/podbot/app/episode"
)

// FeedSource yields episodes from the syndication feed published after
// the watermark.
type FeedSource interface {
	Fetch(ctx context.Context, url string, since time.Time) ([]episode.Episode, error)
}

// PageSource yields raw candidates mined from the creator page.
type PageSource interface {
	Fetch(ctx context.Context, url string) ([]episode.RawCandidate, error)
}

// Dispatcher announces one episode and returns the created thread ID.
type Dispatcher interface {
	Announce(ep episode.Episode) (string, error)
}

// Archive records announced episodes for the status surfaces.
type Archive interface {
	Record(ep episode.Episode, threadID string) error
}
