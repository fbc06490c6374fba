package episode

import (
	"strings"
	"time"
)

// SourceKind identifies which discovery path produced an episode.
type SourceKind string

const (
	SourceFeed SourceKind = "feed"
	SourcePage SourceKind = "page"
)

// Episode is the canonical, post-normalization record. RawID must come
// from intrinsic fields of the source (title, post id, URL slug), never
// from list position, so dedup keys stay stable between checks.
type Episode struct {
	Source      SourceKind
	RawID       string
	Title       string
	URL         string // empty when no link could be resolved
	PublishedAt *time.Time
}

// RawCandidate is the loosely-typed bag of fields a page extraction
// strategy produces before normalization.
type RawCandidate struct {
	ID          string
	Title       string
	URLFragment string // "/posts/<slug>" or a full URL
	MinTitleLen int    // confidence threshold set by the producing strategy
}

// DedupKey returns the ledger key for the episode:
// "{source}_{canonicalized rawID-or-title}".
func (e Episode) DedupKey() string {
	id := e.RawID
	if id == "" {
		id = e.Title
	}
	return string(e.Source) + "_" + canonicalize(id)
}

// canonicalize strips every character that is not a letter or a digit.
func canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
