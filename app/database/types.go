package database

import (
	"time"
)

// Announcement is one archived announcement. The archive is an audit
// trail behind the status surfaces; the JSON ledger remains the dedup
// authority.
type Announcement struct {
	ID          int64
	DedupKey    string
	Source      string
	RawID       string
	Title       string
	URL         string
	PublishedAt *time.Time
	ThreadID    string
	AnnouncedAt time.Time
}
