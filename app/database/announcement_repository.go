package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lowlimit/podbot/app/episode"
)

// AnnouncementRepository handles database operations for the
// announcement archive
type AnnouncementRepository struct {
	db *DB
}

func NewAnnouncementRepository(db *DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Record archives an announced episode. Replays of the same dedup key
// (a crash between thread creation and ledger write can produce one)
// update the existing row instead of failing.
func (r *AnnouncementRepository) Record(ep episode.Episode, threadID string) error {
	var publishedAt any
	if ep.PublishedAt != nil {
		publishedAt = ep.PublishedAt.UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO announcements (
			dedup_key, source, raw_id, title, url, published_at, thread_id, announced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (dedup_key) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			thread_id = excluded.thread_id,
			announced_at = excluded.announced_at
	`, ep.DedupKey(), string(ep.Source), ep.RawID, ep.Title, ep.URL,
		publishedAt, threadID, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("failed to record announcement: %w", err)
	}

	return nil
}

// GetRecent returns the most recent announcements, newest first.
func (r *AnnouncementRepository) GetRecent(limit int) ([]Announcement, error) {
	rows, err := r.db.Query(`
		SELECT id, dedup_key, source, raw_id, title, url, published_at, thread_id, announced_at
		FROM announcements
		ORDER BY announced_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent announcements: %w", err)
	}
	defer rows.Close()

	var announcements []Announcement
	for rows.Next() {
		var a Announcement
		var publishedAt sql.NullTime
		err := rows.Scan(&a.ID, &a.DedupKey, &a.Source, &a.RawID, &a.Title,
			&a.URL, &publishedAt, &a.ThreadID, &a.AnnouncedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			a.PublishedAt = &t
		}
		announcements = append(announcements, a)
	}

	return announcements, rows.Err()
}

// GetCount returns the total number of archived announcements.
func (r *AnnouncementRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM announcements`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count announcements: %w", err)
	}
	return count, nil
}
