// Package ledger persists the record of already-announced episodes so
// the bot never opens a second thread for the same content, even across
// restarts. The file format is shared with earlier deployments of the
// bot and must stay a plain JSON document.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// MaxSeenKeys bounds the seen-key history. FIFO, not LRU: very old
// content carries no realistic re-announcement risk, unbounded growth
// does.
const MaxSeenKeys = 50

type Ledger struct {
	LastPodcastCheck time.Time `json:"lastPodcastCheck"`
	LastPatreonCheck time.Time `json:"lastPatreonCheck"`
	SeenEpisodes     []string  `json:"seenEpisodes"`
}

// NewLedger returns a fresh ledger with both watermarks set to now and
// no seen keys. Starting at "now" deliberately suppresses announcing
// the pre-existing backlog on a first run.
func NewLedger() *Ledger {
	now := time.Now().UTC()
	return &Ledger{
		LastPodcastCheck: now,
		LastPatreonCheck: now,
		SeenEpisodes:     []string{},
	}
}

func (l *Ledger) Contains(key string) bool {
	for _, seen := range l.SeenEpisodes {
		if seen == key {
			return true
		}
	}
	return false
}

// Record appends the key and enforces the cap, evicting oldest first.
// The caller is responsible for saving afterwards.
func (l *Ledger) Record(key string) {
	l.SeenEpisodes = append(l.SeenEpisodes, key)
	if len(l.SeenEpisodes) > MaxSeenKeys {
		l.SeenEpisodes = l.SeenEpisodes[len(l.SeenEpisodes)-MaxSeenKeys:]
	}
}

// Clear resets the ledger to its freshly-initialized state.
func (l *Ledger) Clear() {
	fresh := NewLedger()
	*l = *fresh
}

// Store reads and writes the durable ledger file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the ledger from disk. A missing or unreadable file is a
// valid state, not an error: the bot keeps running on a fresh ledger
// and accepts at most one round of re-announcements.
func (s *Store) Load() *Ledger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Ledger unreadable, starting fresh", "path", s.path, "error", err)
		}
		return NewLedger()
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		slog.Warn("Ledger corrupt, starting fresh", "path", s.path, "error", err)
		return NewLedger()
	}

	if l.SeenEpisodes == nil {
		l.SeenEpisodes = []string{}
	}

	return &l
}

// Save writes the ledger via temp-file-then-rename so a concurrent
// reader never observes a partially written document.
func (s *Store) Save(l *Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	return nil
}
