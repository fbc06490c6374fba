package episode

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultPlaceholderTitle is used when a source cannot supply a real
// title (the HTML fallback strategy only recovers identifiers).
const DefaultPlaceholderTitle = "New Patreon post"

const postsPathPrefix = "/posts/"

type Normalizer struct {
	placeholderTitle string
}

func NewNormalizer(placeholderTitle string) *Normalizer {
	if placeholderTitle == "" {
		placeholderTitle = DefaultPlaceholderTitle
	}
	return &Normalizer{placeholderTitle: placeholderTitle}
}

// FromFeedItem maps a syndication feed item to a canonical Episode.
// The RawID is derived from the title, which is stable after publish.
func (n *Normalizer) FromFeedItem(title, link string, publishedAt *time.Time) (Episode, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Episode{}, false
	}

	return Episode{
		Source:      SourceFeed,
		RawID:       title,
		Title:       title,
		URL:         link,
		PublishedAt: publishedAt,
	}, true
}

// FromCandidate converts a raw page candidate into a canonical Episode.
// Returns false when the candidate is noise (no usable identifier, or a
// real title shorter than the strategy's confidence threshold).
func (n *Normalizer) FromCandidate(c RawCandidate) (Episode, bool) {
	rawID := strings.TrimSpace(c.ID)
	if rawID == "" {
		rawID = slugFromFragment(c.URLFragment)
	}

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = n.placeholderTitle
	} else if c.MinTitleLen > 0 && len(title) < c.MinTitleLen {
		return Episode{}, false
	}

	url := postURL(rawID, c.URLFragment)

	if rawID == "" {
		if c.Title == "" {
			// Neither an identifier nor a real title: nothing stable to key on.
			return Episode{}, false
		}
		rawID = titleHash(title)
	}

	return Episode{
		Source: SourcePage,
		RawID:  rawID,
		Title:  title,
		URL:    url,
	}, true
}

func slugFromFragment(fragment string) string {
	if fragment == "" {
		return ""
	}
	if idx := strings.Index(fragment, postsPathPrefix); idx >= 0 {
		slug := fragment[idx+len(postsPathPrefix):]
		if cut := strings.IndexAny(slug, "?#\""); cut >= 0 {
			slug = slug[:cut]
		}
		return strings.Trim(slug, "/")
	}
	return ""
}

func postURL(rawID, fragment string) string {
	if strings.HasPrefix(fragment, "http://") || strings.HasPrefix(fragment, "https://") {
		return fragment
	}
	if rawID == "" {
		return ""
	}
	return "https://www.patreon.com/posts/" + rawID
}

func titleHash(title string) string {
	sum := sha256.Sum256([]byte(title))
	return hex.EncodeToString(sum[:])[:12]
}
