package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lowlimit/podbot/app/episode"
)

const maxHydrationCandidates = 10

// Nested prop chains the hydration document has carried posts under
// across page-framework releases, in the order they appeared.
var hydrationPostPaths = [][]string{
	{"props", "pageProps", "bootstrapEnvelope", "pageBootstrap", "campaign", "included"},
	{"props", "pageProps", "bootstrap", "campaign", "included"},
	{"props", "pageProps", "bootstrap", "post", "included"},
	{"props", "pageProps", "posts"},
	{"props", "initialProps", "pageProps", "posts"},
}

// hydrationStrategy locates the single page-initialization JSON blob
// embedded under the well-known script tag and mines it for post-shaped
// arrays. Highest-confidence strategy: it yields real titles and ids.
func hydrationStrategy(minTitleLen int) func(html []byte) []episode.RawCandidate {
	return func(html []byte) []episode.RawCandidate {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
		if err != nil {
			return nil
		}

		payload := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
		if payload == "" {
			return nil
		}

		var root map[string]any
		if err := json.Unmarshal([]byte(payload), &root); err != nil {
			return nil
		}

		for _, path := range hydrationPostPaths {
			items, ok := digArray(root, path)
			if !ok {
				continue
			}
			candidates := collectPosts(items, minTitleLen)
			if len(candidates) > 0 {
				return candidates
			}
		}

		return nil
	}
}

// digArray walks a chain of object keys and returns the array at the
// end of it, if the document has that shape.
func digArray(root map[string]any, path []string) ([]any, bool) {
	var node any = root
	for _, key := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	items, ok := node.([]any)
	return items, ok
}

// collectPosts keeps the first post-shaped elements in array order.
func collectPosts(items []any, minTitleLen int) []episode.RawCandidate {
	var candidates []episode.RawCandidate

	for _, item := range items {
		if len(candidates) >= maxHydrationCandidates {
			break
		}

		m, ok := item.(map[string]any)
		if !ok || !looksLikePost(m) {
			continue
		}

		candidates = append(candidates, episode.RawCandidate{
			ID:          postID(m),
			Title:       postTitle(m),
			URLFragment: postURLFragment(m),
			MinTitleLen: minTitleLen,
		})
	}

	return candidates
}

func looksLikePost(m map[string]any) bool {
	if t, ok := m["type"].(string); ok && t == "post" {
		return true
	}
	attrs, ok := m["attributes"].(map[string]any)
	if !ok {
		return false
	}
	if _, ok := attrs["title"].(string); ok {
		return true
	}
	_, hasID := m["id"]
	return hasID
}

func postID(m map[string]any) string {
	switch id := m["id"].(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	}
	return ""
}

func postTitle(m map[string]any) string {
	if attrs, ok := m["attributes"].(map[string]any); ok {
		if title, ok := attrs["title"].(string); ok {
			return title
		}
	}
	if title, ok := m["title"].(string); ok {
		return title
	}
	return ""
}

func postURLFragment(m map[string]any) string {
	if attrs, ok := m["attributes"].(map[string]any); ok {
		for _, key := range []string{"url", "patreon_url"} {
			if url, ok := attrs[key].(string); ok && url != "" {
				return url
			}
		}
	}
	return ""
}
