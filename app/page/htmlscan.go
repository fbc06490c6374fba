package page

import (
	"regexp"

	"github.com/lowlimit/podbot/app/episode"
)

// Last-resort patterns over raw markup. These recover identifiers only,
// never titles; the normalizer substitutes the placeholder title.
var htmlPostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`href="/posts/([A-Za-z0-9][A-Za-z0-9_-]*)"`),
	regexp.MustCompile(`/posts/(\d{6,})`),
	regexp.MustCompile(`data-post-id="([A-Za-z0-9_-]+)"`),
	regexp.MustCompile(`\bpost-(\d{4,})\b`),
	regexp.MustCompile(`patreon\.com/posts/([A-Za-z0-9][A-Za-z0-9_-]*)`),
}

func htmlStrategy(html []byte) []episode.RawCandidate {
	var slugs []string
	seen := make(map[string]bool)

	for _, pattern := range htmlPostPatterns {
		for _, m := range pattern.FindAllSubmatch(html, -1) {
			slug := string(m[1])
			if !seen[slug] {
				seen[slug] = true
				slugs = append(slugs, slug)
			}
		}
	}

	candidates := make([]episode.RawCandidate, 0, len(slugs))
	for _, slug := range slugs {
		candidates = append(candidates, episode.RawCandidate{
			ID:          slug,
			URLFragment: "/posts/" + slug,
		})
	}

	return candidates
}
