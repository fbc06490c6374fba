package page

import (
	"regexp"
	"strings"

	"github.com/lowlimit/podbot/app/episode"
)

const (
	maxStreamChunks     = 20
	maxStreamCandidates = 10
)

// App-Router pages carry no single hydration blob; data arrives as
// incremental push calls whose payloads are escaped string fragments.
// A fragment is not guaranteed to be standalone valid JSON, so this
// strategy scans text with patterns instead of structural parsing.
var (
	streamChunkPattern = regexp.MustCompile(`self\.__next_f\.push\(\[1,\s*"((?:[^"\\]|\\.)*)"\]\)`)

	streamURLPattern   = regexp.MustCompile(`"url":"(/posts/[^"]+)"`)
	streamIDPattern    = regexp.MustCompile(`/posts/(\d+)`)
	streamTitlePattern = regexp.MustCompile(`"title":"((?:[^"\\]|\\.)*)"`)
)

var streamPostIndicators = []string{
	`"type":"post"`,
	`/posts/`,
	`"title":"`,
	`post_id`,
}

// streamStrategy scans push-call chunks in document order and stops at
// the first chunk that yields candidates.
func streamStrategy(minTitleLen int) func(html []byte) []episode.RawCandidate {
	return func(html []byte) []episode.RawCandidate {
		matches := streamChunkPattern.FindAllSubmatch(html, maxStreamChunks)

		for _, match := range matches {
			chunk := unescapeChunk(string(match[1]))
			if !hasPostIndicator(chunk) {
				continue
			}
			if candidates := scanChunk(chunk, minTitleLen); len(candidates) > 0 {
				return candidates
			}
		}

		return nil
	}
}

func hasPostIndicator(chunk string) bool {
	for _, indicator := range streamPostIndicators {
		if strings.Contains(chunk, indicator) {
			return true
		}
	}
	return false
}

// scanChunk extracts url-style and numeric post references plus title
// fields, pairing them positionally. Positional pairing is best-effort:
// a chunk interleaves posts and titles in document order, which is the
// only ordering available without a structural parse.
func scanChunk(chunk string, minTitleLen int) []episode.RawCandidate {
	var fragments []string
	seen := make(map[string]bool)

	for _, m := range streamURLPattern.FindAllStringSubmatch(chunk, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			fragments = append(fragments, m[1])
		}
	}
	for _, m := range streamIDPattern.FindAllStringSubmatch(chunk, -1) {
		fragment := "/posts/" + m[1]
		if !seen[fragment] {
			seen[fragment] = true
			fragments = append(fragments, fragment)
		}
	}

	var titles []string
	for _, m := range streamTitlePattern.FindAllStringSubmatch(chunk, -1) {
		titles = append(titles, unescapeChunk(m[1]))
	}

	var candidates []episode.RawCandidate
	for i, fragment := range fragments {
		if len(candidates) >= maxStreamCandidates {
			break
		}
		var title string
		if i < len(titles) {
			title = titles[i]
		}
		candidates = append(candidates, episode.RawCandidate{
			Title:       title,
			URLFragment: fragment,
			MinTitleLen: minTitleLen,
		})
	}

	return candidates
}

// unescapeChunk reverses the fixed set of backslash escapes the
// framework applies when embedding a chunk inside a script string.
func unescapeChunk(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
			continue
		}
		i++
	}

	return b.String()
}
