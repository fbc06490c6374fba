package page

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lowlimit/podbot/app/episode"
	"github.com/lowlimit/podbot/app/show"
)

func testExtractor() *Extractor {
	return NewExtractor(http.DefaultClient, "podbot-test", show.Thresholds{Hydration: 4, Stream: 6})
}

func TestCascadeShortCircuit(t *testing.T) {
	calls := make(map[string]int)

	counting := func(name string, result []episode.RawCandidate) Strategy {
		return Strategy{
			Name: name,
			Run: func(html []byte) []episode.RawCandidate {
				calls[name]++
				return result
			},
		}
	}

	e := &Extractor{
		strategies: []Strategy{
			counting("first", []episode.RawCandidate{{ID: "1"}}),
			counting("second", []episode.RawCandidate{{ID: "2"}}),
			counting("third", nil),
		},
	}

	candidates := e.Extract([]byte("<html></html>"))

	if len(candidates) != 1 || candidates[0].ID != "1" {
		t.Fatalf("Expected first strategy's result, got: %v", candidates)
	}
	if calls["first"] != 1 {
		t.Errorf("Expected first strategy called once, got: %d", calls["first"])
	}
	if calls["second"] != 0 || calls["third"] != 0 {
		t.Errorf("Expected later strategies never invoked, got: %v", calls)
	}
}

func TestCascadeFallsThrough(t *testing.T) {
	order := []string{}

	e := &Extractor{
		strategies: []Strategy{
			{Name: "empty", Run: func([]byte) []episode.RawCandidate {
				order = append(order, "empty")
				return nil
			}},
			{Name: "productive", Run: func([]byte) []episode.RawCandidate {
				order = append(order, "productive")
				return []episode.RawCandidate{{ID: "x"}}
			}},
		},
	}

	candidates := e.Extract([]byte(""))
	if len(candidates) != 1 {
		t.Fatalf("Expected fallback strategy's result, got: %v", candidates)
	}
	if len(order) != 2 {
		t.Errorf("Expected both strategies tried in order, got: %v", order)
	}
}

func TestHydrationStrategy(t *testing.T) {
	html := `<html><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"bootstrapEnvelope":{"pageBootstrap":{"campaign":{"included":[
  {"type":"post","id":"111","attributes":{"title":"Ep 45: Turn Decisions","url":"/posts/ep-45-111"}},
  {"type":"reward","id":"9"},
  {"type":"post","id":"112","attributes":{"title":"Ep 46: River Bluffs","url":"/posts/ep-46-112"}}
]}}}}}}
</script>
</body></html>`

	candidates := testExtractor().Extract([]byte(html))

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got: %d", len(candidates))
	}
	if candidates[0].Title != "Ep 45: Turn Decisions" || candidates[1].Title != "Ep 46: River Bluffs" {
		t.Errorf("Expected titles in array order, got: %q, %q", candidates[0].Title, candidates[1].Title)
	}
	if candidates[0].ID != "111" {
		t.Errorf("Expected id '111', got: %s", candidates[0].ID)
	}
	if candidates[0].URLFragment != "/posts/ep-45-111" {
		t.Errorf("Expected url fragment, got: %s", candidates[0].URLFragment)
	}
}

func TestHydrationStrategyAlternatePath(t *testing.T) {
	html := `<html><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"posts":[
  {"id":"501","attributes":{"title":"Bonus: Member Q&A"}}
]}}}
</script>
</body></html>`

	candidates := testExtractor().Extract([]byte(html))

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate from alternate prop chain, got: %d", len(candidates))
	}
	if candidates[0].Title != "Bonus: Member Q&A" {
		t.Errorf("Expected title from attributes, got: %s", candidates[0].Title)
	}
}

func TestHydrationStrategyCap(t *testing.T) {
	var posts []string
	for i := 0; i < 15; i++ {
		posts = append(posts, fmt.Sprintf(`{"type":"post","id":"%d","attributes":{"title":"Episode %d"}}`, i, i))
	}
	html := `<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"posts":[` +
		strings.Join(posts, ",") + `]}}}</script>`

	candidates := testExtractor().Extract([]byte(html))

	if len(candidates) != maxHydrationCandidates {
		t.Errorf("Expected cap of %d candidates, got: %d", maxHydrationCandidates, len(candidates))
	}
}

func TestHydrationStrategyMalformedJSON(t *testing.T) {
	html := `<script id="__NEXT_DATA__" type="application/json">{broken</script>
<a href="/posts/fallback-slug-777">post</a>`

	candidates := testExtractor().Extract([]byte(html))

	// Malformed blob is local to the strategy; the HTML fallback still runs.
	if len(candidates) != 1 || candidates[0].ID != "fallback-slug-777" {
		t.Fatalf("Expected HTML fallback to pick up the slug, got: %v", candidates)
	}
}

func TestStreamStrategy(t *testing.T) {
	html := `<html><body>
<script>self.__next_f.push([1,"no interesting payload here"])</script>
<script>self.__next_f.push([1,"{\"data\":[{\"type\":\"post\",\"id\":\"222\",\"attributes\":{\"title\":\"Ep 47: Live Reads\",\"url\":\"/posts/ep-47-222\"}}]}"])</script>
</body></html>`

	candidates := testExtractor().Extract([]byte(html))

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate from stream chunk, got: %d", len(candidates))
	}
	if candidates[0].URLFragment != "/posts/ep-47-222" {
		t.Errorf("Expected url fragment '/posts/ep-47-222', got: %s", candidates[0].URLFragment)
	}
	if candidates[0].Title != "Ep 47: Live Reads" {
		t.Errorf("Expected paired title, got: %s", candidates[0].Title)
	}
}

func TestStreamStrategyStopsAtFirstProductiveChunk(t *testing.T) {
	html := `<script>self.__next_f.push([1,"{\"type\":\"post\",\"url\":\"/posts/first-888\"}"])</script>
<script>self.__next_f.push([1,"{\"type\":\"post\",\"url\":\"/posts/second-999\"}"])</script>`

	candidates := testExtractor().Extract([]byte(html))

	if len(candidates) != 1 {
		t.Fatalf("Expected candidates from the first productive chunk only, got: %d", len(candidates))
	}
	if candidates[0].URLFragment != "/posts/first-888" {
		t.Errorf("Expected first chunk's post, got: %s", candidates[0].URLFragment)
	}
}

func TestUnescapeChunk(t *testing.T) {
	in := `line one\nline two\ttabbed \"quoted\" back\\slash\r`
	want := "line one\nline two\ttabbed \"quoted\" back\\slash\r"

	if got := unescapeChunk(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHTMLStrategy(t *testing.T) {
	html := `<html><body>
<a href="/posts/ep-48-333">one</a>
<a href="/posts/ep-49-334">two</a>
<a href="/posts/bonus-hand-335">three</a>
<a href="/posts/ep-48-333">duplicate</a>
</body></html>`

	candidates := testExtractor().Extract([]byte(html))

	if len(candidates) != 3 {
		t.Fatalf("Expected 3 deduplicated candidates, got: %d", len(candidates))
	}

	wantIDs := []string{"ep-48-333", "ep-49-334", "bonus-hand-335"}
	for i, want := range wantIDs {
		if candidates[i].ID != want {
			t.Errorf("Expected id %q at position %d, got: %s", want, i, candidates[i].ID)
		}
		if candidates[i].Title != "" {
			t.Errorf("Expected no title from HTML strategy, got: %s", candidates[i].Title)
		}
	}
}

func TestHTMLStrategyPatternUnion(t *testing.T) {
	html := `<div data-post-id="445566"></div>
<span class="card post-778899"></span>
see https://www.patreon.com/posts/full-link-101010 for details`

	candidates := testExtractor().Extract([]byte(html))

	found := make(map[string]bool)
	for _, c := range candidates {
		found[c.ID] = true
	}
	for _, want := range []string{"445566", "778899", "full-link-101010"} {
		if !found[want] {
			t.Errorf("Expected slug %q in union, got: %v", want, found)
		}
	}
}

func TestExtractNothing(t *testing.T) {
	candidates := testExtractor().Extract([]byte("<html><body>nothing relevant</body></html>"))
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got: %v", candidates)
	}
}

func TestFetchNon200AbortsCascade(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e := NewExtractor(server.Client(), "podbot-test", show.Thresholds{})

	if _, err := e.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected fetch error for non-2xx status")
	}
}

func TestFetchSetsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<a href="/posts/ua-check-123">x</a>`)
	}))
	defer server.Close()

	e := NewExtractor(server.Client(), "podbot-test", show.Thresholds{})

	candidates, err := e.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected fetch to succeed, got: %v", err)
	}
	if gotUA != "podbot-test" {
		t.Errorf("Expected user agent 'podbot-test', got: %s", gotUA)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected 1 candidate, got: %d", len(candidates))
	}
}
