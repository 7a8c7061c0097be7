package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaozhan234-png/ai-news-daily/internal/news"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Test Feed</title>
<item><title>First LLM story of the day</title><link>https://example.com/1</link><description>&lt;p&gt;summary one&lt;/p&gt;</description></item>
<item><title>Claude ships a bigger context window</title><link>https://example.com/2</link><description>summary two</description></item>
<item><title>Third story past the limit</title><link>https://example.com/3</link><description>summary three</description></item>
</channel></rss>`

func rssServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

func TestRSSAdapterFetchesAndLimits(t *testing.T) {
	srv := rssServer(t, http.StatusOK, rssBody)

	a := newRSSAdapter(SourceSpec{
		Name: "Test Feed", Kind: "rss", URLs: []string{srv.URL},
		Limit: 2, ScoreMin: 60, ScoreMax: 80,
	}, testClient())

	got := a.FetchLatest(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, "First LLM story of the day", got[0].Title)
	assert.Equal(t, "https://example.com/1", got[0].URL)
	assert.Equal(t, "Test Feed", got[0].SourceName)
	assert.Equal(t, "summary one", got[0].RawSummary, "markup stripped from description")
	assert.GreaterOrEqual(t, got[0].Popularity, 60.0)
	assert.LessOrEqual(t, got[0].Popularity, 80.0)
}

func TestRSSAdapterFallsBackToNextURL(t *testing.T) {
	dead := rssServer(t, http.StatusServiceUnavailable, "")
	live := rssServer(t, http.StatusOK, rssBody)

	a := newRSSAdapter(SourceSpec{
		Name: "Fallback Feed", URLs: []string{dead.URL, live.URL}, Limit: 1,
	}, testClient())

	got := a.FetchLatest(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "First LLM story of the day", got[0].Title)
}

func TestRSSAdapterFallsBackPastUnusableEntries(t *testing.T) {
	// Parses fine but every entry within the limit lacks a link.
	linkless := rssServer(t, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Linkless</title>
<item><title>Entry without a link</title><description>summary</description></item>
</channel></rss>`)
	live := rssServer(t, http.StatusOK, rssBody)

	a := newRSSAdapter(SourceSpec{
		Name: "Fallback Feed", URLs: []string{linkless.URL, live.URL}, Limit: 1,
	}, testClient())

	got := a.FetchLatest(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "First LLM story of the day", got[0].Title)
}

func TestRSSAdapterAllURLsDead(t *testing.T) {
	dead := rssServer(t, http.StatusInternalServerError, "")

	a := newRSSAdapter(SourceSpec{
		Name: "Dead Feed", URLs: []string{dead.URL, "http://127.0.0.1:1/feed"}, Limit: 3,
	}, testClient())

	assert.Empty(t, a.FetchLatest(context.Background()))
}

func TestTrackedAdapterFiltersAndTags(t *testing.T) {
	srv := rssServer(t, http.StatusOK, rssBody)

	base := newRSSAdapter(SourceSpec{
		Name: "Tracked Feed", URLs: []string{srv.URL}, Limit: 3,
	}, testClient())
	a := &trackedAdapter{inner: base, registry: news.DefaultRegistry()}

	got := a.FetchLatest(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "Claude ships a bigger context window", got[0].Title)
	assert.Equal(t, "Anthropic", got[0].CompanyTag)
}

func TestHackerNewsAdapterPicksTopicalTitles(t *testing.T) {
	items := map[int]string{
		1: `{"id":1,"title":"Show HN: my static site generator","url":"https://example.com/ssg","score":120}`,
		2: `{"id":2,"title":"A new open source LLM inference engine","url":"https://example.com/llm","score":300}`,
		3: `{"id":3,"title":"GPU cluster scheduling deep dive","url":"","score":80}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			fmt.Fprint(w, `[1,2,3]`)
			return
		}
		var id int
		fmt.Sscanf(r.URL.Path, "/item/%d.json", &id)
		body, ok := items[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	a := newHackerNewsAdapter(SourceSpec{
		Name: "Hacker News", Kind: "hackernews", Limit: 2, ScoreMin: 80, ScoreMax: 90,
	}, testClient(), news.DefaultRegistry())
	a.topURL = srv.URL + "/topstories.json"
	a.itemURL = srv.URL + "/item/%d.json"

	got := a.FetchLatest(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, "A new open source LLM inference engine", got[0].Title)
	assert.Equal(t, "https://example.com/llm", got[0].URL)
	// Items without an outbound URL link to the discussion page.
	assert.Equal(t, "https://news.ycombinator.com/item?id=3", got[1].URL)
	assert.Equal(t, "Hacker News", got[1].SourceName)
}

func TestHackerNewsAdapterTopFetchFailure(t *testing.T) {
	a := newHackerNewsAdapter(SourceSpec{Name: "Hacker News", Limit: 2},
		testClient(), news.DefaultRegistry())
	a.topURL = "http://127.0.0.1:1/topstories.json"

	assert.Empty(t, a.FetchLatest(context.Background()))
}

func TestLoadBuildsAdaptersInOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: "Feed A"
    kind: rss
    urls: ["https://a.example.com/rss"]
    limit: 3
  - name: "Hacker News"
    kind: hackernews
    limit: 2
  - name: "Feed B"
    kind: rss
    urls: ["https://b.example.com/rss"]
    tracked: true
`), 0o644))

	adapters, err := Load(path, testClient(), news.DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, adapters, 3)
	assert.Equal(t, "Feed A", adapters[0].Name())
	assert.Equal(t, "Hacker News", adapters[1].Name())
	assert.Equal(t, "Feed B", adapters[2].Name())
	assert.IsType(t, &trackedAdapter{}, adapters[2])
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: "Weird"
    kind: carrier-pigeon
`), 0o644))

	_, err := Load(path, testClient(), news.DefaultRegistry())
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), testClient(), news.DefaultRegistry())
	assert.Error(t, err)
}

func TestSampleScoreBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := sampleScore(10, 20)
		assert.GreaterOrEqual(t, s, 10.0)
		assert.Less(t, s, 20.0)
	}
	assert.Equal(t, 5.0, sampleScore(5, 5))
}
