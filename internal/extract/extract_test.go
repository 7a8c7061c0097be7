package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaozhan234-png/ai-news-daily/internal/retry"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func newTestExtractor() *Extractor {
	return New(
		&http.Client{Timeout: 5 * time.Second},
		retry.Config{MaxAttempts: 2, Delay: 10 * time.Millisecond},
	)
}

func TestExtractNon2xxReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("<html><body><p>Service is down but this is long enough to look like content.</p></body></html>"))
	}))
	defer server.Close()

	out := newTestExtractor().Extract(context.Background(), server.URL)
	assert.Equal(t, "", out)
}

func TestExtractErrorPageFingerprint(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "captcha", body: "<html><head><title>Captcha required</title></head><body></body></html>"},
		{name: "javascript wall", body: "<html><body>Please enable JavaScript to continue browsing this site.</body></html>"},
		{name: "robot check", body: "<html><body>Checking... are you a robot?</body></html>"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			out := newTestExtractor().Extract(context.Background(), server.URL)
			assert.Equal(t, "", out)
		})
	}
}

func TestExtractDomainRule(t *testing.T) {
	html := `<html><body>
		<div class="junk"><p>` + strings.Repeat("Unrelated sidebar text. ", 5) + `</p></div>
		<blockquote class="abstract"><p>` + strings.Repeat("The paper abstract sentence goes here. ", 3) + `</p></blockquote>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer server.Close()

	e := newTestExtractor()
	// Point the arXiv-shaped rule at the test server's host.
	e.rules = []DomainRule{
		{Matcher: strings.TrimPrefix(server.URL, "http://"), Selector: "blockquote.abstract", MinParagraphLen: 20, MaxParagraphs: 3},
	}

	out := e.Extract(context.Background(), server.URL)
	assert.Contains(t, out, "paper abstract sentence")
	assert.NotContains(t, out, "sidebar")
}

func TestExtractUnknownDomainFallsBack(t *testing.T) {
	long := strings.Repeat("A reasonably long paragraph of article body text. ", 3)
	html := `<html><body>
		<article><p>` + long + `</p><p>` + long + `</p></article>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer server.Close()

	out := newTestExtractor().Extract(context.Background(), server.URL)
	assert.Contains(t, out, "article body text")
}

func TestExtractParagraphsFiltersShortNodes(t *testing.T) {
	long := strings.Repeat("A reasonably long paragraph of article body text. ", 3)
	doc := mustParse(t, `<html><body>
		<p>short caption</p>
		<article><p>`+long+`</p></article>
	</body></html>`)

	out := extractParagraphs(doc, minParagraphLen, maxParagraphs)
	assert.Contains(t, out, "article body text")
	assert.NotContains(t, out, "short caption")
}

func TestExtractCapsContentLength(t *testing.T) {
	html := "<html><body><article><p>" + strings.Repeat("A full sentence of body text lives here. ", 200) + "</p></article></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer server.Close()

	out := newTestExtractor().Extract(context.Background(), server.URL)
	assert.LessOrEqual(t, len([]rune(out)), MaxContentLen)
	assert.True(t, strings.HasSuffix(out, "."), "expected sentence-boundary cap, got tail %q", out[len(out)-20:])
}

func TestExtractUnreachableHostReturnsEmpty(t *testing.T) {
	e := New(
		&http.Client{Timeout: 200 * time.Millisecond},
		retry.Config{MaxAttempts: 2, Delay: 10 * time.Millisecond},
	)
	out := e.Extract(context.Background(), "http://127.0.0.1:1/nothing-here")
	assert.Equal(t, "", out)
}

func TestLooksLikeErrorPage(t *testing.T) {
	assert.True(t, looksLikeErrorPage("<html>503 Service Unavailable</html>"))
	assert.True(t, looksLikeErrorPage("ACCESS DENIED"))
	assert.False(t, looksLikeErrorPage("<html><body>A normal article about models.</body></html>"))
	// Fingerprints beyond the scan window don't count.
	assert.False(t, looksLikeErrorPage(strings.Repeat("a", 2000)+"captcha"))
}
