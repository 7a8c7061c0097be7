// Package extract pulls a plain-text article body out of an arbitrary URL.
// Site-specific knowledge lives in a declarative rule table; everything else
// goes through readability and a generic paragraph fallback.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/diaozhan234-png/ai-news-daily/internal/logger"
	"github.com/diaozhan234-png/ai-news-daily/internal/retry"
	"github.com/diaozhan234-png/ai-news-daily/internal/textutil"
)

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	// MaxContentLen caps the returned body; truncation is sentence-aware.
	MaxContentLen = 1800

	fingerprintWindow = 600
	minParagraphLen   = 35
	maxParagraphs     = 12
	maxBodyBytes      = 2 << 20
)

// DomainRule locates the main content container for one site. Matcher is a
// substring of the host; the first matching rule wins.
type DomainRule struct {
	Matcher         string
	Selector        string
	MinParagraphLen int
	MaxParagraphs   int
}

// Rules for the sites the feed list actually points at. Adding a site is a
// new table row, not new code.
var defaultRules = []DomainRule{
	{Matcher: "arxiv.org", Selector: "blockquote.abstract, .abstract", MinParagraphLen: 20, MaxParagraphs: 3},
	{Matcher: "techcrunch.com", Selector: ".entry-content p, .article-content p", MinParagraphLen: minParagraphLen, MaxParagraphs: maxParagraphs},
	{Matcher: "theverge.com", Selector: ".duet--article--article-body-component p, article p", MinParagraphLen: minParagraphLen, MaxParagraphs: maxParagraphs},
	{Matcher: "venturebeat.com", Selector: ".article-content p, article p", MinParagraphLen: minParagraphLen, MaxParagraphs: maxParagraphs},
	{Matcher: "technologyreview.com", Selector: ".contentArticle p, article p", MinParagraphLen: minParagraphLen, MaxParagraphs: maxParagraphs},
	{Matcher: "news.ycombinator.com", Selector: ".toptext, .commtext", MinParagraphLen: 20, MaxParagraphs: 3},
}

// Phrases that identify an error/interstitial page rather than an article.
// Matched case-insensitively against the head of the decoded page.
var errorFingerprints = []string{
	"captcha",
	"service unavailable",
	"enable javascript",
	"access denied",
	"are you a robot",
	"verify you are human",
	"too many requests",
	"403 forbidden",
	"attention required",
}

type Extractor struct {
	client *http.Client
	rules  []DomainRule
	retry  retry.Config
}

// New builds an extractor with the default rule table. A nil client gets a
// bounded-timeout default.
func New(client *http.Client, retryCfg retry.Config) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Extractor{client: client, rules: defaultRules, retry: retryCfg}
}

// Extract returns the best available plain-text body for pageURL, or "" when
// every attempt failed. It never returns an error: empty string IS the error
// signal, and callers must not mistake it for an empty article.
func (e *Extractor) Extract(ctx context.Context, pageURL string) string {
	return retry.DoWithFallback(ctx, e.retry, "", func() (string, error) {
		return e.extractOnce(ctx, pageURL)
	})
}

func (e *Extractor) extractOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// An error page is not an article; don't parse it as one.
		logger.Debug("extract: non-2xx status", "url", pageURL, "status", resp.StatusCode)
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body %s: %w", pageURL, err)
	}
	html := string(body)

	if looksLikeErrorPage(html) {
		logger.Debug("extract: error-page fingerprint", "url", pageURL)
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", pageURL, err)
	}

	text := e.extractByRule(doc, pageURL)
	if text == "" {
		text = extractReadable(html, pageURL)
	}
	if text == "" {
		text = extractParagraphs(doc, minParagraphLen, maxParagraphs)
	}

	return textutil.Clean(text, MaxContentLen), nil
}

// looksLikeErrorPage scans the head of the page for known boilerplate.
func looksLikeErrorPage(html string) bool {
	head := html
	if len(head) > fingerprintWindow {
		head = head[:fingerprintWindow]
	}
	head = strings.ToLower(head)
	for _, fp := range errorFingerprints {
		if strings.Contains(head, fp) {
			return true
		}
	}
	return false
}

func (e *Extractor) extractByRule(doc *goquery.Document, pageURL string) string {
	host := hostOf(pageURL)
	for _, rule := range e.rules {
		if !strings.Contains(host, rule.Matcher) {
			continue
		}
		var parts []string
		doc.Find(rule.Selector).Each(func(i int, s *goquery.Selection) {
			if len(parts) >= rule.MaxParagraphs {
				return
			}
			text := strings.TrimSpace(textutil.VisibleText(s))
			if len(text) >= rule.MinParagraphLen {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, "\n\n")
	}
	return ""
}

// extractReadable runs go-readability as the first generic fallback.
func extractReadable(html, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil || article.TextContent == "" {
		return ""
	}
	return article.TextContent
}

// extractParagraphs collects paragraph-like nodes longer than minLen —
// captions and boilerplate fall under the threshold.
func extractParagraphs(doc *goquery.Document, minLen, maxCount int) string {
	var parts []string
	doc.Find("article p, main p, .content p, .post-content p, .entry-content p, p").Each(func(i int, s *goquery.Selection) {
		if len(parts) >= maxCount {
			return
		}
		text := strings.TrimSpace(s.Text())
		if len(text) >= minLen {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(pageURL)
	}
	return strings.ToLower(u.Host)
}
