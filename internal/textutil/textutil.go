// Package textutil holds the pure text-normalization helpers shared by the
// extractor and the translator. No I/O happens here.
package textutil

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceExpr = regexp.MustCompile(`\s+`)

// Elements that never carry article text.
var nonContentSelectors = []string{
	"script", "style", "noscript", "nav", "header", "footer",
	"aside", "figure", "figcaption", "iframe", "form", "svg",
}

// Class/id fragments that mark ads, promos, social widgets and paywalls.
var junkClassFragments = []string{
	"advert", "promo", "sponsor", "social", "share", "subscribe",
	"newsletter", "cookie", "paywall", "related", "comment", "banner",
	"popup", "sidebar", "breadcrumb",
}

// Clean collapses runs of whitespace to single spaces and trims the ends.
// maxLen > 0 caps the result in runes: the cut lands on the last sentence
// boundary found after 70% of maxLen, or hard at maxLen when no boundary
// exists. Empty in, empty out.
func Clean(s string, maxLen int) string {
	s = whitespaceExpr.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	cut := runes[:maxLen]
	floor := maxLen * 70 / 100
	boundary := -1
	for i := len(cut) - 1; i >= floor; i-- {
		// Checked against the full text: a terminator at the window edge
		// may still sit mid-sentence (or mid-number) in the original.
		if isSentenceEnd(runes, i) {
			boundary = i + 1
			break
		}
	}
	if boundary > 0 {
		return strings.TrimSpace(string(cut[:boundary]))
	}
	return strings.TrimSpace(string(cut))
}

// isSentenceEnd reports whether runes[i] terminates a sentence. Latin
// terminators need a following space (or end of text) so "3.5" and similar
// don't count; the CJK full-width marks stand alone.
func isSentenceEnd(runes []rune, i int) bool {
	switch runes[i] {
	case '。', '！', '？':
		return true
	case '.', '!', '?':
		return i+1 >= len(runes) || runes[i+1] == ' '
	}
	return false
}

// StripMarkup parses html, removes non-content and junk nodes, and returns
// the cleaned visible text. Unparseable input degrades to Clean on the raw
// string rather than failing.
func StripMarkup(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Clean(html, 0)
	}
	return Clean(visibleText(doc.Selection), 0)
}

// VisibleText extracts text from a selection after dropping non-content and
// junk-classed nodes. The extractor reuses this on per-domain containers.
func VisibleText(sel *goquery.Selection) string {
	return visibleText(sel)
}

func visibleText(sel *goquery.Selection) string {
	sel.Find(strings.Join(nonContentSelectors, ", ")).Remove()
	sel.Find("[class],[id]").Each(func(i int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if isJunkMarker(class) || isJunkMarker(id) {
			s.Remove()
		}
	})
	return sel.Text()
}

func isJunkMarker(attr string) bool {
	if attr == "" {
		return false
	}
	attr = strings.ToLower(attr)
	for _, fragment := range junkClassFragments {
		if strings.Contains(attr, fragment) {
			return true
		}
	}
	return false
}
