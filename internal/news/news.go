// Package news holds the pipeline's domain model and the selection policy:
// relevance filtering, cross-run deduplication, priority boosting and the
// ranked top-N cut.
package news

import (
	"strings"

	"github.com/diaozhan234-png/ai-news-daily/internal/translate"
)

// Candidate is one discovered item before enrichment. Adapters build it;
// nothing mutates it afterwards.
type Candidate struct {
	Title      string
	URL        string
	SourceName string
	RawSummary string
	Popularity float64
	CompanyTag string
}

// Article is a fully enriched, translated, scored candidate.
type Article struct {
	Title      translate.BilingualText
	Body       translate.BilingualText
	URL        string
	SourceName string
	Popularity float64
	Priority   bool
	CompanyTag string
}

// titleKeyLen bounds the normalized dedup key; long titles differing only in
// a trailing clause still collide, which is the point.
const titleKeyLen = 48

// TitleKey normalizes a title into the dedup key stored in cross-run memory:
// lower-cased, whitespace collapsed, first titleKeyLen runes.
func TitleKey(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = strings.Join(strings.Fields(title), " ")
	runes := []rune(title)
	if len(runes) > titleKeyLen {
		runes = runes[:titleKeyLen]
	}
	return string(runes)
}
