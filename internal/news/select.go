package news

import (
	"sort"
	"unicode/utf8"

	"github.com/diaozhan234-png/ai-news-daily/internal/logger"
	"github.com/diaozhan234-png/ai-news-daily/internal/metrics"
	"github.com/diaozhan234-png/ai-news-daily/internal/translate"
)

const (
	minBodyRunes  = 50
	minTitleRunes = 10

	// priorityBoost keeps tracked-entity items from being crowded out by
	// generic high-scored ones.
	priorityBoost = 25.0
)

// Selector applies the selection policy over enriched articles.
type Selector struct {
	registry *Registry
}

func NewSelector(registry *Registry) *Selector {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Selector{registry: registry}
}

// Select narrows articles to at most topN survivors: hard exclusion, topical
// inclusion, quality floor, dedup against seen (cross-run) and within the
// run, priority boost, then rank-and-cut. When strict filtering under-fills,
// a backfill pass relaxes topicality and quality (hard exclusion and dedup
// stay) so real content is preferred over an under-filled card.
func (s *Selector) Select(articles []Article, seen map[string]struct{}, topN int) []Article {
	if topN <= 0 {
		return nil
	}

	picked := make(map[string]struct{}) // keys selected in this run
	strict := s.pass(articles, seen, picked, false)
	rank(strict)
	if len(strict) > topN {
		strict = strict[:topN]
	}

	if len(strict) < topN {
		relaxed := s.pass(remaining(articles, strict), seen, picked, true)
		rank(relaxed)
		for _, a := range relaxed {
			if len(strict) >= topN {
				break
			}
			strict = append(strict, a)
		}
	}

	if len(strict) == 0 {
		logger.Warn("selection produced no articles")
	}
	return strict
}

// pass runs one filtering sweep. relaxed skips strict topicality and lowers
// the quality floor to "any non-empty body"; hard exclusion and dedup always
// apply. picked accumulates keys across passes so backfill cannot re-admit a
// title the strict pass already took.
func (s *Selector) pass(articles []Article, seen map[string]struct{}, picked map[string]struct{}, relaxed bool) []Article {
	var out []Article

	for _, a := range articles {
		text := a.Title.Source + " " + a.Body.Source

		if s.registry.IsHardExcluded(text) {
			logger.Debug("selection: hard-excluded", "title", a.Title.Source)
			continue
		}

		if !relaxed && !s.registry.IsTopical(text) {
			continue
		}

		if !passesQualityFloor(a, relaxed) {
			logger.Debug("selection: below quality floor", "title", a.Title.Source)
			continue
		}

		key := TitleKey(a.Title.Source)
		if _, dup := seen[key]; dup {
			logger.Debug("selection: seen in earlier run", "title", a.Title.Source)
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		if _, dup := picked[key]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		picked[key] = struct{}{}

		if tag := s.registry.MatchTrackedEntity(text); tag != "" {
			a.Priority = true
			if a.CompanyTag == "" {
				a.CompanyTag = tag
			}
			a.Popularity += priorityBoost
		}

		out = append(out, a)
	}
	return out
}

func passesQualityFloor(a Article, relaxed bool) bool {
	if translate.IsProviderErrorText(a.Body.Translated) || translate.IsProviderErrorText(a.Title.Translated) {
		return false
	}
	if relaxed {
		return utf8.RuneCountInString(a.Body.Translated) > 0 && a.Body.Translated != translate.EmptyPlaceholder
	}
	return utf8.RuneCountInString(a.Body.Translated) >= minBodyRunes &&
		utf8.RuneCountInString(a.Title.Source) >= minTitleRunes
}

func rank(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Popularity > articles[j].Popularity
	})
}

// remaining returns the articles not already chosen, preserving order.
func remaining(pool, chosen []Article) []Article {
	taken := make(map[string]struct{}, len(chosen))
	for _, a := range chosen {
		taken[a.URL] = struct{}{}
	}
	var out []Article
	for _, a := range pool {
		if _, ok := taken[a.URL]; !ok {
			out = append(out, a)
		}
	}
	return out
}
