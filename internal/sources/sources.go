// Package sources defines the feed adapters. Each adapter knows one source,
// yields zero or more raw candidates per invocation, and never lets an
// internal failure escape: a broken source logs and contributes nothing.
package sources

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/diaozhan234-png/ai-news-daily/internal/logger"
	"github.com/diaozhan234-png/ai-news-daily/internal/news"
	"github.com/diaozhan234-png/ai-news-daily/internal/textutil"
)

// Adapter produces raw candidates from one source.
type Adapter interface {
	Name() string
	FetchLatest(ctx context.Context) []news.Candidate
}

// SourceSpec is one entry of configs/sources.yaml.
type SourceSpec struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"` // rss | hackernews
	URLs     []string `yaml:"urls"` // ordered fallbacks for rss
	Limit    int      `yaml:"limit"`
	ScoreMin float64  `yaml:"score_min"`
	ScoreMax float64  `yaml:"score_max"`
	Tracked  bool     `yaml:"tracked"` // keep only tracked-entity matches
}

type sourcesFile struct {
	Sources []SourceSpec `yaml:"sources"`
}

// Load reads the declarative source list and builds adapters in declared
// priority order.
func Load(path string, client *http.Client, registry *news.Registry) ([]Adapter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var cfg sourcesFile
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode sources config: %w", err)
	}

	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	var adapters []Adapter
	for _, spec := range cfg.Sources {
		if spec.Limit <= 0 {
			spec.Limit = 1
		}
		switch spec.Kind {
		case "rss":
			base := newRSSAdapter(spec, client)
			if spec.Tracked {
				adapters = append(adapters, &trackedAdapter{inner: base, registry: registry})
			} else {
				adapters = append(adapters, base)
			}
		case "hackernews":
			adapters = append(adapters, newHackerNewsAdapter(spec, client, registry))
		default:
			return nil, fmt.Errorf("unknown source kind %q for %s", spec.Kind, spec.Name)
		}
	}
	return adapters, nil
}

// rssAdapter walks its fallback URLs in order until one yields entries.
type rssAdapter struct {
	spec   SourceSpec
	parser *gofeed.Parser
}

func newRSSAdapter(spec SourceSpec, client *http.Client) *rssAdapter {
	parser := gofeed.NewParser()
	parser.Client = client
	return &rssAdapter{spec: spec, parser: parser}
}

func (a *rssAdapter) Name() string { return a.spec.Name }

func (a *rssAdapter) FetchLatest(ctx context.Context) (out []news.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("source panicked", "source", a.spec.Name, "panic", r)
			out = nil
		}
	}()

	for _, feedURL := range a.spec.URLs {
		feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("feed fetch failed", "source", a.spec.Name, "url", feedURL, "error", err)
			continue
		}
		if len(feed.Items) == 0 {
			continue
		}

		for i, item := range feed.Items {
			if i >= a.spec.Limit {
				break
			}
			title := textutil.Clean(item.Title, 0)
			if title == "" || item.Link == "" {
				continue
			}
			out = append(out, news.Candidate{
				Title:      title,
				URL:        item.Link,
				SourceName: a.spec.Name,
				RawSummary: textutil.StripMarkup(item.Description),
				Popularity: sampleScore(a.spec.ScoreMin, a.spec.ScoreMax),
			})
		}
		if len(out) > 0 {
			return out // first URL with usable entries wins
		}
		logger.Warn("feed yielded no usable entries", "source", a.spec.Name, "url", feedURL)
	}

	logger.Warn("all feed URLs exhausted", "source", a.spec.Name)
	return out
}

// trackedAdapter keeps only entries matching the tracked-entity registry and
// tags the matching organization for priority boosting downstream.
type trackedAdapter struct {
	inner    *rssAdapter
	registry *news.Registry
}

func (a *trackedAdapter) Name() string { return a.inner.Name() }

func (a *trackedAdapter) FetchLatest(ctx context.Context) []news.Candidate {
	var out []news.Candidate
	for _, c := range a.inner.FetchLatest(ctx) {
		tag := a.registry.MatchTrackedEntity(c.Title + " " + c.RawSummary)
		if tag == "" {
			continue
		}
		c.CompanyTag = tag
		out = append(out, c)
	}
	return out
}

func sampleScore(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rand.Float64()*(max-min)
}
