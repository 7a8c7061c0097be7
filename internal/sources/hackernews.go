package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/diaozhan234-png/ai-news-daily/internal/logger"
	"github.com/diaozhan234-png/ai-news-daily/internal/news"
	"github.com/diaozhan234-png/ai-news-daily/internal/textutil"
)

const (
	hnTopStoriesURL = "https://hacker-news.firebaseio.com/v0/topstories.json"
	hnItemURLFormat = "https://hacker-news.firebaseio.com/v0/item/%d.json"
	hnItemPageURL   = "https://news.ycombinator.com/item?id=%d"

	// hnScanLimit bounds per-id detail fetches: one slow run must not stall
	// the whole pipeline.
	hnScanLimit = 20
)

type hnItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
}

// hackerNewsAdapter walks the ranked top-story ids and picks the first items
// whose titles look topical.
type hackerNewsAdapter struct {
	spec     SourceSpec
	client   *http.Client
	registry *news.Registry
	topURL   string
	itemURL  string // format string with one %d
}

func newHackerNewsAdapter(spec SourceSpec, client *http.Client, registry *news.Registry) *hackerNewsAdapter {
	return &hackerNewsAdapter{
		spec:     spec,
		client:   client,
		registry: registry,
		topURL:   hnTopStoriesURL,
		itemURL:  hnItemURLFormat,
	}
}

func (a *hackerNewsAdapter) Name() string { return a.spec.Name }

func (a *hackerNewsAdapter) FetchLatest(ctx context.Context) []news.Candidate {
	ids, err := a.fetchTopIDs(ctx)
	if err != nil {
		logger.Warn("hackernews: top stories fetch failed", "error", err)
		return nil
	}

	var out []news.Candidate
	for i, id := range ids {
		if i >= hnScanLimit || len(out) >= a.spec.Limit {
			break
		}
		item, err := a.fetchItem(ctx, id)
		if err != nil {
			logger.Debug("hackernews: item fetch failed", "id", id, "error", err)
			continue
		}
		if item.Title == "" {
			continue
		}
		title := textutil.Clean(item.Title, 0)
		if !a.registry.IsTopical(title) {
			continue
		}
		link := item.URL
		if link == "" {
			link = fmt.Sprintf(hnItemPageURL, item.ID)
		}
		out = append(out, news.Candidate{
			Title:      title,
			URL:        link,
			SourceName: a.spec.Name,
			Popularity: sampleScore(a.spec.ScoreMin, a.spec.ScoreMax),
		})
	}
	return out
}

func (a *hackerNewsAdapter) fetchTopIDs(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.topURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("top stories status %d", resp.StatusCode)
	}

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode top stories: %w", err)
	}
	return ids, nil
}

func (a *hackerNewsAdapter) fetchItem(ctx context.Context, id int) (*hnItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(a.itemURL, id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("item %d status %d", id, resp.StatusCode)
	}

	var item hnItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item %d: %w", id, err)
	}
	return &item, nil
}
