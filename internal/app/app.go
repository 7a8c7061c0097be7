// Package app wires the pipeline together and drives one run: fetch,
// extract, translate, select, render, deliver, remember.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/diaozhan234-png/ai-news-daily/internal/config"
	"github.com/diaozhan234-png/ai-news-daily/internal/extract"
	"github.com/diaozhan234-png/ai-news-daily/internal/feishu"
	"github.com/diaozhan234-png/ai-news-daily/internal/logger"
	"github.com/diaozhan234-png/ai-news-daily/internal/metrics"
	"github.com/diaozhan234-png/ai-news-daily/internal/news"
	"github.com/diaozhan234-png/ai-news-daily/internal/ratelimit"
	"github.com/diaozhan234-png/ai-news-daily/internal/render"
	"github.com/diaozhan234-png/ai-news-daily/internal/retry"
	"github.com/diaozhan234-png/ai-news-daily/internal/sources"
	"github.com/diaozhan234-png/ai-news-daily/internal/storage"
	"github.com/diaozhan234-png/ai-news-daily/internal/translate"
)

// minSummaryLen: a feed summary at least this long skips body extraction.
const minSummaryLen = 200

// Publisher delivers the final ranked set to the chat webhook.
type Publisher interface {
	SendCard(ctx context.Context, articles []news.Article, pagesURL, date string) error
}

var _ Publisher = (*feishu.Client)(nil)

// Run executes one full pipeline pass under ctx. It degrades rather than
// fails: delivery with a reduced article count always beats a crash. The
// only hard stop is ctx expiry (the watchdog), where no delivery happens.
func Run(ctx context.Context, cfg *config.Config) error {
	started := time.Now()
	defer metrics.Global.RecordRun(time.Since(started))

	registry := news.DefaultRegistry()
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	retryCfg := retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Jitter: true}

	adapters, err := sources.Load(cfg.SourcesConfigPath, httpClient, registry)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	store := pickStore(cfg, httpClient)
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	seenKeys, err := store.Load()
	if err != nil {
		// Losing the memory means possible repeats, not a failed run.
		logger.Warn("seen-title memory unavailable, starting empty", "error", err)
		seenKeys = nil
	}
	seen := storage.ToSet(seenKeys)

	extractor := extract.New(httpClient, retryCfg)
	limiter := ratelimit.New(cfg.MaxTranslateCalls, 500*time.Millisecond, 1500*time.Millisecond)
	translator := translate.New(cfg.BaiduAppID, cfg.BaiduSecretKey, httpClient, limiter, retryCfg)
	if !translator.Configured() {
		logger.Warn("translation credentials absent, running in passthrough mode")
	}

	candidates := fetchAll(ctx, adapters)
	logger.Info("candidates collected", "count", len(candidates))
	metrics.Global.AddCandidates(len(candidates))

	articles := enrich(ctx, candidates, extractor, translator)

	selector := news.NewSelector(registry)
	selected := selector.Select(articles, seen, cfg.TopN)
	logger.Info("articles selected", "count", len(selected), "requested", cfg.TopN)

	publisher := feishu.New(cfg.FeishuWebhook, httpClient, retryCfg)
	if err := finishRun(ctx, cfg, publisher, store, seenKeys, selected); err != nil {
		return err
	}

	logger.Info("run finished", "delivered", len(selected), "duration", time.Since(started).Round(time.Millisecond))
	return nil
}

// finishRun renders, delivers and persists memory for the selected articles.
// An empty selection skips delivery entirely; an expired ctx aborts before
// anything is written or published.
func finishRun(ctx context.Context, cfg *config.Config, publisher Publisher, store storage.Store, seenKeys []string, selected []news.Article) error {
	if len(selected) == 0 {
		logger.Warn("no content acquired, skipping delivery")
		return nil
	}

	if err := ctx.Err(); err != nil {
		// Watchdog fired mid-run: prefer no publish over a partial one.
		return fmt.Errorf("run aborted before delivery: %w", err)
	}

	date := time.Now().Format("2006-01-02")
	pagesURL := cfg.PagesBaseURL + "/index.html"
	if _, err := render.WriteIndex(selected, date, cfg.OutputDir); err != nil {
		logger.Error("comparison page not written", "error", err)
	}

	if err := publisher.SendCard(ctx, selected, pagesURL, date); err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("deliver card: %w", err)
	}
	metrics.Global.AddDelivered(len(selected))

	for _, a := range selected {
		seenKeys = append(seenKeys, news.TitleKey(a.Title.Source))
	}
	if err := store.Save(seenKeys); err != nil {
		logger.Error("seen-title memory not saved", "error", err)
	}
	return nil
}

// fetchAll walks the adapters in declared priority order, one at a time.
func fetchAll(ctx context.Context, adapters []sources.Adapter) []news.Candidate {
	var out []news.Candidate
	for _, adapter := range adapters {
		if ctx.Err() != nil {
			logger.Warn("fetch cut short by watchdog", "source", adapter.Name())
			break
		}
		items := adapter.FetchLatest(ctx)
		logger.Info("source fetched", "source", adapter.Name(), "items", len(items))
		out = append(out, items...)
	}
	return out
}

// enrich turns candidates into articles: acquire a body when the feed didn't
// carry one, then translate title and body.
func enrich(ctx context.Context, candidates []news.Candidate, extractor *extract.Extractor, translator *translate.Client) []news.Article {
	articles := make([]news.Article, 0, len(candidates))

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}

		body := c.RawSummary
		if len(body) < minSummaryLen {
			if extracted := extractor.Extract(ctx, c.URL); extracted != "" {
				body = extracted
				metrics.Global.IncrementExtracted()
			} else if body == "" {
				// Empty body: the quality floor decides downstream.
				metrics.Global.IncrementExtractionFailed()
				logger.Debug("no body acquired", "url", c.URL)
			}
		}

		articles = append(articles, news.Article{
			Title:      translator.Translate(ctx, c.Title),
			Body:       translator.Translate(ctx, body),
			URL:        c.URL,
			SourceName: c.SourceName,
			Popularity: c.Popularity,
			CompanyTag: c.CompanyTag,
		})
	}
	return articles
}

// pickStore chooses the persistence backend: Postgres, then gist, then the
// local file.
func pickStore(cfg *config.Config, client *http.Client) storage.Store {
	if cfg.DatabaseURL != "" {
		if store, err := storage.NewPostgresStore(cfg.DatabaseURL); err == nil {
			return store
		} else {
			logger.Warn("postgres store unavailable, falling back to file", "error", err)
		}
	}
	if cfg.GistID != "" {
		return storage.NewGistStore(cfg.GistID, cfg.GistToken, client)
	}
	return storage.NewFileStore(cfg.SeenFilePath)
}
