// Package feishu posts the daily summary card to a Feishu group webhook.
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/diaozhan234-png/ai-news-daily/internal/logger"
	"github.com/diaozhan234-png/ai-news-daily/internal/news"
	"github.com/diaozhan234-png/ai-news-daily/internal/retry"
	"github.com/diaozhan234-png/ai-news-daily/internal/textutil"
)

const (
	enTitleExcerptLen = 60
	zhBodyExcerptLen  = 80
)

type Client struct {
	webhookURL string
	client     *http.Client
	retry      retry.Config
}

func New(webhookURL string, httpClient *http.Client, retryCfg retry.Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{webhookURL: webhookURL, client: httpClient, retry: retryCfg}
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// SendCard posts one interactive card holding the ranked articles plus a
// button to the full comparison page. A non-zero Feishu code counts as
// delivery failure; retries are bounded.
func (c *Client) SendCard(ctx context.Context, articles []news.Article, pagesURL, date string) error {
	payload := c.buildCard(articles, pagesURL, date)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	return retry.Do(ctx, c.retry, func() error {
		return c.postOnce(ctx, body)
	})
}

func (c *Client) postOnce(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}

	var parsed feishuResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("decode webhook response: %w", err)
	}
	if parsed.Code != 0 {
		return fmt.Errorf("feishu rejected card: code %d (%s)", parsed.Code, parsed.Msg)
	}

	logger.Info("feishu card delivered")
	return nil
}

func (c *Client) buildCard(articles []news.Article, pagesURL, date string) map[string]interface{} {
	elements := make([]interface{}, 0, len(articles)*4)

	for i, a := range articles {
		header := fmt.Sprintf("### %d. %s\n📈 热度：%.1f | 来源：%s", i+1, a.Title.Translated, a.Popularity, a.SourceName)
		if a.CompanyTag != "" {
			header += " | " + a.CompanyTag
		}
		elements = append(elements,
			markdownBlock(header),
			markdownBlock(fmt.Sprintf("**英文标题**：%s", textutil.Clean(a.Title.Source, enTitleExcerptLen))),
			markdownBlock(fmt.Sprintf("**中文摘要**：%s", textutil.Clean(a.Body.Translated, zhBodyExcerptLen))),
			map[string]interface{}{
				"tag": "action",
				"actions": []interface{}{
					cardButton("查看英文原文", a.URL, "primary"),
					cardButton("查看完整对照", pagesURL, "default"),
				},
			},
			map[string]interface{}{"tag": "hr"},
		)
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"config": map[string]interface{}{
				"wide_screen_mode": true,
				"enable_forward":   true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": fmt.Sprintf("AI资讯日报 | %s", date),
				},
				"template": "blue",
			},
			"elements": elements,
		},
	}
}

func markdownBlock(content string) map[string]interface{} {
	return map[string]interface{}{
		"tag": "div",
		"text": map[string]interface{}{
			"tag":     "lark_md",
			"content": content,
		},
	}
}

func cardButton(label, url, kind string) map[string]interface{} {
	return map[string]interface{}{
		"tag":  "button",
		"text": map[string]interface{}{"tag": "plain_text", "content": label},
		"url":  url,
		"type": kind,
	}
}
