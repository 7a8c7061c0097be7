// Package translate turns arbitrary-length English text into a parallel
// (source, translated) pair through the Baidu MT API, degrading to the source
// text whenever the provider cannot be used. It never fails past its own
// boundary.
package translate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diaozhan234-png/ai-news-daily/internal/logger"
	"github.com/diaozhan234-png/ai-news-daily/internal/metrics"
	"github.com/diaozhan234-png/ai-news-daily/internal/ratelimit"
	"github.com/diaozhan234-png/ai-news-daily/internal/retry"
)

const (
	baiduEndpoint = "https://fanyi-api.baidu.com/api/trans/vip/translate"

	// ChunkLimit stays under the provider's ~2000-char per-call cap.
	ChunkLimit = 1800

	minTranslatableLen = 3

	// EmptyPlaceholder fills the translated slot when there was nothing to
	// translate, keeping the non-empty invariant.
	EmptyPlaceholder = "暂无内容"
)

// BilingualText is a guaranteed pair: both fields are non-empty whenever the
// input was non-empty. Provider failure substitutes the source text into
// Translated; that degradation is logged, not modeled as a separate state.
type BilingualText struct {
	Source     string
	Translated string
}

// Provider-side error strings that occasionally arrive with HTTP 200. A chunk
// whose "translation" matches one of these is treated as failed.
var providerErrorFingerprints = []string{
	"invalid access limit",
	"unauthorized user",
	"invalid sign",
	"translation service",
	"api error",
}

type baiduResponse struct {
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	Result    []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
}

type Client struct {
	appID     string
	secretKey string
	from      string
	to        string
	endpoint  string
	client    *http.Client
	limiter   *ratelimit.Limiter
	retry     retry.Config
	memo      *memoCache
}

// New builds a translator. Empty credentials are legal: the client then runs
// in passthrough mode and never touches the network.
func New(appID, secretKey string, httpClient *http.Client, limiter *ratelimit.Limiter, retryCfg retry.Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		appID:     appID,
		secretKey: secretKey,
		from:      "en",
		to:        "zh",
		endpoint:  baiduEndpoint,
		client:    httpClient,
		limiter:   limiter,
		retry:     retryCfg,
		memo:      newMemoCache(),
	}
}

// Configured reports whether real translation is possible.
func (c *Client) Configured() bool {
	return c.appID != "" && c.secretKey != ""
}

// Translate returns a bilingual pair for text. Both fields are always
// non-empty for non-empty input; failures of any kind degrade to the source
// text rather than propagating.
func (c *Client) Translate(ctx context.Context, text string) BilingualText {
	text = strings.TrimSpace(text)
	if text == "" {
		return BilingualText{Source: "", Translated: EmptyPlaceholder}
	}
	if len(text) < minTranslatableLen || !c.Configured() {
		return BilingualText{Source: text, Translated: text}
	}

	if cached, ok := c.memo.get(text); ok {
		return BilingualText{Source: text, Translated: cached}
	}

	chunks := SplitChunks(text, ChunkLimit)
	translated := make([]string, 0, len(chunks))
	degraded := false

	for _, chunk := range chunks {
		out, err := c.translateChunk(ctx, chunk)
		if err != nil || out == "" {
			// A partially translated result beats total failure.
			logger.Warn("translate: chunk fell back to source", "error", err)
			metrics.Global.IncrementTranslationFellBack()
			out = chunk
			degraded = true
		} else {
			metrics.Global.IncrementTranslated()
		}
		translated = append(translated, out)
	}

	result := strings.Join(translated, " ")
	if !degraded {
		c.memo.set(text, result)
	}
	return BilingualText{Source: text, Translated: result}
}

func (c *Client) translateChunk(ctx context.Context, chunk string) (string, error) {
	var out string
	err := retry.Do(ctx, c.retry, func() error {
		var callErr error
		out, callErr = c.callProvider(ctx, chunk)
		return callErr
	})
	return out, err
}

func (c *Client) callProvider(ctx context.Context, text string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	salt := strconv.Itoa(32768 + rand.Intn(32768))
	sign := md5.Sum([]byte(c.appID + text + salt + c.secretKey))

	params := url.Values{}
	params.Set("q", text)
	params.Set("from", c.from)
	params.Set("to", c.to)
	params.Set("appid", c.appID)
	params.Set("salt", salt)
	params.Set("sign", hex.EncodeToString(sign[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read provider response: %w", err)
	}

	var parsed baiduResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	if parsed.ErrorCode != "" && parsed.ErrorCode != "0" {
		return "", fmt.Errorf("provider error %s: %s", parsed.ErrorCode, parsed.ErrorMsg)
	}
	if len(parsed.Result) == 0 {
		return "", fmt.Errorf("provider returned no translation")
	}

	var b strings.Builder
	for i, r := range parsed.Result {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(r.Dst)
	}
	out := strings.TrimSpace(b.String())
	if IsProviderErrorText(out) {
		return "", fmt.Errorf("provider error text in translation body")
	}
	return out, nil
}

// IsProviderErrorText reports whether s looks like provider error boilerplate
// rather than a translation. The selector uses it too, to catch error strings
// that slipped through into article bodies.
func IsProviderErrorText(s string) bool {
	lower := strings.ToLower(s)
	for _, fp := range providerErrorFingerprints {
		if strings.Contains(lower, fp) {
			return true
		}
	}
	return false
}

// SplitChunks cuts text into pieces of at most limit bytes, breaking at
// sentence boundaries whenever a sentence fits; a single oversized sentence
// is hard-split. Concatenating the chunks in order reproduces the text's
// content.
func SplitChunks(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range splitSentences(text) {
		if len(sentence) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}
			for len(sentence) > limit {
				chunks = append(chunks, sentence[:limit])
				sentence = sentence[limit:]
			}
			if sentence != "" {
				current.WriteString(sentence)
			}
			continue
		}
		if current.Len()+len(sentence)+1 > limit {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// splitSentences breaks text on sentence-ending punctuation, keeping the
// punctuation with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		switch r {
		case '。', '！', '？':
			sentences = append(sentences, strings.TrimSpace(b.String()))
			b.Reset()
		case '.', '!', '?':
			if i+1 >= len(runes) || runes[i+1] == ' ' {
				sentences = append(sentences, strings.TrimSpace(b.String()))
				b.Reset()
			}
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
