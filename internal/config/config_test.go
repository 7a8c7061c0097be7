package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		FeishuWebhook: "https://open.feishu.cn/open-apis/bot/v2/hook/xxx",
		TopN:          5,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FEISHU_WEBHOOK", "https://open.feishu.cn/open-apis/bot/v2/hook/xxx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, "pushed_titles.json", cfg.SeenFilePath)
	assert.Equal(t, "configs/sources.yaml", cfg.SourcesConfigPath)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 240*time.Second, cfg.RunTimeout)
	assert.Equal(t, 60, cfg.MaxTranslateCalls)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FEISHU_WEBHOOK", "https://open.feishu.cn/open-apis/bot/v2/hook/xxx")
	t.Setenv("TOP_N", "3")
	t.Setenv("RUN_TIMEOUT_SECONDS", "120")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, 120*time.Second, cfg.RunTimeout)
	assert.True(t, cfg.Debug)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("FEISHU_WEBHOOK", "https://open.feishu.cn/open-apis/bot/v2/hook/xxx")
	t.Setenv("TOP_N", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TopN)
}

func TestValidateRequiresWebhook(t *testing.T) {
	cfg := validConfig()
	cfg.FeishuWebhook = ""
	assert.ErrorContains(t, cfg.Validate(), "FEISHU_WEBHOOK")
}

func TestValidateBaiduCredentialsPaired(t *testing.T) {
	cfg := validConfig()
	cfg.BaiduAppID = "id-only"
	assert.ErrorContains(t, cfg.Validate(), "BAIDU_APP_ID")

	cfg = validConfig()
	cfg.BaiduAppID = "id"
	cfg.BaiduSecretKey = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateGistNeedsToken(t *testing.T) {
	cfg := validConfig()
	cfg.GistID = "abc"
	assert.ErrorContains(t, cfg.Validate(), "GIST_TOKEN")

	cfg.GistToken = "tok"
	assert.NoError(t, cfg.Validate())
}

func TestValidateTopN(t *testing.T) {
	cfg := validConfig()
	cfg.TopN = 0
	assert.ErrorContains(t, cfg.Validate(), "TOP_N")
}
