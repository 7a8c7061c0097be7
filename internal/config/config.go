package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the pipeline needs, built once at process start and
// passed into component constructors. No package carries ambient mutable state.
type Config struct {
	// Feishu delivery
	FeishuWebhook string

	// Baidu translation credentials (optional; empty means passthrough mode)
	BaiduAppID     string
	BaiduSecretKey string

	// Persistence for cross-run seen-title memory. Exactly one backend is
	// picked: Postgres when DatabaseURL is set, gist when GistID is set,
	// otherwise the JSON file.
	DatabaseURL  string
	GistID       string
	GistToken    string
	SeenFilePath string

	// Source list
	SourcesConfigPath string

	// Selection
	TopN int

	// Rendered comparison page
	OutputDir    string
	PagesBaseURL string

	// HTTP behavior
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Translation budget per run (0 = unlimited)
	MaxTranslateCalls int

	// Whole-run watchdog ceiling
	RunTimeout time.Duration

	Debug bool
}

// Load reads configuration from the environment, applying defaults.
// A .env file is honored when present so local runs match the CI job.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SeenFilePath:      getEnvOrDefault("SEEN_FILE_PATH", "pushed_titles.json"),
		SourcesConfigPath: getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/sources.yaml"),
		OutputDir:         getEnvOrDefault("OUTPUT_DIR", "."),
		PagesBaseURL:      getEnvOrDefault("PAGES_BASE_URL", "https://diaozhan234-png.github.io/ai-news-daily"),
		TopN:              getEnvIntOrDefault("TOP_N", 5),
		RequestTimeout:    time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		RetryAttempts:     getEnvIntOrDefault("RETRY_ATTEMPTS", 2),
		RetryDelay:        time.Duration(getEnvIntOrDefault("RETRY_DELAY_SECONDS", 2)) * time.Second,
		MaxTranslateCalls: getEnvIntOrDefault("MAX_TRANSLATE_CALLS", 60),
		RunTimeout:        time.Duration(getEnvIntOrDefault("RUN_TIMEOUT_SECONDS", 240)) * time.Second,
	}

	cfg.FeishuWebhook = os.Getenv("FEISHU_WEBHOOK")
	cfg.BaiduAppID = os.Getenv("BAIDU_APP_ID")
	cfg.BaiduSecretKey = os.Getenv("BAIDU_SECRET_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.GistID = os.Getenv("GIST_ID")
	cfg.GistToken = os.Getenv("GIST_TOKEN")
	cfg.Debug = os.Getenv("DEBUG") == "true"

	return cfg, cfg.Validate()
}

// Validate rejects configurations the run cannot work with. Translation
// credentials are deliberately optional: without them the pipeline runs in
// passthrough mode.
func (c *Config) Validate() error {
	if c.FeishuWebhook == "" {
		return fmt.Errorf("FEISHU_WEBHOOK is required")
	}
	if (c.BaiduAppID == "") != (c.BaiduSecretKey == "") {
		return fmt.Errorf("BAIDU_APP_ID and BAIDU_SECRET_KEY must be set together")
	}
	if c.GistID != "" && c.GistToken == "" {
		return fmt.Errorf("GIST_TOKEN is required when GIST_ID is set")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("TOP_N must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
