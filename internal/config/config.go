package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// Server
	Port        string   `env:"PORT" envDefault:"8000"`
	Env         string   `env:"ENV" envDefault:"development"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Telegram (bot is disabled when the token is empty)
	TelegramBotToken string `env:"TELEGRAM_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// LLM settings
	LLMProvider      LLMProvider   `env:"LLM_PROVIDER" envDefault:"openai"`
	DeepSeekAPIKey   string        `env:"DEEPSEEK_API_KEY"`
	LLMBaseURL       string        `env:"LLM_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	LLMModel         string        `env:"LLM_MODEL" envDefault:"deepseek-chat"`
	LLMTemperature   float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens     int           `env:"LLM_MAX_TOKENS" envDefault:"300"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`
	OracleTimeout    time.Duration `env:"ORACLE_TIMEOUT" envDefault:"30s"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH"`
	FallbackMessage  string `env:"FALLBACK_MESSAGE" envDefault:"Üzr istəyirəm, texniki problem yaşandı. Bir az sonra yenidən cəhd edin."`

	// Memory
	MemoryFilePath string `env:"MEMORY_FILE_PATH" envDefault:"data/memory.json"`
	MemoryMode     string `env:"MEMORY_MODE" envDefault:"global"`
	RedisURL       string `env:"REDIS_URL"`
	MemoryRedisKey string `env:"MEMORY_REDIS_KEY" envDefault:"sales-brain:memory"`

	// Realtime
	HubQueueSize int `env:"HUB_QUEUE_SIZE" envDefault:"64"`

	// Reports
	ReportCron string `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	// Remote monitor; when set the bot posts messages there instead of the local store
	MonitorURL string `env:"MONITOR_URL"`
}

// New parses the environment. Errors are returned so that main decides how to fail.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.HubQueueSize <= 0 {
		return nil, fmt.Errorf("HUB_QUEUE_SIZE must be positive, got %d", cfg.HubQueueSize)
	}
	switch strings.ToLower(cfg.MemoryMode) {
	case "global", "per_user":
	default:
		return nil, fmt.Errorf("unknown MEMORY_MODE: %s", cfg.MemoryMode)
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
