package llm

import (
	"fmt"
	"strings"

	"sales-ai-brain/internal/config"
)

// NewFromConfig picks the provider named by LLM_PROVIDER.
func NewFromConfig(cfg *config.Config) (Client, error) {
	switch config.LLMProvider(strings.ToLower(string(cfg.LLMProvider))) {
	case config.ProviderOpenAI:
		if cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set")
		}
		return NewOpenAI(cfg.DeepSeekAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens), nil
	case config.ProviderYandex:
		return NewYandex(cfg.YandexOAuthToken, cfg.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
