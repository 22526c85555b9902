package config

import (
	"sync"
)

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		v := env()
		openRouterConfig = &OpenRouterConfig{
			APIKey:  v.GetString("OPENROUTER_API_KEY"),
			Model:   v.GetString("OPENROUTER_MODEL"),
			BaseURL: v.GetString("OPENROUTER_BASE_URL"),
		}
	})
	return openRouterConfig
}

func (c *OpenRouterConfig) Enabled() bool {
	return c.APIKey != ""
}
