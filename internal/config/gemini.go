package config

import (
	"sync"
)

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL        string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		v := env()
		apiKey := v.GetString("GEMINI_API_KEY")
		if apiKey == "" {
			// older deployments only set GOOGLE_API_KEY
			apiKey = v.GetString("GOOGLE_API_KEY")
		}
		geminiConfig = &GeminiConfig{
			APIKey:         apiKey,
			Model:          v.GetString("GEMINI_MODEL"),
			EmbeddingModel: v.GetString("GEMINI_EMBEDDING_MODEL"),
			BaseURL:        v.GetString("GEMINI_BASE_URL"),
		}
	})
	return geminiConfig
}
