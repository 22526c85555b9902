package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	envViper *viper.Viper
	envOnce  sync.Once
)

// env returns the process-wide viper instance. Keys are environment variable
// names; values set in .env are visible once godotenv has loaded them.
func env() *viper.Viper {
	envOnce.Do(func() {
		v := viper.New()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		v.SetDefault("APP_NAME", "resume-scanner")
		v.SetDefault("APP_ENV", "development")
		v.SetDefault("APP_PORT", ":8000")
		v.SetDefault("APP_ALLOW_ORIGINS", "*")
		v.SetDefault("LOG_LEVEL", "info")

		v.SetDefault("DB_HOST", "localhost")
		v.SetDefault("DB_PORT", "5432")
		v.SetDefault("DB_SSLMODE", "disable")
		v.SetDefault("DB_TIMEZONE", "UTC")

		v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
		v.SetDefault("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001")

		v.SetDefault("OPENROUTER_MODEL", "openai/gpt-4o-mini")
		v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")

		v.SetDefault("SMTP_HOST", "smtp.gmail.com")
		v.SetDefault("SMTP_PORT", 587)

		v.SetDefault("AUTH_ENABLED", false)
		v.SetDefault("AUTH_TOKEN_TTL", "24h")

		v.SetDefault("UPLOAD_DIR", "./uploaded_resumes")
		v.SetDefault("UPLOAD_MAX_FILE_BYTES", 10<<20)
		v.SetDefault("UPLOAD_MAX_FILES", 50)
		v.SetDefault("ANALYSIS_CONCURRENCY", 3)

		v.SetDefault("GITHUB_API_URL", "https://api.github.com")
		envViper = v
	})
	return envViper
}
