package config

import (
	"log/slog"
	"os"
	"sync"
)

type AppConfig struct {
	Name         string
	Env          string
	Port         string
	BaseURL      string
	AllowOrigins string
	LogLevel     string
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		v := env()
		if _, ok := os.LookupEnv("APP_ENV"); !ok {
			slog.Warn("APP_ENV not set, defaulting", "env", v.GetString("APP_ENV"))
		}
		appConfig = &AppConfig{
			Name:         v.GetString("APP_NAME"),
			Env:          v.GetString("APP_ENV"),
			Port:         v.GetString("APP_PORT"),
			BaseURL:      v.GetString("APP_URL"),
			AllowOrigins: v.GetString("APP_ALLOW_ORIGINS"),
			LogLevel:     v.GetString("LOG_LEVEL"),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
