package config

import (
	"sync"
	"time"
)

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
	TokenTTL  time.Duration
}

var (
	authConfig *AuthConfig
	authOnce   sync.Once
)

func LoadAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		v := env()
		authConfig = &AuthConfig{
			Enabled:   v.GetBool("AUTH_ENABLED"),
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			TokenTTL:  v.GetDuration("AUTH_TOKEN_TTL"),
		}
	})
	return authConfig
}
