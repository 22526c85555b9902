package config

import (
	"sync"
)

type GitHubConfig struct {
	Token   string
	BaseURL string
}

var (
	githubConfig *GitHubConfig
	githubOnce   sync.Once
)

func LoadGitHubConfig() *GitHubConfig {
	githubOnce.Do(func() {
		v := env()
		githubConfig = &GitHubConfig{
			Token:   v.GetString("GITHUB_TOKEN"),
			BaseURL: v.GetString("GITHUB_API_URL"),
		}
	})
	return githubConfig
}
