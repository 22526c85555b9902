package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type OpenRouterServiceInterface interface {
	Enabled() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type OpenRouterService struct {
	client *resty.Client
	cfg    *config.OpenRouterConfig
}

func NewOpenRouterService(cfg *config.OpenRouterConfig) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(90*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &OpenRouterService{client: client, cfg: cfg}
}

func (s *OpenRouterService) Enabled() bool {
	return s.cfg.Enabled()
}

// Complete runs one chat completion and returns the first choice's content.
func (s *OpenRouterService) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("openrouter is not configured")
	}
	messages := []map[string]string{}
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":    s.cfg.Model,
			"messages": messages,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.IsError() {
		msg := gjson.Get(resp.String(), "error.message").String()
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("openrouter returned %d: %s", resp.StatusCode(), msg)
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no response from LLM")
	}
	return text, nil
}
