package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/util"
	"google.golang.org/genai"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type GeminiServiceInterface interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateJSON asks for a JSON response and returns it with any
	// markdown fences removed.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	ExtractProfile(ctx context.Context, filename string, data []byte) (*dto.ResumeProfile, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService struct {
	Client         *genai.Client
	Model          string
	EmbeddingModel string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
	// CircuitCooldown is how long the breaker stays open before a single
	// trial call is let through.
	CircuitCooldown time.Duration

	mu                sync.Mutex
	consecutiveErrors int
	circuitBreakerMax int
	openedAt          time.Time
	trialInFlight     bool
	now               func() time.Time
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiService{
		Client:            client,
		Model:             cfg.Model,
		EmbeddingModel:    cfg.EmbeddingModel,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          90 * time.Second,
		RequestTimeout:    90 * time.Second,
		CircuitCooldown:   30 * time.Second,
		circuitBreakerMax: 5,
		now:               time.Now,
	}, nil
}

func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	result, err := s.generate(ctx, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	})
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

func (s *GeminiService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	result, err := s.generate(ctx, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return util.CleanJSON(result.Text())
}

const extractionPrompt = `Perform a COMPREHENSIVE analysis of this resume.
CRITICAL INSTRUCTIONS:
1. Extract EVERY single detail from the document
2. Do NOT skip or summarize - provide FULL information
3. If any section is incomplete, explicitly state what's missing
4. Ensure maximum detail and precision

Extraction Depth:
- Contact Info: Full details
- Education: Complete academic history
- Work Experience: Detailed role descriptions
- Skills: Exhaustive technical and soft skills
- Projects: All notable projects
- Certifications: Complete list
- Achievements: All awards, publications, etc.
- Summary: A brief overview of the candidate's profile`

// ExtractProfile sends the document inline and asks for a ResumeProfile
// constrained by resumeSchema.
func (s *GeminiService) ExtractProfile(ctx context.Context, filename string, data []byte) (*dto.ResumeProfile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", filename)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeTypeFor(filename)),
			genai.NewPartFromText(extractionPrompt),
		}, genai.RoleUser),
	}
	result, err := s.generate(ctx, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   resumeSchema,
	})
	if err != nil {
		return nil, err
	}
	raw, err := util.CleanJSON(result.Text())
	if err != nil {
		return nil, err
	}
	var profile dto.ResumeProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, fmt.Errorf("decode resume profile: %w", err)
	}
	return &profile, nil
}

func mimeTypeFor(filename string) string {
	if strings.HasSuffix(strings.ToLower(filename), ".docx") {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

func (s *GeminiService) generate(ctx context.Context, contents []*genai.Content, genConfig *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if s.Model == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}
	var result *genai.GenerateContentResponse
	err := s.withRetry(ctx, "GenerateContent", func(ctx context.Context) error {
		res, err := s.Client.Models.GenerateContent(ctx, s.Model, contents, genConfig)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.validateGenerateResponse(result); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	return result, nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if len(trimmedText) > 10000 {
		slog.Warn("embedding input truncated", "length", len(trimmedText))
		trimmedText = trimmedText[:10000]
	}

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}
	var embeddings []float32
	err := s.withRetry(ctx, "GenerateEmbedding", func(ctx context.Context) error {
		result, err := s.Client.Models.EmbedContent(ctx, s.EmbeddingModel, content, nil)
		if err != nil {
			return err
		}
		embeddings, err = s.validateEmbeddingResponse(result)
		return err
	})
	if err != nil {
		return nil, err
	}
	return embeddings, nil
}

// withRetry runs fn with exponential backoff on retryable errors and
// maintains the consecutive failure count behind the circuit breaker.
func (s *GeminiService) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := s.acquire(); err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			slog.Info("retrying gemini call", "op", op, "attempt", attempt, "max", s.MaxRetries, "delay", delay)

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				s.recordFailure()
				return fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		err := fn(timeoutCtx)
		if err == nil {
			s.recordSuccess()
			return nil
		}
		lastErr = err

		if !s.isRetryableError(err) {
			slog.Warn("non-retryable gemini error", "op", op, "error", err)
			// a rejected request says nothing about the health of the service
			if code, ok := apiErrorCode(err); ok && code >= 500 {
				s.recordFailure()
			} else {
				s.releaseTrial()
			}
			return fmt.Errorf("%s failed: %w", op, err)
		}
		slog.Warn("retryable gemini error", "op", op, "attempt", attempt+1, "error", err)
	}

	s.recordFailure()
	return fmt.Errorf("max retries (%d) exceeded for %s: %w", s.MaxRetries, op, lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return delay
}

func (s *GeminiService) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if code, ok := apiErrorCode(err); ok {
		switch code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}

func (s *GeminiService) validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func (s *GeminiService) validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}

// acquire reports ErrCircuitOpen while the breaker is open. Once the
// cooldown has passed exactly one caller is let through as a trial.
func (s *GeminiService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consecutiveErrors < s.circuitBreakerMax {
		return nil
	}
	if s.trialInFlight || s.clock().Sub(s.openedAt) < s.CircuitCooldown {
		return fmt.Errorf("%w: too many consecutive errors (%d)", ErrCircuitOpen, s.consecutiveErrors)
	}
	s.trialInFlight = true
	slog.Info("circuit breaker half-open, sending trial call")
	return nil
}

func (s *GeminiService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *GeminiService) recordSuccess() {
	s.mu.Lock()
	s.consecutiveErrors = 0
	s.trialInFlight = false
	s.openedAt = time.Time{}
	s.mu.Unlock()
}

func (s *GeminiService) recordFailure() {
	s.mu.Lock()
	s.consecutiveErrors++
	s.trialInFlight = false
	if s.consecutiveErrors >= s.circuitBreakerMax {
		s.openedAt = s.clock()
	}
	s.mu.Unlock()
}

func (s *GeminiService) releaseTrial() {
	s.mu.Lock()
	s.trialInFlight = false
	s.mu.Unlock()
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.recordSuccess()
	slog.Info("circuit breaker reset")
}

// GetCircuitBreakerStatus reports the failure count and whether calls are
// currently being rejected.
func (s *GeminiService) GetCircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := s.consecutiveErrors >= s.circuitBreakerMax &&
		(s.trialInFlight || s.clock().Sub(s.openedAt) < s.CircuitCooldown)
	return s.consecutiveErrors, open
}
