package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/utils"
)

// AIClient is the text-generation boundary. Both operations take the final
// prompt; provider and model selection happen once at construction.
type AIClient interface {
	GenerateText(ctx context.Context, prompt string, temperature float64) (string, error)
	StreamText(ctx context.Context, prompt string, temperature float64, onDelta func(delta string)) (string, error)
}

// ErrGenerationFailed wraps every provider-side failure (network, HTTP,
// refusal, timeout) so callers can map it to a single user-facing message.
var ErrGenerationFailed = errors.New("text generation failed")

// AIConfig is resolved once at startup and handed to NewAIClient; the
// request path never reads the environment.
type AIConfig struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	TimeoutSec int
	MaxRetries int
}

type aiProviderDefaults struct {
	envKey  string
	baseURL string
	model   string
}

// Every supported backend speaks the OpenAI-compatible chat completions
// surface, so one HTTP client parameterized by base URL and key serves all
// of them.
var aiProviders = map[string]aiProviderDefaults{
	"openai":     {envKey: "OPENAI_API_KEY", baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini"},
	"groq":       {envKey: "GROQ_API_KEY", baseURL: "https://api.groq.com/openai/v1", model: "llama-3.3-70b-versatile"},
	"openrouter": {envKey: "OPENROUTER_API_KEY", baseURL: "https://openrouter.ai/api/v1", model: "deepseek/deepseek-r1"},
	"xai":        {envKey: "XAI_API_KEY", baseURL: "https://api.x.ai/v1", model: "grok-2-latest"},
	"google":     {envKey: "GOOGLE_GENERATIVE_AI_API_KEY", baseURL: "https://generativelanguage.googleapis.com/v1beta/openai", model: "gemini-2.5-flash"},
}

// LoadAIConfig resolves the provider selection from the environment exactly
// once. Missing key for the selected provider is a startup error, not a
// request-time surprise.
func LoadAIConfig(log *logger.Logger) (AIConfig, error) {
	provider := strings.ToLower(strings.TrimSpace(utils.GetEnv("AI_PROVIDER", "openai", log)))
	defaults, ok := aiProviders[provider]
	if !ok {
		return AIConfig{}, fmt.Errorf("unknown AI provider %q", provider)
	}

	apiKey := strings.TrimSpace(utils.GetEnv(defaults.envKey, "", log))
	if apiKey == "" || apiKey == "****" {
		return AIConfig{}, fmt.Errorf("provider %s is not configured (missing %s)", provider, defaults.envKey)
	}

	baseURL := strings.TrimRight(utils.GetEnv("AI_BASE_URL", defaults.baseURL, log), "/")
	model := utils.GetEnv("AI_MODEL", defaults.model, log)
	timeoutSec := utils.GetEnvAsInt("AI_TIMEOUT_SECONDS", 90, log)
	maxRetries := utils.GetEnvAsInt("AI_MAX_RETRIES", 3, log)

	return AIConfig{
		Provider:   provider,
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Model:      model,
		TimeoutSec: timeoutSec,
		MaxRetries: maxRetries,
	}, nil
}

type aiClient struct {
	log        *logger.Logger
	cfg        AIConfig
	httpClient *http.Client
}

func NewAIClient(log *logger.Logger, cfg AIConfig) (AIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI api key required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("AI base url required")
	}
	timeout := cfg.TimeoutSec
	if timeout <= 0 {
		timeout = 90
	}
	return &aiClient{
		log:        log.With("service", "AIClient", "provider", cfg.Provider),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

type aiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *aiHTTPError) Error() string {
	return fmt.Sprintf("ai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *aiHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *aiClient) doOnce(ctx context.Context, body any, stream bool) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return resp, raw, &aiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if stream {
		// caller owns resp.Body
		return resp, nil, nil
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	return resp, raw, nil
}

func (c *aiClient) doWithRetry(ctx context.Context, body any, stream bool) (*http.Response, []byte, error) {
	backoff := 1 * time.Second

	var resp *http.Response
	var raw []byte
	var err error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		resp, raw, err = c.doOnce(ctx, body, stream)
		if err == nil {
			return resp, raw, nil
		}
		if !isRetryableErr(err) || attempt == c.cfg.MaxRetries {
			return nil, raw, err
		}

		sleepFor := backoff
		if resp != nil {
			ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
			if ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("AI request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
	return nil, raw, err
}

func (c *aiClient) GenerateText(ctx context.Context, prompt string, temperature float64) (string, error) {
	req := chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}

	_, raw, err := c.doWithRetry(ctx, req, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var resp chatCompletionResponse
	if uErr := json.Unmarshal(raw, &resp); uErr != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, uErr)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrGenerationFailed)
	}
	return resp.Choices[0].Message.Content, nil
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// StreamText forwards content deltas to onDelta in arrival order and returns
// the accumulated text. The loop stops as soon as ctx is cancelled, so a
// disconnected consumer does not keep the producer running.
func (c *aiClient) StreamText(ctx context.Context, prompt string, temperature float64, onDelta func(delta string)) (string, error) {
	req := chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		Stream:      true,
	}

	resp, _, err := c.doWithRetry(ctx, req, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	var full strings.Builder
	err = streamSSE(resp.Body, func(event string, data string) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if strings.TrimSpace(data) == "" || strings.TrimSpace(data) == "[DONE]" {
			return nil
		}

		var chunk chatCompletionChunk
		if uErr := json.Unmarshal([]byte(data), &chunk); uErr != nil {
			return nil
		}
		if chunk.Error != nil && chunk.Error.Message != "" {
			return fmt.Errorf("ai stream error: %s", chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			d := choice.Delta.Content
			if d == "" {
				continue
			}
			full.WriteString(d)
			if onDelta != nil {
				onDelta(d)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Consumer went away; return what was forwarded so far.
			return full.String(), err
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return full.String(), nil
}
