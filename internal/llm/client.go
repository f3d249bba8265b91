package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/metrics"
	"github.com/postcraft/backend/pkg/circuitbreaker"
	"github.com/postcraft/backend/pkg/logger"
	"github.com/postcraft/backend/pkg/retry"
)

var (
	// ErrUnavailable wraps every transport-level failure: network errors,
	// provider rejections and an open circuit.
	ErrUnavailable = errors.New("llm provider unavailable")
	// ErrEmptyResponse is returned when the provider answers without text.
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// Completer sends one prompt and returns the model's free-form text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
	// JSON asks the provider to answer with a single JSON object.
	JSON bool
	// Operation labels metrics, e.g. "analyze" or "generate".
	Operation string
}

type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	MaxAttempts int
	JSONMode    bool
}

// guard runs provider calls behind a circuit breaker and the retry loop and
// records call metrics.
type guard struct {
	provider    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	timeout     time.Duration
	logger      *zap.Logger
}

func newGuard(provider string, opts Options) *guard {
	log := logger.Named("llm").With(zap.String("provider", provider))

	cb := circuitbreaker.New("llm-"+provider, circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           log,
	})

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxAttempts = opts.MaxAttempts
	retryConfig.ShouldRetry = IsRetryable
	retryConfig.Logger = log

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &guard{
		provider:    provider,
		cb:          cb,
		retryConfig: retryConfig,
		timeout:     timeout,
		logger:      log,
	}
}

func (g *guard) run(ctx context.Context, operation string, call func(ctx context.Context) (*CompletionResponse, error)) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var result *CompletionResponse

	err := g.cb.Execute(func() error {
		return retry.Do(ctx, g.retryConfig, func() error {
			resp, err := call(ctx)
			if err != nil {
				return err
			}
			result = resp
			return nil
		})
	})

	metrics.LLMDuration.WithLabelValues(g.provider, operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequests.WithLabelValues(g.provider, operation, "error").Inc()
		g.logger.Error("LLM completion failed", zap.String("operation", operation), zap.Error(err))
		if errors.Is(err, ErrEmptyResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	metrics.LLMRequests.WithLabelValues(g.provider, operation, "success").Inc()
	metrics.LLMTokensUsed.WithLabelValues(result.Model, "prompt").Add(float64(result.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(result.Model, "completion").Add(float64(result.Usage.CompletionTokens))

	g.logger.Debug("LLM completion generated",
		zap.String("operation", operation),
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
	)

	return result, nil
}

// IsRetryable reports whether a failed call is worth repeating: rate limits,
// server errors and network failures are, client errors and empty answers
// are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return retryableStatus(anthropicErr.StatusCode)
	}

	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}
