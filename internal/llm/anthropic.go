package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const jsonOnlyInstruction = "Respond with a single JSON object and nothing else."

var _ Completer = (*AnthropicClient)(nil)

type AnthropicClient struct {
	client      anthropic.Client
	model       anthropic.Model
	temperature float32
	maxTokens   int
	jsonMode    bool
	guard       *guard
}

func NewAnthropicClient(apiKey, baseURL string, opts Options) *AnthropicClient {
	// Retries are handled by the guard.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.Model("claude-sonnet-4-5-20250929")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	c := &AnthropicClient{
		client:      anthropic.NewClient(reqOpts...),
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   maxTokens,
		jsonMode:    opts.JSONMode,
		guard:       newGuard("anthropic", opts),
	}

	c.guard.logger.Info("LLM client initialized", zap.String("model", string(model)))

	return c
}

func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	system := req.SystemPrompt
	if req.JSON && c.jsonMode {
		system = strings.TrimSpace(system + "\n\n" + jsonOnlyInstruction)
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(float64(temperature))
	}

	return c.guard.run(ctx, req.Operation, func(ctx context.Context) (*CompletionResponse, error) {
		resp, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to create message: %w", err)
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
				text.WriteString(textBlock.Text)
			}
		}
		if strings.TrimSpace(text.String()) == "" {
			return nil, ErrEmptyResponse
		}

		prompt := int(resp.Usage.InputTokens)
		completion := int(resp.Usage.OutputTokens)

		return &CompletionResponse{
			Content: text.String(),
			Model:   string(resp.Model),
			Usage: Usage{
				PromptTokens:     prompt,
				CompletionTokens: completion,
				TotalTokens:      prompt + completion,
			},
		}, nil
	})
}
