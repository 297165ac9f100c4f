package openai

import (
	"context"
	"fmt"

	"github.com/quickemail/email-triage/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIGenerator is a text generator backed by the OpenAI chat API.
// TopP is deliberately not forwarded: the API rejects the out-of-range
// value the pipeline may carry, and chat models sample fine without it.
type OpenAIGenerator struct {
	client    *openai.Client
	modelName string
	logger    *zap.Logger
}

// NewOpenAIGenerator creates a new OpenAI text generator
func NewOpenAIGenerator(apiKey string, modelName string, logger *zap.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
		logger:    logger,
	}
}

// Generate produces continuations of the prompt, one choice per requested
// sequence
func (c *OpenAIGenerator) Generate(ctx context.Context, req *core.GenerateRequest) ([]core.GeneratedText, error) {
	n := req.NumReturnSequences
	if n <= 0 {
		n = 1
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   req.MaxNewTokens,
		Temperature: req.Temperature,
		N:           n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	results := make([]core.GeneratedText, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		results = append(results, core.GeneratedText{Text: choice.Message.Content})
	}

	c.logger.Debug("OpenAI generation complete",
		zap.String("model", c.modelName),
		zap.String("processing_id", resp.ID),
		zap.Int("choices", len(resp.Choices)))

	return results, nil
}
