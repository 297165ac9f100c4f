package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiGenerator is a text generator backed by Google Gemini
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

// NewGeminiGenerator creates a new Gemini text generator
func NewGeminiGenerator(ctx context.Context, apiKey string, modelName string, logger *zap.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiGenerator) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Generate produces continuations of the prompt, one candidate per
// requested sequence. Sampling parameters are forwarded as configured;
// the API rejects out-of-range values and the caller treats that as a
// failed call.
func (c *GeminiGenerator) Generate(ctx context.Context, req *core.GenerateRequest) ([]core.GeneratedText, error) {
	n := req.NumReturnSequences
	if n <= 0 {
		n = 1
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(req.Temperature)
	model.SetTopP(req.TopP)
	model.SetMaxOutputTokens(int32(req.MaxNewTokens))
	model.SetCandidateCount(int32(n))

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	results := make([]core.GeneratedText, 0, len(resp.Candidates))
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		var text string
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
		results = append(results, core.GeneratedText{Text: text})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no text parts in Gemini response")
	}

	c.logger.Debug("Gemini generation complete",
		zap.String("model", c.modelName),
		zap.Int("candidates", len(results)))

	return results, nil
}
