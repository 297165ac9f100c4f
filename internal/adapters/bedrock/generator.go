package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
)

// BedrockGenerator is a text generator backed by Amazon Bedrock. The
// request payload and response shape depend on the model family.
type BedrockGenerator struct {
	client  *bedrockruntime.Client
	modelID string
	logger  *zap.Logger
}

// NewBedrockGenerator creates a new Bedrock text generator
func NewBedrockGenerator(client *bedrockruntime.Client, modelID string, logger *zap.Logger) *BedrockGenerator {
	return &BedrockGenerator{
		client:  client,
		modelID: modelID,
		logger:  logger,
	}
}

// Generate produces continuations of the prompt. Bedrock returns one
// sample per invocation, so additional requested sequences repeat the
// call.
func (c *BedrockGenerator) Generate(ctx context.Context, req *core.GenerateRequest) ([]core.GeneratedText, error) {
	n := req.NumReturnSequences
	if n <= 0 {
		n = 1
	}

	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	results := make([]core.GeneratedText, 0, n)
	for i := 0; i < n; i++ {
		resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     &c.modelID,
			Body:        payload,
			Accept:      aws.String("application/json"),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
		}

		text, err := c.parseResponse(resp.Body)
		if err != nil {
			return nil, err
		}
		results = append(results, core.GeneratedText{Text: text})
	}
	return results, nil
}

func (c *BedrockGenerator) buildPayload(req *core.GenerateRequest) ([]byte, error) {
	if c.isAnthropicModel() {
		return json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        req.MaxNewTokens,
			"temperature":       req.Temperature,
			"messages": []map[string]interface{}{
				{"role": "user", "content": req.Prompt},
			},
		})
	}
	if c.isAmazonTitanModel() {
		return json.Marshal(map[string]interface{}{
			"inputText": req.Prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": req.MaxNewTokens,
				"temperature":   req.Temperature,
				"topP":          req.TopP,
			},
		})
	}
	return json.Marshal(map[string]interface{}{
		"prompt":      req.Prompt,
		"max_tokens":  req.MaxNewTokens,
		"temperature": req.Temperature,
		"top_p":       req.TopP,
	})
}

func (c *BedrockGenerator) parseResponse(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var text string
		for _, block := range claudeResp.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		if text == "" {
			return "", fmt.Errorf("empty response from Claude model")
		}
		return text, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	}
	return string(body), nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockGenerator) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockGenerator) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
