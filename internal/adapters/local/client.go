package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
)

const errorBodyLimit = 2048

// Client is a text generator backed by a local Ollama-style HTTP server.
// It is the default backend, standing in for the in-process model the
// service was originally deployed with.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the given base URL and model
func NewClient(baseURL, model string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type generateOptions struct {
	NumPredict    int     `json:"num_predict"`
	Temperature   float32 `json:"temperature"`
	TopP          float32 `json:"top_p"`
	RepeatPenalty float32 `json:"repeat_penalty,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate produces continuations of the prompt. The backend returns one
// sample per call, so additional requested sequences repeat the call.
func (c *Client) Generate(ctx context.Context, req *core.GenerateRequest) ([]core.GeneratedText, error) {
	n := req.NumReturnSequences
	if n <= 0 {
		n = 1
	}

	payload := generateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			NumPredict:    req.MaxNewTokens,
			Temperature:   req.Temperature,
			TopP:          req.TopP,
			RepeatPenalty: req.RepetitionPenalty,
		},
	}

	results := make([]core.GeneratedText, 0, n)
	for i := 0; i < n; i++ {
		var out generateResponse
		if err := c.postJSON(ctx, "/api/generate", payload, &out); err != nil {
			return nil, err
		}
		results = append(results, core.GeneratedText{Text: out.Response})
	}
	return results, nil
}

// Verify checks that the configured model is available on the server.
// Called once at load time so a missing model surfaces as a failed handle
// instead of per-request errors.
func (c *Client) Verify(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to build tags request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach local model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to decode tags response: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == c.model || strings.TrimSuffix(m.Name, ":latest") == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q is not available on the local server", c.model)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request to local model server failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// httpError reads a bounded slice of the response body so backend errors
// stay inspectable without unbounded reads
func httpError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("local model server returned status %d: %s", resp.StatusCode, msg)
}
