package local

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quickemail/email-triage/internal/core"
	"go.uber.org/zap"
)

func TestGenerateSendsExpectedPayload(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s, want /api/generate", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "PRODUTIVO"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemma3:270m", 5*time.Second, zap.NewNop())

	samples, err := client.Generate(context.Background(), &core.GenerateRequest{
		Prompt:             "Classifique o email",
		MaxNewTokens:       20,
		Temperature:        0.3,
		TopP:               0.9,
		RepetitionPenalty:  1.1,
		NumReturnSequences: 1,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(samples) != 1 || samples[0].Text != "PRODUTIVO" {
		t.Errorf("Generate() = %v, want one PRODUTIVO sample", samples)
	}

	if captured.Model != "gemma3:270m" {
		t.Errorf("model = %q, want %q", captured.Model, "gemma3:270m")
	}
	if captured.Prompt != "Classifique o email" {
		t.Errorf("prompt = %q, want the request prompt", captured.Prompt)
	}
	if captured.Stream {
		t.Error("stream = true, want false")
	}
	if captured.Options.NumPredict != 20 {
		t.Errorf("num_predict = %d, want 20", captured.Options.NumPredict)
	}
	if captured.Options.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", captured.Options.Temperature)
	}
}

func TestGenerateRepeatsCallPerSequence(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(generateResponse{Response: "resposta"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemma3:270m", 5*time.Second, zap.NewNop())

	samples, err := client.Generate(context.Background(), &core.GenerateRequest{
		Prompt:             "x",
		NumReturnSequences: 3,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(samples) != 3 {
		t.Errorf("samples = %d, want 3", len(samples))
	}
	if calls != 3 {
		t.Errorf("backend calls = %d, want 3", calls)
	}
}

func TestGenerateSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemma3:270m", 5*time.Second, zap.NewNop())

	_, err := client.Generate(context.Background(), &core.GenerateRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Generate() error = nil, want server error")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %v, want status 500 in message", err)
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error = %v, want the server message in it", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		tags    string
		wantErr bool
	}{
		{
			name:  "exact model name",
			model: "gemma3:270m",
			tags:  `{"models":[{"name":"gemma3:270m"}]}`,
		},
		{
			name:  "latest tag matches the bare name",
			model: "llama3",
			tags:  `{"models":[{"name":"llama3:latest"}]}`,
		},
		{
			name:    "model missing",
			model:   "gemma3:270m",
			tags:    `{"models":[{"name":"mistral:7b"}]}`,
			wantErr: true,
		},
		{
			name:    "empty model list",
			model:   "gemma3:270m",
			tags:    `{"models":[]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" {
					t.Errorf("path = %s, want /api/tags", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.tags))
			}))
			defer server.Close()

			client := NewClient(server.URL, tt.model, 5*time.Second, zap.NewNop())
			err := client.Verify(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemma3:270m", 5*time.Second, zap.NewNop())
	if err := client.Verify(context.Background()); err == nil {
		t.Error("Verify() error = nil, want failure on 503")
	}
}

func TestVerifyUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "gemma3:270m", time.Second, zap.NewNop())
	if err := client.Verify(context.Background()); err == nil {
		t.Error("Verify() error = nil, want connection failure")
	}
}
