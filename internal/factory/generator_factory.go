package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/quickemail/email-triage/internal/adapters/bedrock"
	"github.com/quickemail/email-triage/internal/adapters/gemini"
	"github.com/quickemail/email-triage/internal/adapters/local"
	"github.com/quickemail/email-triage/internal/adapters/openai"
	"github.com/quickemail/email-triage/internal/config"
	"github.com/quickemail/email-triage/internal/core"
)

// GeneratorFactory creates text generation backends based on configuration
type GeneratorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeneratorFactory creates a new generator factory
func NewGeneratorFactory(cfg *config.Config, logger *zap.Logger) *GeneratorFactory {
	return &GeneratorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates the backend selected by llm.provider. The local
// backend is verified against the running server before it is returned, so
// a misconfigured endpoint fails here rather than on the first request.
func (f *GeneratorFactory) CreateGenerator(ctx context.Context) (core.TextGenerator, error) {
	provider := f.cfg.GetLLM().Provider
	f.logger.Info("Creating text generation backend", zap.String("provider", provider))

	switch provider {
	case "local":
		localCfg := f.cfg.GetLocal()
		client := local.NewClient(localCfg.BaseURL, localCfg.Model, localCfg.Timeout, f.logger)
		if err := client.Verify(ctx); err != nil {
			return nil, fmt.Errorf("failed to verify local model: %w", err)
		}
		return client, nil
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("openai.api_key is required for the openai provider")
		}
		return openai.NewOpenAIGenerator(openaiCfg.APIKey, openaiCfg.ModelName, f.logger), nil
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		if geminiCfg.APIKey == "" {
			return nil, fmt.Errorf("gemini.api_key is required for the gemini provider")
		}
		return gemini.NewGeminiGenerator(ctx, geminiCfg.APIKey, geminiCfg.ModelName, f.logger)
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bedrockCfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.NewBedrockGenerator(client, bedrockCfg.ModelID, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
