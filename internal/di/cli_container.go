package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/quickemail/email-triage/internal/adapters/extract"
	"github.com/quickemail/email-triage/internal/config"
	"github.com/quickemail/email-triage/internal/core"
	"github.com/quickemail/email-triage/internal/factory"
	"github.com/quickemail/email-triage/internal/logging"
	"github.com/quickemail/email-triage/internal/normalizer"
	"github.com/quickemail/email-triage/internal/textgen"
	"github.com/quickemail/email-triage/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Text generation provider flags
	Provider   string
	LocalURL   string
	LocalModel string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Input flags
	Sender         string
	Subject        string
	InputFile      string
	AttachmentFile string
	ReplyMode      string
	Verbose        bool
	JSONLog        bool
	ConfigFile     string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Text generation provider flags
	flag.StringVar(&flags.Provider, "provider", "local", "Text generation provider (local, bedrock, gemini, openai)")
	flag.StringVar(&flags.LocalURL, "local-url", "http://localhost:11434", "Base URL of the local model server")
	flag.StringVar(&flags.LocalModel, "local-model", "gemma3:270m", "Local model name")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")

	// Input flags
	flag.StringVar(&flags.Sender, "sender", "cli@localhost", "Sender email address")
	flag.StringVar(&flags.Subject, "subject", "", "Email subject")
	flag.StringVar(&flags.InputFile, "file", "", "Input email body file (use stdin if not specified)")
	flag.StringVar(&flags.AttachmentFile, "attachment", "", "Attachment file to extract text from (.pdf or .txt)")
	flag.StringVar(&flags.ReplyMode, "reply-mode", "", "Suggested reply mode (template or model)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container
// for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewGeneratorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register normalizer
	if err := container.Provide(normalizer.New); err != nil {
		return nil, err
	}
	if err := container.Provide(func(n *normalizer.Normalizer) core.Normalizer {
		return n
	}); err != nil {
		return nil, err
	}

	// Register scorers and the reply table
	if err := container.Provide(func(cfg *config.Config) *core.PatternScorer {
		classifierCfg := cfg.GetClassifier()
		return core.NewPatternScorer(
			classifierCfg.ProductiveSignals,
			classifierCfg.UnproductiveSignals,
			classifierCfg.TiebreakKeywords,
		)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *core.FallbackScorer {
		fallbackCfg := cfg.GetFallback()
		return core.NewFallbackScorer(fallbackCfg.ProductiveKeywords, fallbackCfg.UnproductiveKeywords)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *core.ReplySelector {
		repliesCfg := cfg.GetReplies()
		return core.NewReplySelector(repliesCfg.Produtivo, repliesCfg.Improdutivo)
	}); err != nil {
		return nil, err
	}

	// Register the text generation handle without a breaker; a one-shot
	// run has nothing to short-circuit
	if err := container.Provide(func(f *factory.GeneratorFactory) textgen.LoaderFunc {
		return f.CreateGenerator
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(textgen.NewHandle); err != nil {
		return nil, err
	}
	if err := container.Provide(func(h *textgen.Handle) core.ModelGate {
		return h
	}); err != nil {
		return nil, err
	}

	// Register pipeline settings with caching off for one-shot runs
	if err := container.Provide(func(cfg *config.Config) core.PipelineSettings {
		classifierCfg := cfg.GetClassifier()
		repliesCfg := cfg.GetReplies()
		return core.PipelineSettings{
			Instruction:             classifierCfg.Prompt,
			MaxPromptChars:          classifierCfg.MaxPromptChars,
			ClassificationMaxTokens: classifierCfg.ClassificationMaxTokens,
			ReplyMaxTokens:          classifierCfg.ReplyMaxTokens,
			Temperature:             classifierCfg.Temperature,
			TopP:                    classifierCfg.TopP,
			RepetitionPenalty:       classifierCfg.RepetitionPenalty,
			ReplyMode:               repliesCfg.Mode,
			ReplyInstruction:        repliesCfg.Instruction,
			AckWithAttachment:       repliesCfg.AckWithAttachment,
			AckWithoutAttachment:    repliesCfg.AckWithoutAttachment,
			AttachmentMaxChars:      repliesCfg.AttachmentMaxChars,
			CacheEnabled:            false,
		}
	}); err != nil {
		return nil, err
	}

	// Register triage service with no cache, store or metrics
	if err := container.Provide(func(
		gate core.ModelGate,
		norm core.Normalizer,
		patterns *core.PatternScorer,
		fallback *core.FallbackScorer,
		replies *core.ReplySelector,
		textProc *utils.TextProcessor,
		settings core.PipelineSettings,
		logger *zap.Logger,
	) *core.TriageService {
		return core.NewTriageService(
			gate,
			nil, // No cache for CLI
			nil, // No audit store for CLI
			norm,
			patterns,
			fallback,
			replies,
			textProc,
			nil, // No metrics for CLI
			settings,
			logger,
		)
	}); err != nil {
		return nil, err
	}

	// Register attachment extractor
	if err := container.Provide(func(tp *utils.TextProcessor, logger *zap.Logger) core.AttachmentExtractor {
		return extract.NewExtractor(tp, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set text generation provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "local":
		v.Set("local.base_url", flags.LocalURL)
		v.Set("local.model", flags.LocalModel)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
	}

	if flags.ReplyMode != "" {
		v.Set("replies.mode", flags.ReplyMode)
	}

	return config.NewFromViper(v)
}
