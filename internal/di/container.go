package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/quickemail/email-triage/internal/adapters/extract"
	"github.com/quickemail/email-triage/internal/adapters/httpapi"
	"github.com/quickemail/email-triage/internal/adapters/smtpingest"
	"github.com/quickemail/email-triage/internal/config"
	"github.com/quickemail/email-triage/internal/core"
	"github.com/quickemail/email-triage/internal/factory"
	"github.com/quickemail/email-triage/internal/logging"
	"github.com/quickemail/email-triage/internal/metrics"
	"github.com/quickemail/email-triage/internal/normalizer"
	"github.com/quickemail/email-triage/internal/ports"
	"github.com/quickemail/email-triage/internal/textgen"
	"github.com/quickemail/email-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewGeneratorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
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

	// Register the text generation handle. Loading happens at startup in
	// main, so a failing backend leaves the service up and degraded.
	if err := container.Provide(func(f *factory.GeneratorFactory, cfg *config.Config, logger *zap.Logger) textgen.LoaderFunc {
		return func(ctx context.Context) (core.TextGenerator, error) {
			gen, err := f.CreateGenerator(ctx)
			if err != nil {
				return nil, err
			}
			breakerCfg := cfg.GetBreaker()
			if breakerCfg.Enabled {
				gen = textgen.NewBreaker(gen, textgen.BreakerSettings{
					MinRequests:  breakerCfg.MinRequests,
					FailureRatio: breakerCfg.FailureRatio,
					OpenTimeout:  breakerCfg.OpenTimeout,
					MaxHalfOpen:  breakerCfg.MaxHalfOpen,
				}, logger)
			}
			return gen, nil
		}
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

	// Register result cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.ResultCache, error) {
		return f.CreateResultCache()
	}); err != nil {
		return nil, err
	}

	// Register audit store
	if err := container.Provide(func(f *factory.StoreFactory) (core.EmailStore, error) {
		return f.CreateEmailStore()
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func(cfg *config.Config) *metrics.Metrics {
		if !cfg.GetBool("metrics.enabled") {
			return nil
		}
		return metrics.New(cfg.GetApp().Name)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(m *metrics.Metrics) core.ClassificationMetrics {
		// Keep the interface value nil when metrics are disabled
		if m == nil {
			return nil
		}
		return m
	}); err != nil {
		return nil, err
	}

	// Register pipeline settings
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.PipelineSettings {
		classifierCfg := cfg.GetClassifier()
		repliesCfg := cfg.GetReplies()
		cacheCfg := cfg.GetCache()

		if classifierCfg.TopP > 1.0 {
			logger.Warn("classifier.top_p is above the valid nucleus sampling range and is passed to the backend unchanged",
				zap.Float32("top_p", classifierCfg.TopP))
		}

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
			CacheEnabled:            cacheCfg.Enabled,
			CacheTTL:                cacheCfg.TTL,
		}
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(core.NewTriageService); err != nil {
		return nil, err
	}

	// Register attachment extractor
	if err := container.Provide(func(tp *utils.TextProcessor, logger *zap.Logger) core.AttachmentExtractor {
		return extract.NewExtractor(tp, logger)
	}); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(cfg *config.Config) httpapi.Settings {
		serverCfg := cfg.GetServer()
		appCfg := cfg.GetApp()
		return httpapi.Settings{
			ListenAddress:  serverCfg.ListenAddress,
			AllowedOrigins: serverCfg.AllowedOrigins,
			MaxBodyBytes:   serverCfg.MaxBodyBytes,
			Debug:          serverCfg.Debug,
			AppName:        appCfg.Name,
			AppVersion:     appCfg.Version,
			AppDescription: appCfg.Description,
		}
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(httpapi.NewServer); err != nil {
		return nil, err
	}

	// Register SMTP ingest, nil when the listener is disabled
	if err := container.Provide(func(service *core.TriageService, cfg *config.Config, logger *zap.Logger) *smtpingest.Ingest {
		smtpCfg := cfg.GetSMTP()
		if !smtpCfg.Enabled {
			return nil
		}
		return smtpingest.NewIngest(service, smtpingest.Settings{
			ListenAddress:   smtpCfg.ListenAddress,
			Domain:          smtpCfg.Domain,
			ReadTimeout:     smtpCfg.ReadTimeout,
			WriteTimeout:    smtpCfg.WriteTimeout,
			MaxMessageBytes: smtpCfg.MaxMessageBytes,
		}, logger)
	}); err != nil {
		return nil, err
	}

	// Register the inbound surfaces in start order
	if err := container.Provide(func(server *httpapi.Server, ingest *smtpingest.Ingest) []ports.EmailIngest {
		surfaces := []ports.EmailIngest{server}
		if ingest != nil {
			surfaces = append(surfaces, ingest)
		}
		return surfaces
	}); err != nil {
		return nil, err
	}

	return container, nil
}
