package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quickemail/email-triage/internal/utils"
	"go.uber.org/zap"
)

// Reply modes: template picks from the canned tables, model drafts a
// reply with the text generator.
const (
	ReplyModeTemplate = "template"
	ReplyModeModel    = "model"
)

// PipelineSettings carries the tunables for classification and reply
// generation. TopP is passed through as configured, even out of range.
type PipelineSettings struct {
	Instruction             string
	MaxPromptChars          int
	ClassificationMaxTokens int
	ReplyMaxTokens          int
	Temperature             float32
	TopP                    float32
	RepetitionPenalty       float32
	ReplyMode               string
	ReplyInstruction        string
	AckWithAttachment       string
	AckWithoutAttachment    string
	AttachmentMaxChars      int
	CacheEnabled            bool
	CacheTTL                time.Duration
}

// TriageService is the core service for email triage. Every failure mode
// inside Classify and reply generation resolves to a degraded but valid
// result; nothing propagates to the caller as an error.
type TriageService struct {
	gate       ModelGate
	cache      ResultCache
	store      EmailStore
	normalizer Normalizer
	patterns   *PatternScorer
	fallback   *FallbackScorer
	replies    *ReplySelector
	textProc   *utils.TextProcessor
	metrics    ClassificationMetrics
	settings   PipelineSettings
	logger     *zap.Logger
}

// NewTriageService creates a new triage service. The store may be nil when
// auditing is disabled, the cache may be nil when caching is disabled and
// metrics may be nil when instrumentation is disabled.
func NewTriageService(
	gate ModelGate,
	cache ResultCache,
	store EmailStore,
	normalizer Normalizer,
	patterns *PatternScorer,
	fallback *FallbackScorer,
	replies *ReplySelector,
	textProc *utils.TextProcessor,
	metrics ClassificationMetrics,
	settings PipelineSettings,
	logger *zap.Logger,
) *TriageService {
	return &TriageService{
		gate:       gate,
		cache:      cache,
		store:      store,
		normalizer: normalizer,
		patterns:   patterns,
		fallback:   fallback,
		replies:    replies,
		textProc:   textProc,
		metrics:    metrics,
		settings:   settings,
		logger:     logger,
	}
}

// Analyze classifies the request, picks a suggested reply and records the
// outcome. The audit write is best-effort and never fails the request.
func (s *TriageService) Analyze(ctx context.Context, req *ClassificationRequest) *TriageOutcome {
	text := req.CombinedText()

	result, hit := s.cachedResult(ctx, text)
	if !hit {
		result = s.Classify(ctx, text)
		s.cacheResult(ctx, text, result)
	}

	reply := s.SuggestedReply(ctx, result, text, req.AttachmentText)
	s.record(ctx, req, result, reply)

	return &TriageOutcome{Result: result, SuggestedReply: reply}
}

// Classify runs the classification pipeline on text. It never returns an
// error: degenerate input short-circuits and every model failure falls
// through to the keyword heuristic.
func (s *TriageService) Classify(ctx context.Context, text string) ClassificationResult {
	start := time.Now()
	result := s.classify(ctx, text)
	if s.metrics != nil {
		s.metrics.RecordClassification(string(result.Category), string(result.Source), time.Since(start))
	}
	return result
}

func (s *TriageService) classify(ctx context.Context, text string) ClassificationResult {
	result := ClassificationResult{
		AnalyzedAt:   time.Now(),
		ProcessingID: uuid.NewString(),
	}

	normalized := s.normalizer.Normalize(text)
	result.NormalizedText = normalized
	if normalized == "" {
		s.logger.Debug("Empty text after normalization, skipping model call")
		result.Category = CategoryUnproductive
		result.Confidence = 0.5
		result.Source = SourceEmpty
		return result
	}

	if !s.gate.Loaded() {
		s.logger.Debug("Model not ready, using fallback scorer",
			zap.String("model_state", string(s.gate.State())))
		result.Category, result.Confidence = s.fallback.Score(text)
		result.Source = SourceFallback
		return result
	}

	prompt := s.textProc.TruncateText(
		buildClassificationPrompt(s.settings.Instruction, normalized),
		s.settings.MaxPromptChars,
	)

	samples, err := s.gate.Generate(ctx, &GenerateRequest{
		Prompt:             prompt,
		MaxNewTokens:       s.settings.ClassificationMaxTokens,
		Temperature:        s.settings.Temperature,
		TopP:               s.settings.TopP,
		RepetitionPenalty:  s.settings.RepetitionPenalty,
		NumReturnSequences: 1,
	})
	if err != nil || len(samples) == 0 || strings.TrimSpace(samples[0].Text) == "" {
		if err != nil {
			s.logger.Warn("Model call failed, using fallback scorer", zap.Error(err))
		} else {
			s.logger.Warn("Model returned no usable output, using fallback scorer")
		}
		if s.metrics != nil {
			s.metrics.RecordModelFailure()
		}
		result.Category, result.Confidence = s.fallback.Score(text)
		result.Source = SourceFallback
		return result
	}

	result.RawModelOutput = samples[0].Text
	result.Category, result.Confidence = s.patterns.Score(result.RawModelOutput)
	result.Source = SourceModel

	s.logger.Debug("Classified via model",
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence),
		zap.String("processing_id", result.ProcessingID))

	return result
}

// SelectReply returns the canned reply for the category and confidence
func (s *TriageService) SelectReply(category Category, confidence float64) string {
	return s.replies.Select(category, confidence)
}

// SuggestedReply resolves the reply for a classification according to the
// configured reply mode
func (s *TriageService) SuggestedReply(ctx context.Context, result ClassificationResult, emailText, attachmentText string) string {
	if s.settings.ReplyMode == ReplyModeModel {
		return s.GenerateReply(ctx, emailText, attachmentText)
	}
	return s.replies.Select(result.Category, result.Confidence)
}

// GenerateReply drafts a reply with the text generator, falling back to a
// canned acknowledgement when the model is unavailable or yields nothing
func (s *TriageService) GenerateReply(ctx context.Context, emailText, attachmentText string) string {
	hasAttachment := strings.TrimSpace(attachmentText) != ""

	if !s.gate.Loaded() {
		return s.ackReply(hasAttachment)
	}

	clipped := s.textProc.ClipText(attachmentText, s.settings.AttachmentMaxChars)
	prompt := buildReplyPrompt(s.settings.ReplyInstruction, emailText, clipped)

	samples, err := s.gate.Generate(ctx, &GenerateRequest{
		Prompt:             prompt,
		MaxNewTokens:       s.settings.ReplyMaxTokens,
		Temperature:        s.settings.Temperature,
		TopP:               s.settings.TopP,
		RepetitionPenalty:  s.settings.RepetitionPenalty,
		NumReturnSequences: 1,
	})
	if err != nil || len(samples) == 0 {
		if err != nil {
			s.logger.Warn("Reply generation failed, using acknowledgement", zap.Error(err))
		}
		return s.ackReply(hasAttachment)
	}

	// Backends that echo the prompt get it stripped before trimming
	reply := strings.TrimSpace(strings.TrimPrefix(samples[0].Text, prompt))
	if reply == "" {
		return s.ackReply(hasAttachment)
	}
	return reply
}

// ModelLoaded reports whether the text generation handle is ready
func (s *TriageService) ModelLoaded() bool {
	return s.gate.Loaded()
}

// ModelState returns the lifecycle state of the text generation handle
func (s *TriageService) ModelState() ModelState {
	return s.gate.State()
}

// ReloadModel re-attempts loading the text generation handle
func (s *TriageService) ReloadModel(ctx context.Context) error {
	return s.gate.Reload(ctx)
}

// ReplyMode returns the configured suggested reply mode
func (s *TriageService) ReplyMode() string {
	return s.settings.ReplyMode
}

func (s *TriageService) ackReply(hasAttachment bool) string {
	if hasAttachment {
		return s.settings.AckWithAttachment
	}
	return s.settings.AckWithoutAttachment
}

func (s *TriageService) cacheEnabled() bool {
	return s.settings.CacheEnabled && s.cache != nil
}

func (s *TriageService) cachedResult(ctx context.Context, text string) (ClassificationResult, bool) {
	if !s.cacheEnabled() {
		return ClassificationResult{}, false
	}

	entry, err := s.cache.Get(ctx, s.textProc.ContentHash(text))
	if err != nil {
		s.logger.Warn("Cache lookup failed", zap.Error(err))
		return ClassificationResult{}, false
	}
	if entry == nil {
		return ClassificationResult{}, false
	}

	s.logger.Debug("Cache hit for content", zap.String("content_hash", entry.ContentHash))
	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
	return ClassificationResult{
		Category:     entry.Category,
		Confidence:   entry.Confidence,
		Source:       SourceCache,
		AnalyzedAt:   time.Now(),
		ProcessingID: uuid.NewString(),
	}, true
}

func (s *TriageService) cacheResult(ctx context.Context, text string, result ClassificationResult) {
	if !s.cacheEnabled() {
		return
	}

	now := time.Now()
	entry := &CacheEntry{
		ContentHash: s.textProc.ContentHash(text),
		Category:    result.Category,
		Confidence:  result.Confidence,
		LastSeen:    now,
		ExpiresAt:   now.Add(s.settings.CacheTTL),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		s.logger.Error("Failed to update cache", zap.Error(err))
	}
}

func (s *TriageService) record(ctx context.Context, req *ClassificationRequest, result ClassificationResult, reply string) {
	if s.store == nil {
		return
	}

	rec := &TriageRecord{
		SenderEmail:    req.SenderEmail,
		Subject:        req.Subject,
		Content:        req.Body,
		Category:       result.Category,
		Confidence:     result.Confidence,
		SuggestedReply: reply,
		CreatedAt:      time.Now(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Error("Failed to persist triage record", zap.Error(err))
	}
}
