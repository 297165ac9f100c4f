package core

import (
	"errors"
	"strings"
	"time"
)

// Category is the triage classification of an email
type Category string

const (
	// CategoryProductive marks emails that need a substantive response
	CategoryProductive Category = "Produtivo"
	// CategoryUnproductive marks generic or promotional emails
	CategoryUnproductive Category = "Improdutivo"
)

// ResultSource records which path produced a classification
type ResultSource string

const (
	SourceModel    ResultSource = "model"
	SourceFallback ResultSource = "fallback"
	SourceCache    ResultSource = "cache"
	SourceEmpty    ResultSource = "empty"
)

// ModelState is the lifecycle state of the shared text generation handle.
// Failed is terminal until an explicit reload.
type ModelState string

const (
	ModelUninitialized ModelState = "uninitialized"
	ModelLoading       ModelState = "loading"
	ModelReady         ModelState = "ready"
	ModelFailed        ModelState = "failed"
)

var (
	// ErrInvalidRecordID is returned when a record id cannot be parsed
	ErrInvalidRecordID = errors.New("invalid record id")
	// ErrRecordNotFound is returned when no matching record exists
	ErrRecordNotFound = errors.New("record not found")
)

// ClassificationRequest is one email submitted for triage
type ClassificationRequest struct {
	SenderEmail    string
	Subject        string
	Body           string
	AttachmentText string
}

// CombinedText builds the classification input from the request fields
func (r *ClassificationRequest) CombinedText() string {
	var b strings.Builder
	b.WriteString("Assunto: ")
	b.WriteString(r.Subject)
	b.WriteString("\n\nConteúdo do email:\n")
	b.WriteString(r.Body)
	b.WriteString("\n")
	if strings.TrimSpace(r.AttachmentText) != "" {
		b.WriteString("\nTexto extraído do arquivo:\n")
		b.WriteString(r.AttachmentText)
	}
	return b.String()
}

// HasContent reports whether the request carries any classifiable text
func (r *ClassificationRequest) HasContent() bool {
	return strings.TrimSpace(r.Body) != "" || strings.TrimSpace(r.AttachmentText) != ""
}

// ClassificationResult is the outcome of classifying one email
type ClassificationResult struct {
	Category       Category
	Confidence     float64
	RawModelOutput string
	NormalizedText string
	Source         ResultSource
	AnalyzedAt     time.Time
	ProcessingID   string
}

// TriageOutcome pairs a classification with its suggested reply
type TriageOutcome struct {
	Result         ClassificationResult
	SuggestedReply string
}

// TriageRecord is the audit document persisted for each analyzed email
type TriageRecord struct {
	ID             string
	SenderEmail    string
	Subject        string
	Content        string
	Category       Category
	Confidence     float64
	SuggestedReply string
	Deleted        bool
	CreatedAt      time.Time
}

// CacheEntry is a cached classification keyed by content hash
type CacheEntry struct {
	ContentHash string
	Category    Category
	Confidence  float64
	LastSeen    time.Time
	ExpiresAt   time.Time
}

// GenerateRequest is one call to the text generation capability
type GenerateRequest struct {
	Prompt             string
	MaxNewTokens       int
	Temperature        float32
	TopP               float32
	RepetitionPenalty  float32
	NumReturnSequences int
}

// GeneratedText is one sample returned by the text generation capability
type GeneratedText struct {
	Text string
}
