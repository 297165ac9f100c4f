package core

import (
	"context"
	"time"
)

// TextGenerator defines the interface to the text generation capability
type TextGenerator interface {
	// Generate produces one or more continuations of the prompt
	Generate(ctx context.Context, req *GenerateRequest) ([]GeneratedText, error)
}

// ModelGate wraps the shared text generation handle with its lifecycle
type ModelGate interface {
	TextGenerator

	// Loaded reports whether the handle is ready for generation
	Loaded() bool

	// State returns the current lifecycle state
	State() ModelState

	// Reload re-attempts loading; the only way out of a failed state
	Reload(ctx context.Context) error
}

// ResultCache defines the interface for caching classification results
type ResultCache interface {
	// Get retrieves a cached entry by content hash; a nil entry means miss
	Get(ctx context.Context, contentHash string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, contentHash string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// EmailStore defines the interface for the triage audit store
type EmailStore interface {
	// Save persists one analyzed email
	Save(ctx context.Context, rec *TriageRecord) error

	// List returns a page of non-deleted records plus the total count
	List(ctx context.Context, page, perPage int) ([]*TriageRecord, int64, error)

	// SoftDelete marks a record deleted without removing it
	SoftDelete(ctx context.Context, id string) error
}

// Normalizer defines the interface for text normalization
type Normalizer interface {
	Normalize(text string) string
}

// AttachmentExtractor defines the interface for pulling plain text out of
// uploaded attachments
type AttachmentExtractor interface {
	// ExtractText returns the plain text content of the attachment
	ExtractText(filename string, data []byte) (string, error)

	// Supported reports whether the attachment type can be extracted
	Supported(filename string) bool
}

// ClassificationMetrics records classifier outcomes
type ClassificationMetrics interface {
	RecordClassification(category, source string, duration time.Duration)
	RecordModelFailure()
	RecordCacheHit()
}
