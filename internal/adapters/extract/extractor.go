// Package extract pulls plain text out of uploaded email attachments.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/quickemail/email-triage/internal/utils"
	"go.uber.org/zap"
)

// Extractor converts supported attachment types to plain text. Only
// PDF and TXT files are supported.
type Extractor struct {
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewExtractor creates a new attachment text extractor
func NewExtractor(textProcessor *utils.TextProcessor, logger *zap.Logger) *Extractor {
	return &Extractor{
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Supported reports whether the file type can be extracted, judged by
// its extension.
func (e *Extractor) Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// ExtractText returns the plain text content of the attachment. An
// unsupported extension or an unreadable file is an error so callers
// can reject the upload instead of silently classifying without it.
func (e *Extractor) ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := e.extractPDF(data)
		if err != nil {
			e.logger.Warn("Failed to extract PDF text",
				zap.String("filename", filename),
				zap.Error(err))
			return "", err
		}
		return text, nil
	case ".txt":
		return e.textProcessor.SanitizeUTF8(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported attachment type %q", filepath.Ext(filename))
	}
}

func (e *Extractor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return buf.String(), nil
}
