package extract

import (
	"strings"
	"testing"

	"github.com/quickemail/email-triage/internal/utils"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return NewExtractor(utils.NewTextProcessor(zap.NewNop()), zap.NewNop())
}

func TestSupported(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		filename string
		want     bool
	}{
		{"document.pdf", true},
		{"notes.txt", true},
		{"REPORT.PDF", true},
		{"readme.TXT", true},
		{"image.png", false},
		{"archive.zip", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := e.Supported(tt.filename); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestExtractTextFromTxt(t *testing.T) {
	e := newTestExtractor()

	text, err := e.ExtractText("anexo.txt", []byte("Conteúdo do anexo com acentuação"))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "Conteúdo do anexo com acentuação" {
		t.Errorf("ExtractText() = %q", text)
	}
}

func TestExtractTextSanitizesTxt(t *testing.T) {
	e := newTestExtractor()

	// An invalid byte in the middle is dropped rather than propagated
	text, err := e.ExtractText("anexo.txt", []byte{'o', 'l', 0xff, 'a'})
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "ola" {
		t.Errorf("ExtractText() = %q, want %q", text, "ola")
	}
}

func TestExtractTextUnsupportedType(t *testing.T) {
	e := newTestExtractor()

	_, err := e.ExtractText("image.png", []byte("data"))
	if err == nil {
		t.Fatal("ExtractText() error = nil, want unsupported type error")
	}
	if !strings.Contains(err.Error(), "unsupported attachment type") {
		t.Errorf("error = %v", err)
	}
}

func TestExtractTextCorruptPDF(t *testing.T) {
	e := newTestExtractor()

	if _, err := e.ExtractText("broken.pdf", []byte("not a pdf at all")); err == nil {
		t.Error("ExtractText() error = nil, want parse failure")
	}
}
