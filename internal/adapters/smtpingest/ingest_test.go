package smtpingest

import (
	"bytes"
	"context"
	"net/mail"
	"strings"
	"testing"

	"github.com/quickemail/email-triage/internal/core"
	"github.com/quickemail/email-triage/internal/utils"
	"go.uber.org/zap"
)

type tapGate struct {
	samples []core.GeneratedText
}

func (g *tapGate) Generate(context.Context, *core.GenerateRequest) ([]core.GeneratedText, error) {
	return g.samples, nil
}

func (g *tapGate) Loaded() bool { return true }

func (g *tapGate) State() core.ModelState { return core.ModelReady }

func (g *tapGate) Reload(context.Context) error { return nil }

type tapStore struct {
	saved []*core.TriageRecord
}

func (s *tapStore) Save(_ context.Context, rec *core.TriageRecord) error {
	s.saved = append(s.saved, rec)
	return nil
}

func (s *tapStore) List(context.Context, int, int) ([]*core.TriageRecord, int64, error) {
	return s.saved, int64(len(s.saved)), nil
}

func (s *tapStore) SoftDelete(context.Context, string) error { return nil }

type passNormalizer struct{}

func (passNormalizer) Normalize(text string) string { return strings.TrimSpace(text) }

func newTapService(store core.EmailStore) *core.TriageService {
	return core.NewTriageService(
		&tapGate{samples: []core.GeneratedText{{Text: "PRODUTIVO"}}},
		nil,
		store,
		passNormalizer{},
		core.NewPatternScorer([]string{"PRODUTIVO"}, []string{"IMPRODUTIVO"}, nil),
		core.NewFallbackScorer([]string{"pergunta"}, []string{"promoção"}),
		core.NewReplySelector([]string{"resposta produtiva"}, []string{"resposta improdutiva"}),
		utils.NewTextProcessor(zap.NewNop()),
		nil,
		core.PipelineSettings{
			Instruction:             "Classifique o email como PRODUTIVO ou IMPRODUTIVO.",
			MaxPromptChars:          2000,
			ClassificationMaxTokens: 20,
			ReplyMaxTokens:          200,
			ReplyMode:               core.ReplyModeTemplate,
			AckWithAttachment:       "Recebemos seu e-mail e o anexo.",
			AckWithoutAttachment:    "Recebemos seu e-mail.",
			AttachmentMaxChars:      1500,
		},
		zap.NewNop(),
	)
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "plain value",
			value: "Pedido de suporte",
			want:  "Pedido de suporte",
		},
		{
			name:  "base64 encoded word",
			value: "=?UTF-8?B?T3LDp2FtZW50bw==?=",
			want:  "Orçamento",
		},
		{
			name:  "quoted printable encoded word",
			value: "=?UTF-8?Q?Or=C3=A7amento?=",
			want:  "Orçamento",
		},
		{
			name:  "broken encoding returns the raw value",
			value: "=?UTF-8?B?!!!not-base64!!!?=",
			want:  "=?UTF-8?B?!!!not-base64!!!?=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeHeader(tt.value); got != tt.want {
				t.Errorf("decodeHeader(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestExtractTextContentPlain(t *testing.T) {
	raw := "From: cliente@example.com\r\n" +
		"Subject: Suporte\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Preciso de ajuda com o sistema"

	msg, err := mail.ReadMessage(bytes.NewReader([]byte(raw)))
	if err != nil {
		t.Fatalf("failed to parse test message: %v", err)
	}

	body, err := extractTextContent(msg)
	if err != nil {
		t.Fatalf("extractTextContent() error = %v", err)
	}
	if body != "Preciso de ajuda com o sistema" {
		t.Errorf("body = %q", body)
	}
}

func TestExtractTextContentMultipart(t *testing.T) {
	raw := "From: cliente@example.com\r\n" +
		"Subject: Proposta\r\n" +
		"Content-Type: multipart/alternative; boundary=\"frontier\"\r\n" +
		"\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"parte um\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<b>ignorado</b>\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"parte dois\r\n" +
		"--frontier--\r\n"

	msg, err := mail.ReadMessage(bytes.NewReader([]byte(raw)))
	if err != nil {
		t.Fatalf("failed to parse test message: %v", err)
	}

	body, err := extractTextContent(msg)
	if err != nil {
		t.Fatalf("extractTextContent() error = %v", err)
	}
	if !strings.Contains(body, "parte um") || !strings.Contains(body, "parte dois") {
		t.Errorf("body = %q, want both text/plain parts", body)
	}
	if strings.Contains(body, "ignorado") {
		t.Errorf("body = %q, html part should be skipped", body)
	}
}

func TestExtractTextContentMissingBoundary(t *testing.T) {
	raw := "From: cliente@example.com\r\n" +
		"Subject: Oi\r\n" +
		"Content-Type: multipart/mixed\r\n" +
		"\r\n" +
		"conteúdo bruto"

	msg, err := mail.ReadMessage(bytes.NewReader([]byte(raw)))
	if err != nil {
		t.Fatalf("failed to parse test message: %v", err)
	}

	// Without a boundary the raw body is used as-is
	body, err := extractTextContent(msg)
	if err != nil {
		t.Fatalf("extractTextContent() error = %v", err)
	}
	if body != "conteúdo bruto" {
		t.Errorf("body = %q", body)
	}
}

func TestSessionDataRunsTriage(t *testing.T) {
	store := &tapStore{}
	ingest := NewIngest(newTapService(store), Settings{}, zap.NewNop())

	session := &smtpSession{ingest: ingest}
	if err := session.Mail("cliente@example.com", nil); err != nil {
		t.Fatalf("Mail() error = %v", err)
	}
	if err := session.Rcpt("triage@example.com", nil); err != nil {
		t.Fatalf("Rcpt() error = %v", err)
	}

	raw := "From: cliente@example.com\r\n" +
		"Subject: =?UTF-8?B?T3LDp2FtZW50bw==?=\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Gostaria de um orçamento"

	if err := session.Data(strings.NewReader(raw)); err != nil {
		t.Fatalf("Data() error = %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("records saved = %d, want 1", len(store.saved))
	}
	rec := store.saved[0]
	if rec.SenderEmail != "cliente@example.com" {
		t.Errorf("sender = %q", rec.SenderEmail)
	}
	if rec.Subject != "Orçamento" {
		t.Errorf("subject = %q, want the decoded header", rec.Subject)
	}
	if rec.Content != "Gostaria de um orçamento" {
		t.Errorf("content = %q", rec.Content)
	}
	if rec.Category != core.CategoryProductive {
		t.Errorf("category = %s, want %s", rec.Category, core.CategoryProductive)
	}
}

func TestSessionDataRejectsUnparseableMessage(t *testing.T) {
	ingest := NewIngest(newTapService(nil), Settings{}, zap.NewNop())
	session := &smtpSession{ingest: ingest}

	if err := session.Data(strings.NewReader("this is not an email")); err == nil {
		t.Error("Data() error = nil, want parse failure")
	}
}

func TestSessionReset(t *testing.T) {
	session := &smtpSession{sender: "a@b.com", recipients: []string{"c@d.com"}}
	session.Reset()

	if session.sender != "" {
		t.Errorf("sender = %q after reset", session.sender)
	}
	if len(session.recipients) != 0 {
		t.Errorf("recipients = %v after reset", session.recipients)
	}
}
