package core

import "strings"

// buildClassificationPrompt embeds the normalized email text into the
// instruction block with the answer cue the scorer expects
func buildClassificationPrompt(instruction, normalizedText string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nEmail:\n")
	b.WriteString(normalizedText)
	b.WriteString("\n\nClassificação:")
	return b.String()
}

// buildReplyPrompt embeds the email and optional attachment text into the
// reply generation instruction. The attachment text must already be
// clipped by the caller.
func buildReplyPrompt(instruction, emailText, attachmentText string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nTexto do e-mail:\n\"")
	b.WriteString(emailText)
	b.WriteString("\"\n")
	if strings.TrimSpace(attachmentText) != "" {
		b.WriteString("\nConteúdo do anexo:\n\"")
		b.WriteString(attachmentText)
		b.WriteString("\"\n")
	}
	b.WriteString("\nResposta: ")
	return b.String()
}
