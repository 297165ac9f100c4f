package normalizer

import (
	"testing"

	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	n := New(zap.NewNop())

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "stopwords removed and plural reduced",
			text: "Tenho uma pergunta sobre os preços da empresa",
			want: "pergunta sobre preço empresa",
		},
		{
			name: "cedilla plural keeps the accent",
			text: "Preciso de informações sobre os serviços",
			want: "preciso informação sobre serviço",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
		{
			name: "whitespace only",
			text: "   \n\t  ",
			want: "",
		},
		{
			name: "punctuation only tokens vanish",
			text: "!!! ??? ...",
			want: "",
		},
		{
			name: "tokens with embedded digits are dropped",
			text: "pedido abc123def confirmado",
			want: "pedido confirmado",
		},
		{
			name: "numeric tokens are dropped",
			text: "valor 12345 reais",
			want: "valor real",
		},
		{
			name: "short word ending in s is left alone",
			text: "mês",
			want: "mês",
		},
		{
			name: "oes plural reduces to ao",
			text: "reuniões",
			want: "reunião",
		},
		{
			name: "adverb suffix stripped",
			text: "rapidamente",
			want: "rapid",
		},
		{
			name: "res plural reduces to r",
			text: "computadores",
			want: "computador",
		},
		{
			name: "decomposed accents are composed before matching",
			text: "dúvida",
			want: "dúvida",
		},
		{
			name: "trailing punctuation trimmed from tokens",
			text: "Qual o preço?",
			want: "preço",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.text); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeepsWordOrder(t *testing.T) {
	n := New(zap.NewNop())

	got := n.Normalize("Gostaria de agendar uma reunião para discutir o projeto")
	want := "gostaria agendar reunião discutir projeto"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}
