package core

import (
	"testing"
)

func TestReplySelector(t *testing.T) {
	selector := NewReplySelector(
		[]string{"produtivo alta", "produtivo média", "produtivo baixa"},
		[]string{"improdutivo alta", "improdutivo média", "improdutivo baixa"},
	)

	tests := []struct {
		name       string
		category   Category
		confidence float64
		want       string
	}{
		{
			name:       "productive high confidence",
			category:   CategoryProductive,
			confidence: 0.85,
			want:       "produtivo alta",
		},
		{
			name:       "productive mid confidence",
			category:   CategoryProductive,
			confidence: 0.7,
			want:       "produtivo média",
		},
		{
			name:       "productive low confidence",
			category:   CategoryProductive,
			confidence: 0.5,
			want:       "produtivo baixa",
		},
		{
			// 0.8 is not above 0.8, so it stays in the middle tier
			name:       "upper boundary is exclusive",
			category:   CategoryProductive,
			confidence: 0.8,
			want:       "produtivo média",
		},
		{
			name:       "lower boundary is exclusive",
			category:   CategoryProductive,
			confidence: 0.6,
			want:       "produtivo baixa",
		},
		{
			name:       "unproductive high confidence",
			category:   CategoryUnproductive,
			confidence: 0.9,
			want:       "improdutivo alta",
		},
		{
			name:       "unknown category uses the unproductive table",
			category:   Category("Desconhecido"),
			confidence: 0.9,
			want:       "improdutivo alta",
		},
		{
			name:       "zero confidence",
			category:   CategoryUnproductive,
			confidence: 0,
			want:       "improdutivo baixa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selector.Select(tt.category, tt.confidence)
			if got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplySelectorShortTable(t *testing.T) {
	selector := NewReplySelector([]string{"única"}, []string{"só esta"})

	if got := selector.Select(CategoryProductive, 0.95); got != "única" {
		t.Errorf("high confidence = %q, want %q", got, "única")
	}
	// Low confidence indexes past the table end and clamps to the last entry
	if got := selector.Select(CategoryProductive, 0.1); got != "única" {
		t.Errorf("low confidence = %q, want %q", got, "única")
	}
	if got := selector.Select(CategoryUnproductive, 0.1); got != "só esta" {
		t.Errorf("unproductive = %q, want %q", got, "só esta")
	}
}

func TestReplySelectorEmptyTables(t *testing.T) {
	selector := NewReplySelector(nil, nil)

	if got := selector.Select(CategoryProductive, 0.9); got != "" {
		t.Errorf("Select() = %q, want empty string", got)
	}
}
