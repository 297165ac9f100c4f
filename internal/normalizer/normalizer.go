package normalizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Normalizer reduces raw email text to a compact normalized form: NFC
// composition, lowercasing, word tokenization, stopword and non-alphabetic
// token removal, and suffix-based lemmatization. Resources are built once
// and read-only afterwards, so a single instance is shared across requests.
type Normalizer struct {
	stopwords map[string]struct{}
	suffixes  []suffixRule
	logger    *zap.Logger
}

// New creates a Normalizer with the built-in Portuguese resources
func New(logger *zap.Logger) *Normalizer {
	stopwords := make(map[string]struct{}, len(portugueseStopwords))
	for _, w := range portugueseStopwords {
		stopwords[w] = struct{}{}
	}

	return &Normalizer{
		stopwords: stopwords,
		suffixes:  portugueseSuffixes,
		logger:    logger,
	}
}

// Normalize returns the normalized form of text. Empty or whitespace-only
// input yields an empty string. If the language resources are unavailable
// the trimmed original text is returned unmodified instead of failing the
// caller.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if len(n.stopwords) == 0 || len(n.suffixes) == 0 {
		n.logger.Warn("Normalizer resources unavailable, passing text through")
		return strings.TrimSpace(text)
	}

	lowered := strings.ToLower(norm.NFC.String(text))

	var tokens []string
	for _, field := range strings.Fields(lowered) {
		token := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if token == "" || !isAlphabetic(token) {
			continue
		}
		if _, ok := n.stopwords[token]; ok {
			continue
		}
		tokens = append(tokens, n.lemmatize(token))
	}

	return strings.Join(tokens, " ")
}

// lemmatize reduces a token to a base form using the suffix table. The
// first matching rule wins; tokens below the rule's length guard are left
// untouched.
func (n *Normalizer) lemmatize(token string) string {
	length := utf8.RuneCountInString(token)
	for _, rule := range n.suffixes {
		if length < rule.MinLen {
			continue
		}
		if strings.HasSuffix(token, rule.Suffix) {
			return strings.TrimSuffix(token, rule.Suffix) + rule.Replacement
		}
	}
	return token
}

func isAlphabetic(token string) bool {
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
