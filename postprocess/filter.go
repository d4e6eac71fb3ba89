package postprocess

import (
	"strings"
)

// FilterTokens returns the tokens with a confidence strictly greater than
// threshold and non blank text.  Detector order is preserved
func FilterTokens(tokens []Token, threshold int) []Token {

	kept := make([]Token, 0, len(tokens))

	for _, tok := range tokens {
		if tok.Confidence <= threshold {
			continue
		}

		if strings.TrimSpace(tok.Text) == "" {
			continue
		}

		kept = append(kept, tok)
	}

	return kept
}

// Texts returns the text of each token in order
func Texts(tokens []Token) []string {

	texts := make([]string, len(tokens))

	for i, tok := range tokens {
		texts[i] = tok.Text
	}

	return texts
}
