package sentiment

import (
	"strings"
	"unicode"
)

// token is a word with its original casing and a lookup key.
type token struct {
	raw string
	key string
}

// tokenize splits text on whitespace and strips surrounding punctuation.
// Contractions keep their apostrophe so "isn't" stays a single token.
func tokenize(text string) []token {
	fields := strings.Fields(text)
	out := make([]token, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		})
		w = strings.Trim(w, "'")
		if w == "" {
			continue
		}
		out = append(out, token{raw: w, key: strings.ToLower(strings.ReplaceAll(w, "’", "'"))})
	}
	return out
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}

// mixedCase reports whether some but not all tokens are shouted.
func mixedCase(tokens []token) bool {
	caps := 0
	for _, t := range tokens {
		if isAllCaps(t.raw) {
			caps++
		}
	}
	return caps > 0 && caps < len(tokens)
}

func isNegation(key string) bool {
	if _, ok := negations[key]; ok {
		return true
	}
	return strings.HasSuffix(key, "n't")
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
